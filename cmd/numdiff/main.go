// A command line tool for numeric-tolerant diffing of text files.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"numdiff/internal/status"
)

// version is set by the release process; a plain literal here mirrors
// how the rest of this codebase keeps build metadata out of go.mod.
var version = "dev"

func init() {
	rootCmd.PersistentFlags().StringVarP(&rootCmd.logLevel, "log-level", "v", "warning",
		"Set log verbosity: trace, info, warning or error")
	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		lvl, ok := logLevels[rootCmd.logLevel]
		if !ok {
			return fmt.Errorf("unknown log level %q", rootCmd.logLevel)
		}
		status.Default().SetLevel(lvl)
		return nil
	}
	rootCmd.AddCommand(&versionCmd)
}

var logLevels = map[string]status.LogLevel{
	"trace":   status.LogLevelTrace,
	"info":    status.LogLevelInfo,
	"warning": status.LogLevelWarning,
	"error":   status.LogLevelError,
}

var rootCmd = struct {
	cobra.Command
	logLevel string
}{
	Command: cobra.Command{
		Use:   "numdiff",
		Short: "Compare two text files number-by-number under a configurable tolerance",
	},
}

var versionCmd = cobra.Command{
	Use:   "version",
	Short: "Print the numdiff version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version)
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
