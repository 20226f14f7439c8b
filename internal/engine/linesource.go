package engine

import (
	"bufio"
	"io"
)

// eof is the sentinel byte value the source's readLine/skipLine return
// on end of stream; ordinary bytes are always < 256, so an out-of-range
// int is a safe sentinel that never collides with a real byte.
const eof = -1

// LineSource is the borrowed line-reading collaborator spec.md §6
// requires: read_line(buf, cap) -> (c, n_written) fills up to cap bytes
// and returns the last byte read (newline, EOF or a normal byte, using
// this package's eof sentinel for end of stream) and how many bytes it
// wrote. skip_line and skip_space are the same primitive minus the
// destination buffer.
//
// The engine never closes the underlying stream; that is the embedder's
// responsibility per spec.md §5's resource model.
type LineSource interface {
	// ReadLine fills up to len(buf) bytes with input up to and including
	// the next '\n' (which is written into buf) or EOF, returning the
	// last byte read and the number of bytes written.
	ReadLine(buf []byte) (last int, n int)

	// SkipLine discards bytes up to and including the next '\n' or EOF
	// without copying them anywhere, returning the last byte read.
	SkipLine() (last int)

	// SkipSpace discards a run of blanks and newlines, used by the
	// driver's post-loop "-blank" trailing-whitespace consumption.
	SkipSpace()

	// AtEOF reports whether the underlying stream is exhausted.
	AtEOF() bool
}

// readerSource adapts a *bufio.Reader (already unwrapped from any
// compression) to LineSource.
type readerSource struct {
	r   *bufio.Reader
	eof bool
}

// NewReaderSource wraps r as a LineSource. r should already be buffered;
// callers that need transparent decompression use OpenSource (see
// compressed.go), which wraps the zstd decoder and calls this.
func NewReaderSource(r io.Reader) LineSource {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReaderSize(r, 64*1024)
	}
	return &readerSource{r: br}
}

func (s *readerSource) ReadLine(buf []byte) (int, int) {
	n := 0
	for n < len(buf) {
		b, err := s.r.ReadByte()
		if err != nil {
			s.eof = true
			return eof, n
		}
		buf[n] = b
		n++
		if b == '\n' {
			return '\n', n
		}
	}
	// buffer full without a newline: caller (Engine.ReadLine in lines.go) grows
	// and calls again; report the last byte written so far.
	if n == 0 {
		return eof, 0
	}
	return int(buf[n-1]), n
}

func (s *readerSource) SkipLine() int {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			s.eof = true
			return eof
		}
		if b == '\n' {
			return '\n'
		}
	}
}

func (s *readerSource) SkipSpace() {
	for {
		b, err := s.r.ReadByte()
		if err != nil {
			s.eof = true
			return
		}
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			s.r.UnreadByte()
			return
		}
	}
}

func (s *readerSource) AtEOF() bool { return s.eof }

// StringSource is a LineSource fed from a fixed string. Tests use it to
// feed pre-made content, and GotoNum's scratch sub-engines use it to
// hold the candidate line and the target text; FillLine does not go
// through a LineSource at all.
type StringSource struct {
	data string
	pos  int
}

// NewStringSource returns a LineSource that yields data one
// '\n'-terminated line per ReadLine call, then EOF.
func NewStringSource(data string) *StringSource {
	return &StringSource{data: data}
}

func (s *StringSource) ReadLine(buf []byte) (int, int) {
	n := 0
	for n < len(buf) && s.pos < len(s.data) {
		b := s.data[s.pos]
		s.pos++
		buf[n] = b
		n++
		if b == '\n' {
			return '\n', n
		}
	}
	if s.pos >= len(s.data) {
		if n == 0 {
			return eof, 0
		}
		return eof, n
	}
	return int(buf[n-1]), n
}

func (s *StringSource) SkipLine() int {
	for s.pos < len(s.data) {
		b := s.data[s.pos]
		s.pos++
		if b == '\n' {
			return '\n'
		}
	}
	return eof
}

func (s *StringSource) SkipSpace() {
	for s.pos < len(s.data) {
		b := s.data[s.pos]
		if b != ' ' && b != '\t' && b != '\n' && b != '\r' {
			return
		}
		s.pos++
	}
}

func (s *StringSource) AtEOF() bool { return s.pos >= len(s.data) }
