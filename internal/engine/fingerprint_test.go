package engine

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTemp(t *testing.T, dir, name, content string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile(%s): %s", p, err)
	}
	return p
}

func TestFingerprintStableForIdenticalContent(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a1.txt", "hello\n")
	b := writeTemp(t, dir, "b1.txt", "world\n")
	a2 := writeTemp(t, dir, "a2.txt", "hello\n")
	b2 := writeTemp(t, dir, "b2.txt", "world\n")

	fp1, err := Fingerprint(a, b)
	if err != nil {
		t.Fatalf("Fingerprint: %s", err)
	}
	fp2, err := Fingerprint(a2, b2)
	if err != nil {
		t.Fatalf("Fingerprint: %s", err)
	}
	if fp1 != fp2 {
		t.Errorf("Fingerprint(%q,%q) = %s, want match with same-content pair %s", a, b, fp1, fp2)
	}
}

func TestFingerprintDiffersWhenSideOrderSwapped(t *testing.T) {
	dir := t.TempDir()
	a := writeTemp(t, dir, "a.txt", "hello\n")
	b := writeTemp(t, dir, "b.txt", "world\n")

	fp1, err := Fingerprint(a, b)
	if err != nil {
		t.Fatalf("Fingerprint: %s", err)
	}
	fp2, err := Fingerprint(b, a)
	if err != nil {
		t.Fatalf("Fingerprint: %s", err)
	}
	if fp1 == fp2 {
		t.Errorf("Fingerprint should distinguish (a,b) from (b,a), both gave %s", fp1)
	}
}

func TestHeaderCacheSeenMarksOnFirstCall(t *testing.T) {
	c := NewHeaderCache()
	if c.Seen("x") {
		t.Error("Seen(x) should be false the first time")
	}
	if !c.Seen("x") {
		t.Error("Seen(x) should be true after the first call recorded it")
	}
	if c.Seen("y") {
		t.Error("Seen(y) should be false for a fingerprint never seen before")
	}
}
