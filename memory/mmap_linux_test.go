//go:build linux

package memory

import "testing"

func TestMapBlockAnonymous(t *testing.T) {
	m, err := MapBlock("", 0, 64)
	if err != nil {
		t.Skipf("anonymous mmap unavailable: %v", err)
	}
	words := m.Words()
	if len(words) != 64 {
		t.Fatalf("mapped %d words, want 64", len(words))
	}
	a := NewArena(words)
	buf, err := a.Allocate(64)
	if err != nil {
		t.Fatal(err)
	}
	buf[63] = Word(2.5)
	if Float(words[63]) != 2.5 {
		t.Errorf("arena region does not alias the mapping")
	}
	if err := m.Close(); err != nil {
		t.Errorf("close: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Errorf("second close: %v", err)
	}
}

func TestMapBlockRejectsEmpty(t *testing.T) {
	if _, err := MapBlock("", 0, 0); err == nil {
		t.Errorf("mapping zero words succeeded")
	}
}
