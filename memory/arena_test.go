package memory

import "errors"
import "testing"

func TestArenaAllocate(t *testing.T) {
	a := NewArena(NewBlock(100))
	for i, n := range []int{10, 0, 25, 65} {
		tail := a.Tail()
		buf, err := a.Allocate(n)
		if err != nil {
			t.Fatalf("allocation %d: %v", i, err)
		}
		if len(buf) != n || cap(buf) != n {
			t.Errorf("allocation %d: len %d cap %d, want %d", i, len(buf), cap(buf), n)
		}
		if a.Tail() != tail+n {
			t.Errorf("allocation %d: tail %d, want %d", i, a.Tail(), tail+n)
		}
		if a.Used()+a.Available() != a.Capacity() {
			t.Errorf("allocation %d: used %d + available %d != capacity %d", i, a.Used(), a.Available(), a.Capacity())
		}
	}
	if a.Available() != 0 {
		t.Errorf("available %d, want 0", a.Available())
	}
}

func TestArenaRegionsDoNotOverlap(t *testing.T) {
	a := NewArena(NewBlock(8))
	first, _ := a.Allocate(4)
	second, _ := a.Allocate(4)
	for i := range first {
		first[i] = 1
	}
	for i := range second {
		second[i] = 2
	}
	grown := append(first, 9)
	if second[0] != 2 {
		t.Errorf("append on first region wrote into the second one")
	}
	if &grown[0] == &first[0] {
		t.Errorf("append on a full region reused the arena block")
	}
	block := a.Block()
	if block[3] != 1 || block[4] != 2 {
		t.Errorf("regions are not carved from the block in order: %v", block)
	}
}

func TestArenaExhausted(t *testing.T) {
	a := NewArena(NewBlock(16))
	if _, err := a.Allocate(10); err != nil {
		t.Fatal(err)
	}
	buf, err := a.Allocate(7)
	if !errors.Is(err, ErrExhausted) {
		t.Fatalf("got %v, want ErrExhausted", err)
	}
	if buf != nil {
		t.Errorf("failed allocation returned a buffer")
	}
	if a.Used() != 10 || a.Available() != 6 {
		t.Errorf("failed allocation changed the arena: used %d available %d", a.Used(), a.Available())
	}
	if _, err := a.Allocate(-1); !errors.Is(err, ErrExhausted) {
		t.Errorf("negative allocation: got %v", err)
	}
	if _, err := a.Allocate(6); err != nil {
		t.Errorf("exact fit after a failure: %v", err)
	}
}

func FuzzArenaInvariant(f *testing.F) {
	f.Add(uint16(64), []byte{1, 2, 3, 60})
	f.Fuzz(func(t *testing.T, capacity uint16, sizes []byte) {
		a := NewArena(NewBlock(int(capacity)))
		used := 0
		for _, s := range sizes {
			_, err := a.Allocate(int(s))
			if err == nil {
				used += int(s)
			} else if int(s) <= a.Available() {
				t.Fatalf("allocation of %d failed with %d available", s, a.Available())
			}
			if a.Used() != used {
				t.Fatalf("used %d, want %d", a.Used(), used)
			}
			if a.Used()+a.Available() != a.Capacity() {
				t.Fatalf("used %d + available %d != capacity %d", a.Used(), a.Available(), a.Capacity())
			}
		}
	})
}
