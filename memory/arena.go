// Package memory implements the word arena that backs layer output channels
package memory

import "errors"

// ErrExhausted is returned when an allocation does not fit the remaining block.
var ErrExhausted = errors.New("memory: arena exhausted")

// Arena is a bump allocator over a caller supplied block of 32-bit words.
// Regions handed out are never freed or moved.
type Arena struct {
	block []uint32
	used  int
}

// NewArena creates an arena over block. The block is not copied.
func NewArena(block []uint32) *Arena {
	return &Arena{block: block}
}

// Allocate hands out the next n words. The returned slice has capacity n, so a
// later reslice can never reach into the neighbouring region. If n does not fit,
// ErrExhausted is returned and the arena is left untouched.
func (a *Arena) Allocate(n int) ([]uint32, error) {
	if n < 0 || n > a.Available() {
		return nil, ErrExhausted
	}
	tail := a.used
	a.used += n
	return a.block[tail:a.used:a.used], nil
}

// Capacity reports the total number of words in the block.
func (a *Arena) Capacity() int {
	return len(a.block)
}

// Used reports the number of words handed out so far.
func (a *Arena) Used() int {
	return a.used
}

// Available reports the number of words still free.
func (a *Arena) Available() int {
	return len(a.block) - a.used
}

// Tail reports the offset of the next free word.
func (a *Arena) Tail() int {
	return a.used
}

// Block returns the whole backing block.
func (a *Arena) Block() []uint32 {
	return a.block
}
