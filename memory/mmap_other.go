//go:build !linux

package memory

import "github.com/pkg/errors"

// Mapping is a mapped block of words. Mapping is only supported on Linux.
type Mapping struct{}

// MapBlock fails on this platform; use NewBlock.
func MapBlock(path string, offset int64, words int) (*Mapping, error) {
	return nil, errors.New("memory: mapped blocks are only supported on linux")
}

func (m *Mapping) Words() []uint32 { return nil }

func (m *Mapping) Close() error { return nil }
