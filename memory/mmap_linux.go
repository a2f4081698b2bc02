//go:build linux

package memory

import "os"
import "unsafe"

import "github.com/pkg/errors"
import "golang.org/x/sys/unix"

// Mapping is a block of words mapped from a device or file, typically a DMA
// coherent buffer exported by a udmabuf or UIO driver.
type Mapping struct {
	data []byte
	file *os.File
}

// MapBlock maps words 32-bit words of path starting at byte offset. An empty
// path maps anonymous memory, which is useful when no DMA device is present.
func MapBlock(path string, offset int64, words int) (*Mapping, error) {
	if words <= 0 {
		return nil, errors.Errorf("memory: cannot map %d words", words)
	}
	size := words * 4
	if path == "" {
		data, err := unix.Mmap(-1, 0, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return nil, errors.Wrap(err, "memory: anonymous mmap")
		}
		return &Mapping{data: data}, nil
	}
	file, err := os.OpenFile(path, os.O_RDWR|unix.O_SYNC, 0)
	if err != nil {
		return nil, errors.Wrapf(err, "memory: open %s", path)
	}
	data, err := unix.Mmap(int(file.Fd()), offset, size, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		file.Close()
		return nil, errors.Wrapf(err, "memory: mmap %s at %#x", path, offset)
	}
	return &Mapping{data: data, file: file}, nil
}

// Words views the mapping as a word block. The view is valid until Close.
func (m *Mapping) Words() []uint32 {
	if len(m.data) == 0 {
		return nil
	}
	return unsafe.Slice((*uint32)(unsafe.Pointer(&m.data[0])), len(m.data)/4)
}

// Close unmaps the block and closes the underlying device.
func (m *Mapping) Close() error {
	if m.data == nil {
		return nil
	}
	err := unix.Munmap(m.data)
	m.data = nil
	if m.file != nil {
		if cerr := m.file.Close(); err == nil {
			err = cerr
		}
		m.file = nil
	}
	return errors.Wrap(err, "memory: unmap")
}
