package feedforward

import "compress/lzw"
import "encoding/binary"
import "io"
import "os"

import "github.com/pkg/errors"

// ErrBlockMismatch is returned when a saved block does not fit the layer it
// is read into.
var ErrBlockMismatch = errors.New("feedforward: saved block does not match layer")

// WriteCompressedBlocksToFile writes the used part of every layer block to a lzw file
func (f *FeedforwardNetwork) WriteCompressedBlocksToFile(name string) error {
	file, err := os.Create(name)
	if err != nil {
		return err
	}
	err = f.WriteCompressedBlocks(file)
	if cerr := file.Close(); err == nil {
		err = cerr
	}
	return err
}

// WriteCompressedBlocks writes the used part of every layer block to a writer,
// each as a little endian word count followed by the words.
func (f *FeedforwardNetwork) WriteCompressedBlocks(w io.Writer) error {
	lw := lzw.NewWriter(w, lzw.LSB, 8)
	for i, l := range f.layers {
		used := l.Arena().Block()[:l.Arena().Used()]
		if err := binary.Write(lw, binary.LittleEndian, uint32(len(used))); err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
		if err := binary.Write(lw, binary.LittleEndian, used); err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
	}
	return lw.Close()
}

// ReadCompressedBlocksFromFile reads layer blocks from a lzw file
func (f *FeedforwardNetwork) ReadCompressedBlocksFromFile(name string) error {
	file, err := os.Open(name)
	if err != nil {
		return err
	}
	err = f.ReadCompressedBlocks(file)
	file.Close()
	return err
}

// ReadCompressedBlocks reads layer blocks written by WriteCompressedBlocks
// into a network of the same shape.
func (f *FeedforwardNetwork) ReadCompressedBlocks(r io.Reader) error {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()
	for i, l := range f.layers {
		var n uint32
		if err := binary.Read(lr, binary.LittleEndian, &n); err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
		if int(n) != l.Arena().Used() {
			return errors.Wrapf(ErrBlockMismatch, "layer %d: saved %d words, layer uses %d", i, n, l.Arena().Used())
		}
		if err := binary.Read(lr, binary.LittleEndian, l.Arena().Block()[:n]); err != nil {
			return errors.Wrapf(err, "layer %d", i)
		}
	}
	return nil
}
