// Package mnist reads MNIST style IDX image files as network input channels.
package mnist

import "bytes"
import "compress/gzip"
import "crypto/sha256"
import "encoding/binary"
import "encoding/hex"
import "io"
import "os"
import "path/filepath"
import "strings"

import "github.com/pkg/errors"

import "github.com/neurlang/netengine/memory"

// ImgSize is the height and width of the original MNIST digits.
const ImgSize = 28

const imagesMagic = 0x00000803

// maxPixels bounds the pixel payload a header may announce.
const maxPixels = 1 << 32

var (
	ErrFormat = errors.New("mnist: not an idx3 image file")
	ErrDigest = errors.New("mnist: file hash is incorrect")
	ErrRange  = errors.New("mnist: image index out of range")
)

// digests of the published MNIST image files, checked when a file carries one
// of these names.
var digests = map[string]string{
	"t10k-images-idx3-ubyte.gz":  "8d422c7b0a1c1c79245a5bcf07fe86e33eeafee792b84584aec276f5a2dbc4e6",
	"train-images-idx3-ubyte.gz": "440fcabf73cc546fa21475e81ea370265605f56be210a4024d2ca8f203523609",
}

// Set is a loaded set of greyscale images.
type Set struct {
	Count, Height, Width int
	pixels               []byte
}

// Open loads an IDX3 image file. Files ending in .gz are decompressed.
func Open(path string) (*Set, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if want, ok := digests[filepath.Base(path)]; ok {
		sum := sha256.Sum256(raw)
		if hex.EncodeToString(sum[:]) != want {
			return nil, errors.Wrapf(ErrDigest, "%s", path)
		}
	}
	var r io.Reader = bytes.NewReader(raw)
	if strings.HasSuffix(path, ".gz") {
		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, errors.Wrapf(err, "mnist: gzip %s", path)
		}
		defer gz.Close()
		r = gz
	}
	s, err := Read(r)
	return s, errors.Wrapf(err, "%s", path)
}

// Read parses an uncompressed IDX3 image stream.
func Read(r io.Reader) (*Set, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	if header[0] != imagesMagic {
		return nil, errors.Wrapf(ErrFormat, "magic %#x", header[0])
	}
	count, h, w := int64(header[1]), int64(header[2]), int64(header[3])
	if h < 1 || h > 65535 || w < 1 || w > 65535 || count > maxPixels/(h*w) {
		return nil, errors.Wrapf(ErrFormat, "header announces %d images of %dx%d", count, h, w)
	}
	n := count * h * w
	pixels, err := io.ReadAll(io.LimitReader(r, n))
	if err != nil {
		return nil, errors.Wrap(ErrFormat, err.Error())
	}
	if int64(len(pixels)) < n {
		return nil, errors.Wrapf(ErrFormat, "%d images of %dx%d: stream holds %d of %d bytes", count, h, w, len(pixels), n)
	}
	return &Set{Count: int(count), Height: int(h), Width: int(w), pixels: pixels}, nil
}

// Pixels returns the raw bytes of the i-th image.
func (s *Set) Pixels(i int) ([]byte, error) {
	if i < 0 || i >= s.Count {
		return nil, errors.Wrapf(ErrRange, "%d of %d", i, s.Count)
	}
	n := s.Height * s.Width
	return s.pixels[i*n : (i+1)*n : (i+1)*n], nil
}

// Words returns the i-th image scaled to [0, 1] as a channel buffer.
func (s *Set) Words(i int) ([]uint32, error) {
	p, err := s.Pixels(i)
	if err != nil {
		return nil, err
	}
	o := make([]uint32, len(p))
	for j, v := range p {
		o[j] = memory.Word(float32(v) / 255)
	}
	return o, nil
}
