// Package kernel implements the software compute primitives of the layer engine.
// All buffers are word slices holding IEEE-754 singles.
package kernel

import "math"

import "github.com/neurlang/netengine/memory"

// Lowest is the initial value of every max pooling window.
const Lowest = -math.MaxFloat32

// MulAdd accumulates src*w into dst element wise, over len(dst) elements.
var MulAdd func(dst, src []uint32, w float32) = mulAddGeneric

// Conv3x3 accumulates the valid 3x3 correlation of src (row length inW) with k
// into dst of outH*outW elements.
var Conv3x3 func(dst, src []uint32, inW, outH, outW int, k *[9]float32) = conv3x3Generic

var variant = "generic"

// Variant reports which implementation of MulAdd and Conv3x3 is in use.
func Variant() string {
	return variant
}

// Fill sets every element of dst to v.
func Fill(dst []uint32, v float32) {
	w := memory.Word(v)
	for i := range dst {
		dst[i] = w
	}
}

// AddScalar adds v to every element of dst.
func AddScalar(dst []uint32, v float32) {
	for i := range dst {
		dst[i] = memory.Word(memory.Float(dst[i]) + v)
	}
}

// PReLU scales the negative elements of dst by alpha.
func PReLU(dst []uint32, alpha float32) {
	for i := range dst {
		if x := memory.Float(dst[i]); x < 0 {
			dst[i] = memory.Word(x * alpha)
		}
	}
}

// MaxPool writes the maximum of every size*size window of src, stepped by
// stride, into dst. Window cells outside inH*inW are skipped, not padded.
// dst is first filled with Lowest.
func MaxPool(dst, src []uint32, inH, inW, outH, outW, size, stride int) {
	Fill(dst[:outH*outW], Lowest)
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			max := float32(Lowest)
			sy, sx := y*stride, x*stride
			for ky := 0; ky < size; ky++ {
				iy := sy + ky
				if iy >= inH {
					break
				}
				for kx := 0; kx < size; kx++ {
					ix := sx + kx
					if ix >= inW {
						break
					}
					if v := memory.Float(src[iy*inW+ix]); v > max {
						max = v
					}
				}
			}
			dst[y*outW+x] = memory.Word(max)
		}
	}
}

// Softmax2 normalizes a and b pairwise over height*width positions so that
// every pair sums to one. The maximum is subtracted before exponentiation.
func Softmax2(a, b []uint32, height, width int) {
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			i := y*width + x
			x1, x2 := memory.Float(a[i]), memory.Float(b[i])
			m := x1
			if x2 > m {
				m = x2
			}
			e1 := float32(math.Exp(float64(x1 - m)))
			e2 := float32(math.Exp(float64(x2 - m)))
			sum := e1 + e2
			a[i] = memory.Word(e1 / sum)
			b[i] = memory.Word(e2 / sum)
		}
	}
}

func mulAddGeneric(dst, src []uint32, w float32) {
	src = src[:len(dst)]
	for i := range dst {
		dst[i] = memory.Word(memory.Float(dst[i]) + float32(memory.Float(src[i])*w))
	}
}

func conv3x3Generic(dst, src []uint32, inW, outH, outW int, k *[9]float32) {
	for y := 0; y < outH; y++ {
		for x := 0; x < outW; x++ {
			dst[y*outW+x] = memory.Word(memory.Float(dst[y*outW+x]) + tap3x3(src, inW, y, x, k))
		}
	}
}

// conv3x3Rows computes every output row as nine shifted row products summed
// in tap order into a zeroed row, which is then added to dst. The rounding is
// the same as conv3x3Generic.
func conv3x3Rows(mulAdd func(dst, src []uint32, w float32), dst, src []uint32, inW, outH, outW int, k *[9]float32) {
	if outW <= 0 || outH <= 0 {
		return
	}
	row := make([]uint32, outW)
	for y := 0; y < outH; y++ {
		Fill(row, 0)
		for ky := 0; ky < 3; ky++ {
			for kx := 0; kx < 3; kx++ {
				off := (y+ky)*inW + kx
				mulAdd(row, src[off:off+outW], k[ky*3+kx])
			}
		}
		mulAdd(dst[y*outW:(y+1)*outW], row, 1)
	}
}

func tap3x3(src []uint32, inW, y, x int, k *[9]float32) (sum float32) {
	for ky := 0; ky < 3; ky++ {
		row := (y+ky)*inW + x
		for kx := 0; kx < 3; kx++ {
			sum += float32(memory.Float(src[row+kx]) * k[ky*3+kx])
		}
	}
	return
}
