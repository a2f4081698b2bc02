//go:build !noasm && amd64

package kernel

// mulAddAVX computes dst[i] += src[i]*w eight lanes at a time. The product is
// rounded before the sum, as in mulAddGeneric. len(src) must be >= len(dst).
//
//go:noescape
func mulAddAVX(dst, src []uint32, w float32)

func mulAddVector(dst, src []uint32, w float32) {
	src = src[:len(dst)]
	if len(dst) == 0 {
		return
	}
	mulAddAVX(dst, src, w)
}

func conv3x3Vector(dst, src []uint32, inW, outH, outW int, k *[9]float32) {
	conv3x3Rows(mulAddVector, dst, src, inW, outH, outW, k)
}
