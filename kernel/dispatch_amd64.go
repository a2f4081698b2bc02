//go:build !noasm && amd64

package kernel

import "github.com/klauspost/cpuid/v2"

func init() {
	// Check if the CPU supports AVX
	if cpuid.CPU.Supports(cpuid.AVX) {
		MulAdd = mulAddVector
		Conv3x3 = conv3x3Vector
		variant = "avx (" + cpuid.CPU.BrandName + ")"
	} else {
		MulAdd = mulAddGeneric
		Conv3x3 = conv3x3Generic
		variant = "generic"
	}
}
