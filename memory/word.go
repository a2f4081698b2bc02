package memory

import "math"

// Float reinterprets a buffer word as an IEEE-754 single.
func Float(w uint32) float32 {
	return math.Float32frombits(w)
}

// Word reinterprets an IEEE-754 single as a buffer word.
func Word(f float32) uint32 {
	return math.Float32bits(f)
}

// Floats copies a word buffer into a new float slice.
func Floats(ws []uint32) []float32 {
	out := make([]float32, len(ws))
	for i, w := range ws {
		out[i] = Float(w)
	}
	return out
}

// Words copies a float slice into a new word buffer.
func Words(fs []float32) []uint32 {
	out := make([]uint32, len(fs))
	for i, f := range fs {
		out[i] = Word(f)
	}
	return out
}
