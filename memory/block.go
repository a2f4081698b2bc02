package memory

// NewBlock allocates a heap backed block of words.
func NewBlock(words int) []uint32 {
	if words < 0 {
		words = 0
	}
	return make([]uint32, words)
}
