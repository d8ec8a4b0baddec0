package audio

// DefaultCapacity is the initial sample allocation, four seconds at SampleRate.
const DefaultCapacity = 32000

// Buffer is a growable sample buffer. Its capacity doubles whenever it overflows;
// Samples returns only the samples actually appended.
type Buffer struct {
	data []int8
	n    int
}

// NewBuffer allocates a buffer with room for initial samples.
func NewBuffer(initial int) *Buffer {
	if initial <= 0 {
		initial = DefaultCapacity
	}
	return &Buffer{data: make([]int8, initial)}
}

// Append adds one sample, growing the allocation if it is full.
func (b *Buffer) Append(v int8) {
	if b.n >= len(b.data) {
		grown := make([]int8, 2*len(b.data))
		copy(grown, b.data)
		b.data = grown
	}
	b.data[b.n] = v
	b.n++
}

// Len returns the number of appended samples.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the current allocation size.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Samples returns the appended samples, truncated to Len.
func (b *Buffer) Samples() []int8 {
	return b.data[:b.n]
}

// Reset empties the buffer, keeping its allocation.
func (b *Buffer) Reset() {
	b.n = 0
}
