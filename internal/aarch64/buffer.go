package aarch64

import "encoding/binary"

// Buffer is an append-only byte vector for the emitted .text payload. It
// grows the same way the teacher's sectionBuffer did — via plain append,
// capacity left to Go's slice-growth policy (spec.md §5 leaves this to the
// implementation).
type Buffer struct {
	data []byte
}

// NewBuffer returns an empty Buffer ready for writes.
func NewBuffer() *Buffer {
	return &Buffer{data: make([]byte, 0)}
}

// Length returns the current size of the buffer in bytes.
func (b *Buffer) Length() int {
	return len(b.data)
}

// Bytes returns the buffer's contents. The caller must not mutate the
// returned slice.
func (b *Buffer) Bytes() []byte {
	return b.data
}

// WriteInstruction appends the little-endian bytes of a 32-bit instruction
// word.
func (b *Buffer) WriteInstruction(word uint32) {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], word)
	b.data = append(b.data, buf[:]...)
}

// AppendASCII appends the raw bytes of text and returns the offset at which
// the append began.
func (b *Buffer) AppendASCII(text string) int {
	start := len(b.data)
	b.data = append(b.data, text...)
	return start
}

// AppendZeros appends n zero bytes.
func (b *Buffer) AppendZeros(n int) {
	b.data = append(b.data, make([]byte, n)...)
}

// AppendRaw appends arbitrary bytes without alignment.
func (b *Buffer) AppendRaw(raw []byte) {
	b.data = append(b.data, raw...)
}
