// Package aarch64 encodes instructions for the assembler's AArch64 target:
// the register model and the closed set of instruction variants the
// resolver feeds into the 32-bit word encoder.
package aarch64

import "fmt"

// discard is the encoder-internal register index (П31), used as the
// destination field for SUBS-based compare instructions. It is unexported
// so that it can never be produced by parsing source text — only the
// encoder itself may reach for it (Cmp, Cmpi).
const discard uint8 = 31

// Register identifies a general-purpose Помысел register, П0 through П30.
type Register struct {
	n uint8
}

// NewRegister validates n against the source-visible range [0, 30] and
// returns the corresponding Register. Register 31 is reserved to the
// encoder and is rejected here, matching spec.md §4.1.
func NewRegister(n int) (Register, error) {
	if n < 0 || n > 30 {
		return Register{}, fmt.Errorf("register index out of range [0, 30]: %d", n)
	}
	return Register{n: uint8(n)}, nil
}

// Encoding returns the 5-bit field value used to place this register in an
// instruction word.
func (r Register) Encoding() uint8 {
	return r.n
}

// discardRegister is the private П31 used only by Cmp/Cmpi encodings.
func discardRegister() Register {
	return Register{n: discard}
}
