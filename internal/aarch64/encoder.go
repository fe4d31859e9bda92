package aarch64

// Instruction is a pure function from an instruction variant to its 32-bit
// AArch64 encoding. Every variant listed in spec.md §4.2 implements it; the
// encoder is total — given a well-formed variant it always produces a word,
// masking out-of-range fields silently (spec.md §4.2, §9). Range checking,
// where the driver enables it, happens before Encode is ever called.
type Instruction interface {
	Encode() uint32
}

// Mov is MOVZ Xd, #val (hw=0): base 0xD2800000, val at bits 5..20.
type Mov struct {
	Reg Register
	Val uint16
}

func (m Mov) Encode() uint32 {
	return 0xD2800000 | uint32(m.Val)<<5 | uint32(m.Reg.Encoding())
}

// Adr is ADR Xd, #off: base 0x10000000, with the byte offset split across
// immlo (bits 29..30) and immhi (bits 5..23).
type Adr struct {
	Reg Register
	Off int32
}

func (a Adr) Encode() uint32 {
	off := uint32(a.Off)
	immlo := (off & 0b11) << 29
	immhi := ((off >> 2) & 0x7FFFF) << 5
	return 0x10000000 | immlo | immhi | uint32(a.Reg.Encoding())
}

// Svc is SVC #0.
type Svc struct{}

func (Svc) Encode() uint32 { return 0xD4000001 }

// Ret is RET (implicit X30).
type Ret struct{}

func (Ret) Encode() uint32 { return 0xD65F03C0 }

// Add is ADD Xd, Xn, Xm.
type Add struct {
	Rd, Rn, Rm Register
}

func (a Add) Encode() uint32 {
	return 0x8B000000 | uint32(a.Rm.Encoding())<<16 | uint32(a.Rn.Encoding())<<5 | uint32(a.Rd.Encoding())
}

// Addi is ADD Xd, Xn, #num (12-bit unsigned immediate).
type Addi struct {
	Rd, Rn Register
	Num    uint32
}

func (a Addi) Encode() uint32 {
	return 0x91000000 | (a.Num&0xFFF)<<10 | uint32(a.Rn.Encoding())<<5 | uint32(a.Rd.Encoding())
}

// Sub is SUB Xd, Xn, Xm.
type Sub struct {
	Rd, Rn, Rm Register
}

func (s Sub) Encode() uint32 {
	return 0xCB000000 | uint32(s.Rm.Encoding())<<16 | uint32(s.Rn.Encoding())<<5 | uint32(s.Rd.Encoding())
}

// Subi is SUB Xd, Xn, #num.
type Subi struct {
	Rd, Rn Register
	Num    uint32
}

func (s Subi) Encode() uint32 {
	return 0xD1000000 | (s.Num&0xFFF)<<10 | uint32(s.Rn.Encoding())<<5 | uint32(s.Rd.Encoding())
}

// Mul is MUL Xd, Xn, Xm (MADD with Xa=XZR under the hood, base already
// carries the Ra=11111 field).
type Mul struct {
	Rd, Rn, Rm Register
}

func (m Mul) Encode() uint32 {
	return 0x9B007C00 | uint32(m.Rm.Encoding())<<16 | uint32(m.Rn.Encoding())<<5 | uint32(m.Rd.Encoding())
}

// SDiv is SDIV Xd, Xn, Xm.
type SDiv struct {
	Rd, Rn, Rm Register
}

func (s SDiv) Encode() uint32 {
	return 0x9AC00C00 | uint32(s.Rm.Encoding())<<16 | uint32(s.Rn.Encoding())<<5 | uint32(s.Rd.Encoding())
}

// Cmp is CMP Xn, Xm, a SUBS with the result discarded into П31.
type Cmp struct {
	Rn, Rm Register
}

func (c Cmp) Encode() uint32 {
	return 0xEB000000 | uint32(c.Rm.Encoding())<<16 | uint32(c.Rn.Encoding())<<5 | uint32(discardRegister().Encoding())
}

// Cmpi is CMP Xn, #num, a SUBS immediate with the result discarded.
type Cmpi struct {
	Rn  Register
	Num uint32
}

func (c Cmpi) Encode() uint32 {
	return 0xF1000000 | (c.Num&0xFFF)<<10 | uint32(c.Rn.Encoding())<<5 | uint32(discardRegister().Encoding())
}

// B is an unconditional branch; Off is the signed byte displacement from
// the instruction's own address, always a multiple of 4.
type B struct {
	Off int32
}

func (b B) Encode() uint32 {
	imm26 := uint32(b.Off/4) & 0x03FFFFFF
	return 0x14000000 | imm26
}

// Bcc is a conditional branch (B.cond); Cond is the 4-bit condition field.
type Bcc struct {
	Cond uint8
	Off  int32
}

func (b Bcc) Encode() uint32 {
	imm19 := (uint32(b.Off/4) & 0x7FFFF) << 5
	return 0x54000000 | imm19 | uint32(b.Cond&0xF)
}

// Ldr is LDR Xt, [Xn] (64-bit load, zero immediate offset).
type Ldr struct {
	Rt, Rn Register
}

func (l Ldr) Encode() uint32 {
	return 0xF9400000 | uint32(l.Rn.Encoding())<<5 | uint32(l.Rt.Encoding())
}

// Str is STR Xt, [Xn].
type Str struct {
	Rt, Rn Register
}

func (s Str) Encode() uint32 {
	return 0xF9000000 | uint32(s.Rn.Encoding())<<5 | uint32(s.Rt.Encoding())
}

// Eor is EOR Xd, Xn, Xm.
type Eor struct {
	Rd, Rn, Rm Register
}

func (e Eor) Encode() uint32 {
	return 0xCA000000 | uint32(e.Rm.Encoding())<<16 | uint32(e.Rn.Encoding())<<5 | uint32(e.Rd.Encoding())
}

// Ldrb is LDRB Wt, [Xn].
type Ldrb struct {
	Rt, Rn Register
}

func (l Ldrb) Encode() uint32 {
	return 0x39400000 | uint32(l.Rn.Encoding())<<5 | uint32(l.Rt.Encoding())
}

// Strb is STRB Wt, [Xn].
type Strb struct {
	Rt, Rn Register
}

func (s Strb) Encode() uint32 {
	return 0x39000000 | uint32(s.Rn.Encoding())<<5 | uint32(s.Rt.Encoding())
}

// Condition tags recognised after КОЛИ_ (spec.md §4.5).
const (
	CondEqual        uint8 = 0x0 // РАВНО
	CondNotEqual     uint8 = 0x1 // НЕРАВНО
	CondGreaterThan  uint8 = 0xC // БОЛЬШЕ
	CondLessThan     uint8 = 0xB // МЕНЬШЕ
	CondHigher       uint8 = 0xA // ВЫШЕ
	CondLower        uint8 = 0xD // НИЖЕ
)

// ConditionByTag maps a КОЛИ_<tag> suffix to its 4-bit condition code.
var ConditionByTag = map[string]uint8{
	"РАВНО":    CondEqual,
	"НЕРАВНО":  CondNotEqual,
	"БОЛЬШЕ":   CondGreaterThan,
	"МЕНЬШЕ":   CondLessThan,
	"ВЫШЕ":     CondHigher,
	"НИЖЕ":     CondLower,
}
