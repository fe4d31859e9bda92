package aarch64

import "testing"

func reg(n int) Register {
	r, err := NewRegister(n)
	if err != nil {
		panic(err)
	}
	return r
}

func TestEncodeFixedForms(t *testing.T) {
	cases := []struct {
		name string
		inst Instruction
		want uint32
	}{
		{"Svc", Svc{}, 0xD4000001},
		{"Ret", Ret{}, 0xD65F03C0},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.inst.Encode(); got != c.want {
				t.Errorf("Encode() = %#x, want %#x", got, c.want)
			}
		})
	}
}

func TestEncodeMovBoundaryCases(t *testing.T) {
	t.Run("ПОЛОЖИ П0, 0х0", func(t *testing.T) {
		got := Mov{Reg: reg(0), Val: 0x0}.Encode()
		if want := uint32(0xD2800000); got != want {
			t.Errorf("Encode() = %#x, want %#x", got, want)
		}
	})

	// 0хЕЕЕЕ: each Е digit is value 15, so the assembled 16-bit value is
	// 0xFFFF, not the Latin-lookalike reading 0xEEEE — see DESIGN.md's
	// resolution of this dialect's hex alphabet (§9 of the requirements:
	// "the alphabet stops at Е (=15)").
	t.Run("ПОЛОЖИ П30, 0хЕЕЕЕ", func(t *testing.T) {
		got := Mov{Reg: reg(30), Val: 0xFFFF}.Encode()
		if want := uint32(0xD29FFFFE); got != want {
			t.Errorf("Encode() = %#x, want %#x", got, want)
		}
	})
}

func TestEncodeRegisterTriples(t *testing.T) {
	rd, rn, rm := reg(1), reg(2), reg(3)

	cases := []struct {
		name string
		inst Instruction
		want uint32
	}{
		{"Add", Add{Rd: rd, Rn: rn, Rm: rm}, 0x8B000000 | 3<<16 | 2<<5 | 1},
		{"Sub", Sub{Rd: rd, Rn: rn, Rm: rm}, 0xCB000000 | 3<<16 | 2<<5 | 1},
		{"Mul", Mul{Rd: rd, Rn: rn, Rm: rm}, 0x9B007C00 | 3<<16 | 2<<5 | 1},
		{"SDiv", SDiv{Rd: rd, Rn: rn, Rm: rm}, 0x9AC00C00 | 3<<16 | 2<<5 | 1},
		{"Eor", Eor{Rd: rd, Rn: rn, Rm: rm}, 0xCA000000 | 3<<16 | 2<<5 | 1},
		{"Cmp", Cmp{Rn: rn, Rm: rm}, 0xEB000000 | 3<<16 | 2<<5 | 0x1F},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.inst.Encode(); got != c.want {
				t.Errorf("Encode() = %#x, want %#x", got, c.want)
			}
		})
	}
}

func TestEncodeImmediateForms(t *testing.T) {
	rd, rn := reg(4), reg(5)

	cases := []struct {
		name string
		inst Instruction
		want uint32
	}{
		{"Addi", Addi{Rd: rd, Rn: rn, Num: 0xFFF}, 0x91000000 | 0xFFF<<10 | 5<<5 | 4},
		{"Subi", Subi{Rd: rd, Rn: rn, Num: 0xFFF}, 0xD1000000 | 0xFFF<<10 | 5<<5 | 4},
		{"Cmpi", Cmpi{Rn: rn, Num: 0x100}, 0xF1000000 | 0x100<<10 | 5<<5 | 0x1F},
		{"Addi masks overflow", Addi{Rd: rd, Rn: rn, Num: 0x1FFF}, 0x91000000 | (0x1FFF&0xFFF)<<10 | 5<<5 | 4},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.inst.Encode(); got != c.want {
				t.Errorf("Encode() = %#x, want %#x", got, c.want)
			}
		})
	}
}

func TestEncodeLoadStore(t *testing.T) {
	rt, rn := reg(6), reg(7)

	cases := []struct {
		name string
		inst Instruction
		want uint32
	}{
		{"Ldr", Ldr{Rt: rt, Rn: rn}, 0xF9400000 | 7<<5 | 6},
		{"Str", Str{Rt: rt, Rn: rn}, 0xF9000000 | 7<<5 | 6},
		{"Ldrb", Ldrb{Rt: rt, Rn: rn}, 0x39400000 | 7<<5 | 6},
		{"Strb", Strb{Rt: rt, Rn: rn}, 0x39000000 | 7<<5 | 6},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := c.inst.Encode(); got != c.want {
				t.Errorf("Encode() = %#x, want %#x", got, c.want)
			}
		})
	}
}

func TestEncodeAdr(t *testing.T) {
	// УКАЖИ П1, МСГ with МСГ four bytes ahead (spec.md §8 scenario 5).
	got := Adr{Reg: reg(1), Off: 4}.Encode()
	if want := uint32(0x10000021); got != want {
		t.Errorf("Encode() = %#x, want %#x", got, want)
	}
}

func TestEncodeBranch(t *testing.T) {
	t.Run("forward unconditional", func(t *testing.T) {
		got := B{Off: 8}.Encode()
		if want := uint32(0x14000002); got != want {
			t.Errorf("Encode() = %#x, want %#x", got, want)
		}
	})

	t.Run("backward conditional, two's-complement masked", func(t *testing.T) {
		got := Bcc{Cond: 0x1, Off: -8}.Encode()
		if want := uint32(0x54FFFFC1); got != want {
			t.Errorf("Encode() = %#x, want %#x", got, want)
		}
	})
}

func TestConditionByTag(t *testing.T) {
	want := map[string]uint8{
		"РАВНО":   0x0,
		"НЕРАВНО": 0x1,
		"БОЛЬШЕ":  0xC,
		"МЕНЬШЕ":  0xB,
		"ВЫШЕ":    0xA,
		"НИЖЕ":    0xD,
	}
	for tag, code := range want {
		if got, ok := ConditionByTag[tag]; !ok || got != code {
			t.Errorf("ConditionByTag[%q] = %#x, %v; want %#x, true", tag, got, ok, code)
		}
	}
}
