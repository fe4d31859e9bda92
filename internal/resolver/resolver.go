// Package resolver implements the two-pass sizing/emission pipeline of
// spec.md §4.5: pass 1 walks the source to build the label table and the
// final size, pass 2 re-walks it to emit instruction words and data
// payloads into a Buffer. The pass split mirrors the teacher's v0/kasm
// codegen_passes.go collectPass/emitPass split, trimmed to this dialect's
// single implicit .text section. Both passes share the same line
// classification; pass 1 sizes directives with directiveSize and pass 2
// emits them with emitDirective, and Resolve checks that pass 1's final
// size equals the emitted length.
package resolver

import (
	"fmt"
	"strings"

	"github.com/slovoasm/slovoasm/internal/aarch64"
	"github.com/slovoasm/slovoasm/internal/debugcontext"
	"github.com/slovoasm/slovoasm/internal/lexsupport"
)

// IncludeReader reads the full contents of a filesystem path, backing the
// ВЛОЖИ directive (spec.md §6). It is invoked once per pass, per spec.md
// §9 ("the file is read in both passes for simplicity").
type IncludeReader func(path string) ([]byte, error)

// dataDirectives are the three mnemonics that size differently from a
// plain 4-byte instruction (spec.md §4.5).
var dataDirectives = map[string]bool{
	"ОТМЕРЬ": true,
	"СЛОВО":  true,
	"ВЛОЖИ":  true,
}

const condBranchPrefix = "КОЛИ_"

// Options configures a Resolver's optional behaviour.
type Options struct {
	// Strict enables range-checking on immediates and displacements
	// instead of silently masking them (spec.md §7's "optional" Range
	// kind). Off by default to match the source dialect's own masking
	// behaviour.
	Strict bool
}

// Resolver runs the two-pass assembly of a single source file into a flat
// .text byte payload.
type Resolver struct {
	opts     Options
	readFile IncludeReader
	debug    *debugcontext.DebugContext
}

// New constructs a Resolver. readFile backs ВЛОЖИ; a nil debug context is
// valid and simply disables diagnostic recording.
func New(opts Options, readFile IncludeReader, debug *debugcontext.DebugContext) *Resolver {
	return &Resolver{opts: opts, readFile: readFile, debug: debug}
}

// Result is the outcome of a successful Resolve: the emitted .text bytes
// and the final label table (offsets within those bytes).
type Result struct {
	Code   []byte
	Labels map[string]int
}

// Resolve runs pass 1 (sizing and label collection) followed by pass 2
// (emission), and returns the assembled .text payload. The first error
// aborts the run — there is no error recovery (spec.md §7).
func (r *Resolver) Resolve(source string) (*Result, error) {
	lines := splitLines(source)

	if r.debug != nil {
		r.debug.SetPhase("pass1")
	}
	labels, finalSize, err := r.pass1(lines)
	if err != nil {
		return nil, err
	}

	if r.debug != nil {
		r.debug.SetPhase("pass2")
	}
	buf, err := r.pass2(lines, labels)
	if err != nil {
		return nil, err
	}

	if buf.Length() != finalSize {
		return nil, fmt.Errorf("internal error: pass1/pass2 cursor mismatch (%d != %d)", finalSize, buf.Length())
	}

	return &Result{Code: buf.Bytes(), Labels: labels}, nil
}

// splitLines splits source on '\n' and tolerates a trailing '\r' on each
// line (spec.md §6).
func splitLines(source string) []string {
	raw := strings.Split(source, "\n")
	lines := make([]string, len(raw))
	for i, l := range raw {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}

// pad4 rounds n up to the next multiple of 4.
func pad4(n int) int {
	return (n + 3) &^ 3
}

// --- Pass 1: sizing ---------------------------------------------------

func (r *Resolver) pass1(lines []string) (map[string]int, int, error) {
	labels := make(map[string]int)
	cursor := 0

	for _, raw := range lines {
		trimmed := lexsupport.StripComment(raw)
		if trimmed == "" {
			continue
		}

		if name, isLabel := labelName(trimmed); isLabel {
			if _, exists := labels[name]; exists {
				return nil, 0, fmt.Errorf("redefinition of label: %w", newError(KindSemantic, raw, name))
			}
			labels[name] = cursor
			continue
		}

		fields := strings.Fields(trimmed)
		mnemonic := fields[0]

		if dataDirectives[mnemonic] {
			size, err := r.directiveSize(mnemonic, trimmed, raw)
			if err != nil {
				return nil, 0, err
			}
			cursor += pad4(size)
			continue
		}

		cursor += 4
	}

	return labels, cursor, nil
}

// labelName reports whether line is a label definition (ends in ':') and,
// if so, returns its name.
func labelName(line string) (string, bool) {
	if !strings.HasSuffix(line, ":") {
		return "", false
	}
	return strings.TrimSuffix(line, ":"), true
}

// directiveSize computes the unpadded byte size a data directive will
// occupy, reading ВЛОЖИ's target file if needed.
func (r *Resolver) directiveSize(mnemonic, trimmed, raw string) (int, error) {
	switch mnemonic {
	case "ОТМЕРЬ":
		fields := strings.Fields(trimmed)
		if len(fields) < 2 {
			return 0, fmt.Errorf("missing operand: %w", newError(KindLexical, raw, mnemonic))
		}
		n, err := lexsupport.ParseNumber(lexsupport.StripTrailingComma(fields[1]))
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, fields[1]))
		}
		return int(n), nil

	case "СЛОВО":
		text, err := lexsupport.ExtractQuoted(trimmed)
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, trimmed))
		}
		return len([]byte(text)), nil

	case "ВЛОЖИ":
		path, err := lexsupport.ExtractQuoted(trimmed)
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, trimmed))
		}
		if r.readFile == nil {
			return 0, fmt.Errorf("%w", newError(KindIO, raw, path))
		}
		content, err := r.readFile(path)
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindIO, raw, path))
		}
		return len(content), nil
	}

	return 0, fmt.Errorf("unknown directive: %w", newError(KindSemantic, raw, mnemonic))
}

// --- Pass 2: emission ---------------------------------------------------

func (r *Resolver) pass2(lines []string, labels map[string]int) (*aarch64.Buffer, error) {
	buf := aarch64.NewBuffer()

	for _, raw := range lines {
		trimmed := lexsupport.StripComment(raw)
		if trimmed == "" {
			continue
		}

		if _, isLabel := labelName(trimmed); isLabel {
			continue
		}

		fields := strings.Fields(trimmed)
		mnemonic := fields[0]

		if dataDirectives[mnemonic] {
			if err := r.emitDirective(buf, mnemonic, trimmed, raw); err != nil {
				return nil, err
			}
			continue
		}

		pc := buf.Length()
		operands := operandsOf(fields)
		word, err := r.encodeInstruction(mnemonic, operands, pc, labels, raw)
		if err != nil {
			return nil, err
		}
		buf.WriteInstruction(word)
	}

	return buf, nil
}

// operandsOf strips the mnemonic and any trailing commas from operand
// tokens.
func operandsOf(fields []string) []string {
	operands := make([]string, 0, len(fields)-1)
	for _, f := range fields[1:] {
		operands = append(operands, lexsupport.StripTrailingComma(f))
	}
	return operands
}

// emitDirective writes a data directive's payload followed by zero
// padding up to a 4-byte boundary.
func (r *Resolver) emitDirective(buf *aarch64.Buffer, mnemonic, trimmed, raw string) error {
	switch mnemonic {
	case "ОТМЕРЬ":
		fields := strings.Fields(trimmed)
		n, err := lexsupport.ParseNumber(lexsupport.StripTrailingComma(fields[1]))
		if err != nil {
			return fmt.Errorf("%w", newError(KindLexical, raw, fields[1]))
		}
		size := int(n)
		buf.AppendZeros(size)
		buf.AppendZeros(pad4(size) - size)
		return nil

	case "СЛОВО":
		text, err := lexsupport.ExtractQuoted(trimmed)
		if err != nil {
			return fmt.Errorf("%w", newError(KindLexical, raw, trimmed))
		}
		buf.AppendASCII(text)
		buf.AppendZeros(pad4(len(text)) - len(text))
		return nil

	case "ВЛОЖИ":
		path, err := lexsupport.ExtractQuoted(trimmed)
		if err != nil {
			return fmt.Errorf("%w", newError(KindLexical, raw, trimmed))
		}
		if r.readFile == nil {
			return fmt.Errorf("%w", newError(KindIO, raw, path))
		}
		content, err := r.readFile(path)
		if err != nil {
			return fmt.Errorf("%w", newError(KindIO, raw, path))
		}
		buf.AppendRaw(content)
		buf.AppendZeros(pad4(len(content)) - len(content))
		return nil
	}

	return fmt.Errorf("unknown directive: %w", newError(KindSemantic, raw, mnemonic))
}

// encodeInstruction dispatches a mnemonic and its operand tokens to the
// matching aarch64.Instruction variant and returns its encoded word.
// pc is the cursor value before this instruction's own 4 bytes are
// accounted for — the base for every PC-relative displacement
// (spec.md §4.5).
func (r *Resolver) encodeInstruction(mnemonic string, operands []string, pc int, labels map[string]int, raw string) (uint32, error) {
	switch mnemonic {
	case "ПОЛОЖИ":
		if len(operands) != 2 {
			return 0, fmt.Errorf("%w", newError(KindSemantic, raw, mnemonic))
		}
		reg, err := lexsupport.ParseRegisterToken(operands[0])
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, operands[0]))
		}
		val, err := lexsupport.ParseNumber(operands[1])
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, operands[1]))
		}
		return aarch64.Mov{Reg: reg, Val: val}.Encode(), nil

	case "УКАЖИ":
		if len(operands) != 2 {
			return 0, fmt.Errorf("%w", newError(KindSemantic, raw, mnemonic))
		}
		reg, err := lexsupport.ParseRegisterToken(operands[0])
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, operands[0]))
		}
		off, err := r.labelOffset(labels, operands[1], pc, raw)
		if err != nil {
			return 0, err
		}
		if err := r.checkRange(KindRange, int64(off), 21, raw, operands[1]); err != nil {
			return 0, err
		}
		return aarch64.Adr{Reg: reg, Off: int32(off)}.Encode(), nil

	case "ДОЛОЖИ":
		return aarch64.Svc{}.Encode(), nil

	case "ВЕРНИСЬ":
		return aarch64.Ret{}.Encode(), nil

	case "ПРИБАВЬ", "ВЫЧТИ":
		return r.encodeArith(mnemonic, operands, raw)

	case "УМНОЖЬ":
		rd, rn, rm, err := r.threeRegisters(operands, raw)
		if err != nil {
			return 0, err
		}
		return aarch64.Mul{Rd: rd, Rn: rn, Rm: rm}.Encode(), nil

	case "РАЗДЕЛИ":
		rd, rn, rm, err := r.threeRegisters(operands, raw)
		if err != nil {
			return 0, err
		}
		return aarch64.SDiv{Rd: rd, Rn: rn, Rm: rm}.Encode(), nil

	case "РАЗНОСТЬ":
		rd, rn, rm, err := r.threeRegisters(operands, raw)
		if err != nil {
			return 0, err
		}
		return aarch64.Eor{Rd: rd, Rn: rn, Rm: rm}.Encode(), nil

	case "СРАВНИ":
		if len(operands) != 2 {
			return 0, fmt.Errorf("%w", newError(KindSemantic, raw, mnemonic))
		}
		rn, err := lexsupport.ParseRegisterToken(operands[0])
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, operands[0]))
		}
		if lexsupport.IsRegisterToken(operands[1]) {
			rm, err := lexsupport.ParseRegisterToken(operands[1])
			if err != nil {
				return 0, fmt.Errorf("%w", newError(KindLexical, raw, operands[1]))
			}
			return aarch64.Cmp{Rn: rn, Rm: rm}.Encode(), nil
		}
		num, err := lexsupport.ParseNumber(operands[1])
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, operands[1]))
		}
		if err := r.checkUnsignedRange(KindRange, int64(num), 12, raw, operands[1]); err != nil {
			return 0, err
		}
		return aarch64.Cmpi{Rn: rn, Num: uint32(num)}.Encode(), nil

	case "СТУПАЙ":
		if len(operands) != 1 {
			return 0, fmt.Errorf("%w", newError(KindSemantic, raw, mnemonic))
		}
		off, err := r.labelOffset(labels, operands[0], pc, raw)
		if err != nil {
			return 0, err
		}
		if err := r.checkRange(KindRange, int64(off/4), 26, raw, operands[0]); err != nil {
			return 0, err
		}
		return aarch64.B{Off: int32(off)}.Encode(), nil

	case "ИЗЫМИ":
		rt, rn, err := r.twoRegisters(operands, raw)
		if err != nil {
			return 0, err
		}
		return aarch64.Ldr{Rt: rt, Rn: rn}.Encode(), nil

	case "ВВЕРГНИ":
		rt, rn, err := r.twoRegisters(operands, raw)
		if err != nil {
			return 0, err
		}
		return aarch64.Str{Rt: rt, Rn: rn}.Encode(), nil

	case "ИЗЫМИ_БАЙТ":
		rt, rn, err := r.twoRegisters(operands, raw)
		if err != nil {
			return 0, err
		}
		return aarch64.Ldrb{Rt: rt, Rn: rn}.Encode(), nil

	case "ВВЕРГНИ_БАЙТ":
		rt, rn, err := r.twoRegisters(operands, raw)
		if err != nil {
			return 0, err
		}
		return aarch64.Strb{Rt: rt, Rn: rn}.Encode(), nil
	}

	if strings.HasPrefix(mnemonic, condBranchPrefix) {
		return r.encodeConditionalBranch(mnemonic, operands, pc, labels, raw)
	}

	return 0, fmt.Errorf("unknown mnemonic: %w", newError(KindSemantic, raw, mnemonic))
}

// encodeConditionalBranch handles КОЛИ_<tag> [СТУПАЙ] label. The middle
// token "СТУПАЙ", when present, is syntactic sugar the parser ignores
// (spec.md §4.5, §9); the label is always the last operand.
func (r *Resolver) encodeConditionalBranch(mnemonic string, operands []string, pc int, labels map[string]int, raw string) (uint32, error) {
	tag := strings.TrimPrefix(mnemonic, condBranchPrefix)
	cond, ok := aarch64.ConditionByTag[tag]
	if !ok {
		return 0, fmt.Errorf("unknown condition tag: %w", newError(KindSemantic, raw, tag))
	}
	if len(operands) == 0 {
		return 0, fmt.Errorf("%w", newError(KindSemantic, raw, mnemonic))
	}

	label := operands[len(operands)-1]
	off, err := r.labelOffset(labels, label, pc, raw)
	if err != nil {
		return 0, err
	}
	if err := r.checkRange(KindRange, int64(off/4), 19, raw, label); err != nil {
		return 0, err
	}
	return aarch64.Bcc{Cond: cond, Off: int32(off)}.Encode(), nil
}

// encodeArith handles ПРИБАВЬ/ВЫЧТИ's register-or-immediate third operand.
// Per spec.md §9 the register/immediate choice is a lexical test on the
// third token's first character, not a semantic one.
func (r *Resolver) encodeArith(mnemonic string, operands []string, raw string) (uint32, error) {
	if len(operands) != 3 {
		return 0, fmt.Errorf("%w", newError(KindSemantic, raw, mnemonic))
	}
	rd, err := lexsupport.ParseRegisterToken(operands[0])
	if err != nil {
		return 0, fmt.Errorf("%w", newError(KindLexical, raw, operands[0]))
	}
	rn, err := lexsupport.ParseRegisterToken(operands[1])
	if err != nil {
		return 0, fmt.Errorf("%w", newError(KindLexical, raw, operands[1]))
	}

	third := operands[2]
	if lexsupport.IsRegisterToken(third) {
		rm, err := lexsupport.ParseRegisterToken(third)
		if err != nil {
			return 0, fmt.Errorf("%w", newError(KindLexical, raw, third))
		}
		if mnemonic == "ПРИБАВЬ" {
			return aarch64.Add{Rd: rd, Rn: rn, Rm: rm}.Encode(), nil
		}
		return aarch64.Sub{Rd: rd, Rn: rn, Rm: rm}.Encode(), nil
	}

	num, err := lexsupport.ParseNumber(third)
	if err != nil {
		return 0, fmt.Errorf("%w", newError(KindLexical, raw, third))
	}
	if err := r.checkUnsignedRange(KindRange, int64(num), 12, raw, third); err != nil {
		return 0, err
	}
	if mnemonic == "ПРИБАВЬ" {
		return aarch64.Addi{Rd: rd, Rn: rn, Num: uint32(num)}.Encode(), nil
	}
	return aarch64.Subi{Rd: rd, Rn: rn, Num: uint32(num)}.Encode(), nil
}

func (r *Resolver) threeRegisters(operands []string, raw string) (rd, rn, rm aarch64.Register, err error) {
	if len(operands) != 3 {
		return rd, rn, rm, fmt.Errorf("%w", newError(KindSemantic, raw, "operand count"))
	}
	if rd, err = lexsupport.ParseRegisterToken(operands[0]); err != nil {
		return rd, rn, rm, fmt.Errorf("%w", newError(KindLexical, raw, operands[0]))
	}
	if rn, err = lexsupport.ParseRegisterToken(operands[1]); err != nil {
		return rd, rn, rm, fmt.Errorf("%w", newError(KindLexical, raw, operands[1]))
	}
	if rm, err = lexsupport.ParseRegisterToken(operands[2]); err != nil {
		return rd, rn, rm, fmt.Errorf("%w", newError(KindLexical, raw, operands[2]))
	}
	return rd, rn, rm, nil
}

func (r *Resolver) twoRegisters(operands []string, raw string) (rt, rn aarch64.Register, err error) {
	if len(operands) != 2 {
		return rt, rn, fmt.Errorf("%w", newError(KindSemantic, raw, "operand count"))
	}
	if rt, err = lexsupport.ParseRegisterToken(operands[0]); err != nil {
		return rt, rn, fmt.Errorf("%w", newError(KindLexical, raw, operands[0]))
	}
	if rn, err = lexsupport.ParseRegisterToken(operands[1]); err != nil {
		return rt, rn, fmt.Errorf("%w", newError(KindLexical, raw, operands[1]))
	}
	return rt, rn, nil
}

// labelOffset resolves target's recorded offset and returns the PC-relative
// byte displacement from pc.
func (r *Resolver) labelOffset(labels map[string]int, target string, pc int, raw string) (int, error) {
	offset, ok := labels[target]
	if !ok {
		err := fmt.Errorf("undefined label: %w", newError(KindSemantic, raw, target))
		if r.debug != nil {
			r.debug.Error(r.debug.Loc(0, 0), err.Error())
		}
		return 0, err
	}
	return offset - pc, nil
}

// checkRange enforces a signed field width when Strict is enabled — used
// for PC-relative displacements (Adr/B/Bcc), which are two's-complement.
// When Strict is off (the default, matching the source dialect's own
// masking behaviour) it never fails — callers still mask at encode time.
func (r *Resolver) checkRange(kind Kind, value int64, bits uint, raw, offending string) error {
	if !r.opts.Strict {
		return nil
	}
	lo := -(int64(1) << (bits - 1))
	hi := int64(1)<<(bits-1) - 1
	if value < lo || value > hi {
		return fmt.Errorf("%w", newError(kind, raw, offending))
	}
	return nil
}

// checkUnsignedRange enforces an unsigned field width when Strict is
// enabled — used for the arithmetic/compare immediates (12 bits), which
// carry no sign. Mov's immediate is not checked here; it arrives already
// as the 16-bit value ParseNumber produced.
func (r *Resolver) checkUnsignedRange(kind Kind, value int64, bits uint, raw, offending string) error {
	if !r.opts.Strict {
		return nil
	}
	hi := int64(1)<<bits - 1
	if value < 0 || value > hi {
		return fmt.Errorf("%w", newError(kind, raw, offending))
	}
	return nil
}
