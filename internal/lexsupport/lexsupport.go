// Package lexsupport holds the line-oriented lexing helpers shared by both
// resolver passes: comment stripping, quoted-string extraction, register
// token parsing, and the dialect's bespoke hexadecimal numeral parsing.
// These mirror the teacher's internal/asm trimComments/splitLines helpers
// and architecture/x86_64 register-table shape, adapted to the single
// Cyrillic register family and numeral alphabet this dialect defines.
package lexsupport

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/slovoasm/slovoasm/internal/aarch64"
)

// registerPrefix is the Cyrillic letter that opens every register token
// (П, U+041F — "Помысел").
const registerPrefix = 'П'

// hexPrefix is the dialect's bespoke hexadecimal marker: Latin '0' followed
// by Cyrillic 'х' (U+0445), not Latin 'x'.
const hexPrefix = "0х"

// hexDigitValue maps the dialect's extended hex digit alphabet to its
// numeric value, per spec.md §4.4: 0-9 literally, then А Б В Г Д Е for
// 10-15.
var hexDigitValue = map[rune]uint16{
	'0': 0, '1': 1, '2': 2, '3': 3, '4': 4,
	'5': 5, '6': 6, '7': 7, '8': 8, '9': 9,
	'А': 10, 'Б': 11, 'В': 12, 'Г': 13, 'Д': 14, 'Е': 15,
}

// StripComment discards everything from the first ';' to end of line and
// trims surrounding whitespace from what remains.
func StripComment(line string) string {
	if idx := strings.IndexByte(line, ';'); idx != -1 {
		line = line[:idx]
	}
	return strings.TrimSpace(line)
}

// ExtractQuoted returns the slice of line strictly between the first and
// last '"' character, after replacing every literal two-character sequence
// \n with an actual newline byte. It is an error for line to contain fewer
// than two '"' characters.
func ExtractQuoted(line string) (string, error) {
	replaced := strings.ReplaceAll(line, `\n`, "\n")

	first := strings.IndexByte(replaced, '"')
	if first == -1 {
		return "", fmt.Errorf("missing quote in string directive: %q", line)
	}
	last := strings.LastIndexByte(replaced, '"')
	if last <= first {
		return "", fmt.Errorf("missing closing quote in string directive: %q", line)
	}

	return replaced[first+1 : last], nil
}

// ParseRegisterToken parses a register operand token: a leading 'П'
// followed by decimal digits in [0, 30]. A trailing comma, if present,
// must already have been stripped by the caller.
func ParseRegisterToken(tok string) (aarch64.Register, error) {
	runes := []rune(tok)
	if len(runes) < 2 || runes[0] != registerPrefix {
		return aarch64.Register{}, fmt.Errorf("not a register token: %q", tok)
	}

	n, err := strconv.ParseUint(string(runes[1:]), 10, 8)
	if err != nil {
		return aarch64.Register{}, fmt.Errorf("unparseable register index in %q: %w", tok, err)
	}

	return aarch64.NewRegister(int(n))
}

// IsRegisterToken reports whether tok's first character is the register
// family prefix. Per spec.md §9 this is a lexical test only, used to
// disambiguate ПРИБАВЬ/ВЫЧТИ/СРАВНИ's third operand — a numeric literal
// that happened to start with the same letter would be misclassified,
// and that bug-compatible behaviour is preserved deliberately.
func IsRegisterToken(tok string) bool {
	runes := []rune(tok)
	return len(runes) > 0 && runes[0] == registerPrefix
}

// ParseNumber parses a numeric literal in either decimal or the dialect's
// bespoke hex form (spec.md §4.4), returning a uint16.
func ParseNumber(tok string) (uint16, error) {
	if strings.HasPrefix(tok, hexPrefix) {
		return parseBespokeHex(tok)
	}

	val, err := strconv.ParseUint(tok, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("malformed decimal number: %q", tok)
	}
	return uint16(val), nil
}

// parseBespokeHex parses the digits following the 0х prefix, assembling
// them MSB-first: res = (res << 4) | digit.
func parseBespokeHex(tok string) (uint16, error) {
	digits := []rune(tok)[2:]
	if len(digits) == 0 {
		return 0, fmt.Errorf("empty hex literal: %q", tok)
	}

	var res uint16
	for _, d := range digits {
		val, ok := hexDigitValue[d]
		if !ok {
			return 0, fmt.Errorf("unrecognized digit %q in hex literal %q", d, tok)
		}
		res = (res << 4) | val
	}
	return res, nil
}

// StripTrailingComma removes one trailing comma from an operand token, as
// produced by whitespace-separated operand splitting (spec.md §4.5).
func StripTrailingComma(tok string) string {
	return strings.TrimSuffix(tok, ",")
}
