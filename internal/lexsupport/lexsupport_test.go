package lexsupport

import "testing"

func TestStripComment(t *testing.T) {
	cases := []struct{ in, want string }{
		{"ВЕРНИСЬ ; return", "ВЕРНИСЬ"},
		{"  ПОЛОЖИ П0, 1  ", "ПОЛОЖИ П0, 1"},
		{"; whole line is a comment", ""},
		{"ДОЛОЖИ", "ДОЛОЖИ"},
	}
	for _, c := range cases {
		if got := StripComment(c.in); got != c.want {
			t.Errorf("StripComment(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestExtractQuoted(t *testing.T) {
	t.Run("simple text", func(t *testing.T) {
		got, err := ExtractQuoted(`СЛОВО "HI"`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "HI" {
			t.Errorf("ExtractQuoted() = %q, want %q", got, "HI")
		}
	})

	t.Run("escaped newline", func(t *testing.T) {
		got, err := ExtractQuoted(`СЛОВО "line1\nline2"`)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != "line1\nline2" {
			t.Errorf("ExtractQuoted() = %q, want %q", got, "line1\nline2")
		}
	})

	t.Run("missing quote is an error", func(t *testing.T) {
		if _, err := ExtractQuoted(`ВЛОЖИ path`); err == nil {
			t.Error("expected error, got nil")
		}
	})

	t.Run("single quote is an error", func(t *testing.T) {
		if _, err := ExtractQuoted(`СЛОВО "unterminated`); err == nil {
			t.Error("expected error, got nil")
		}
	})
}

func TestParseRegisterToken(t *testing.T) {
	t.Run("valid register", func(t *testing.T) {
		reg, err := ParseRegisterToken("П15")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if reg.Encoding() != 15 {
			t.Errorf("Encoding() = %d, want 15", reg.Encoding())
		}
	})

	t.Run("rejects out-of-range index", func(t *testing.T) {
		if _, err := ParseRegisterToken("П31"); err == nil {
			t.Error("expected error for П31, got nil")
		}
	})

	t.Run("rejects missing prefix", func(t *testing.T) {
		if _, err := ParseRegisterToken("15"); err == nil {
			t.Error("expected error for bare digits, got nil")
		}
	})
}

func TestIsRegisterToken(t *testing.T) {
	if !IsRegisterToken("П3") {
		t.Error("expected П3 to be a register token")
	}
	if IsRegisterToken("1") {
		t.Error("expected 1 not to be a register token")
	}
	if IsRegisterToken("") {
		t.Error("expected empty string not to be a register token")
	}
}

func TestParseNumberDecimal(t *testing.T) {
	got, err := ParseNumber("42")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 42 {
		t.Errorf("ParseNumber(\"42\") = %d, want 42", got)
	}
}

func TestParseNumberBespokeHex(t *testing.T) {
	cases := []struct {
		in   string
		want uint16
	}{
		{"0х0", 0x0},
		{"0хА", 0xA},
		{"0хЕ", 0xF},
		{"0хЕЕЕЕ", 0xFFFF}, // Е = 15 in every position, not the Latin-lookalike 0xEEEE.
		{"0х10", 0x10},
	}
	for _, c := range cases {
		got, err := ParseNumber(c.in)
		if err != nil {
			t.Fatalf("ParseNumber(%q) unexpected error: %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("ParseNumber(%q) = %#x, want %#x", c.in, got, c.want)
		}
	}
}

func TestParseNumberRejectsUnknownDigit(t *testing.T) {
	// spec.md §8 scenario 2: "0хРАЗ" must be rejected, Р is not in the
	// dialect's hex alphabet.
	if _, err := ParseNumber("0хРАЗ"); err == nil {
		t.Error("expected error for digit outside the hex alphabet, got nil")
	}
}

func TestStripTrailingComma(t *testing.T) {
	if got := StripTrailingComma("П0,"); got != "П0" {
		t.Errorf("StripTrailingComma(\"П0,\") = %q, want %q", got, "П0")
	}
	if got := StripTrailingComma("П0"); got != "П0" {
		t.Errorf("StripTrailingComma(\"П0\") = %q, want %q", got, "П0")
	}
}
