package password

import "unicode"

// Policy constrains passwords chosen at signup.
type Policy struct {
	MinLength     int // runes
	MaxBytes      int // bcrypt rejects input past 72 bytes
	RequireLetter bool
	RequireDigit  bool
}

// DefaultPolicy is applied to new accounts.
var DefaultPolicy = Policy{MinLength: 8, MaxBytes: 72, RequireLetter: true, RequireDigit: true}

// Validate returns the reasons s is rejected, or none.
func (p Policy) Validate(s string) (ok bool, reasons []string) {
	if len([]rune(s)) < p.MinLength {
		reasons = append(reasons, "too_short")
	}
	if p.MaxBytes > 0 && len(s) > p.MaxBytes {
		reasons = append(reasons, "too_long")
	}
	var hasL, hasD bool
	for _, r := range s {
		switch {
		case unicode.IsLetter(r):
			hasL = true
		case unicode.IsDigit(r):
			hasD = true
		}
	}
	if p.RequireLetter && !hasL {
		reasons = append(reasons, "missing_letter")
	}
	if p.RequireDigit && !hasD {
		reasons = append(reasons, "missing_digit")
	}
	return len(reasons) == 0, reasons
}
