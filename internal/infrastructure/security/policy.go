package security

import (
	"strings"
	"unicode"

	domerrors "github.com/bcg0006/plockly-core/internal/domain/errors"
)

// PolicyViolation lists every rule a candidate password failed. It
// unwraps to ErrWeakPassword so callers can branch with errors.Is while
// handlers surface the per-rule messages as field errors.
type PolicyViolation struct {
	Reasons []string
}

func (e *PolicyViolation) Error() string { return strings.Join(e.Reasons, "; ") }

func (e *PolicyViolation) Unwrap() error { return domerrors.ErrWeakPassword }

// commonPasswords is a short deny list of passwords seen constantly in
// credential dumps. Checked after lowercasing.
var commonPasswords = map[string]struct{}{
	"password": {}, "password1": {}, "password123": {}, "passw0rd": {},
	"qwerty": {}, "qwerty123": {}, "abc123": {}, "letmein": {},
	"welcome": {}, "monkey": {}, "dragon": {}, "iloveyou": {},
	"admin": {}, "login": {}, "master": {}, "sunshine": {},
	"princess": {}, "football": {}, "baseball": {}, "superman": {},
	"trustno1": {}, "freedom": {}, "starwars": {}, "whatever": {},
}

// StrengthPolicy implements ports.PasswordPolicy: minimum length, not
// purely numeric, not a common password, not derived from the email.
type StrengthPolicy struct {
	MinLength int
}

func NewStrengthPolicy() *StrengthPolicy {
	return &StrengthPolicy{MinLength: 8}
}

func (p *StrengthPolicy) Validate(password, email string) error {
	var reasons []string
	if len(password) < p.MinLength {
		reasons = append(reasons, "This password is too short. It must contain at least 8 characters.")
	}
	if password != "" && isNumeric(password) {
		reasons = append(reasons, "This password is entirely numeric.")
	}
	if _, ok := commonPasswords[strings.ToLower(password)]; ok {
		reasons = append(reasons, "This password is too common.")
	}
	if tooSimilar(password, email) {
		reasons = append(reasons, "The password is too similar to the email.")
	}
	if len(reasons) > 0 {
		return &PolicyViolation{Reasons: reasons}
	}
	return nil
}

func isNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// tooSimilar flags passwords containing the email, its local part, or
// vice versa. Comparison is case-insensitive and ignores fragments
// shorter than 4 runes.
func tooSimilar(password, email string) bool {
	pw := strings.ToLower(password)
	em := strings.ToLower(strings.TrimSpace(email))
	if em == "" {
		return false
	}
	fragments := []string{em}
	if at := strings.IndexByte(em, '@'); at > 0 {
		fragments = append(fragments, em[:at])
	}
	for _, frag := range fragments {
		if len(frag) < 4 {
			continue
		}
		if strings.Contains(pw, frag) || strings.Contains(frag, pw) {
			return true
		}
	}
	return false
}
