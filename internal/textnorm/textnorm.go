// Package textnorm reduces forum text to the canonical form every matcher works on.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// vietnamese is the set of precomposed lowercase Vietnamese letters kept besides ASCII.
const vietnamese = "áàảãạăắằẳẵặâấầẩẫậđéèẻẽẹêếềểễệíìỉĩịóòỏõọôốồổỗộơớờởỡợúùủũụưứừửữựýỳỷỹỵ"

// punctuation kept because money and model strings use it ("1.5tr", "m.2", "nh-d15").
const punctuation = ".,:-+"

var allowed = func() map[rune]bool {
	m := make(map[rune]bool, 128)
	for _, r := range vietnamese + punctuation {
		m[r] = true
	}
	return m
}()

// Normalize lowercases s, composes it to NFC and replaces every rune outside the allow-list
// with a space, so "cpu/ram" still yields two words. Combining marks left over after
// composition are dropped in place. Whitespace runs collapse to one space and the result is
// trimmed. Normalize(Normalize(s)) == Normalize(s).
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = norm.NFC.String(strings.ToLower(s))

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		switch {
		case Allowed(r):
		case unicode.Is(unicode.M, r):
			continue
		default:
			space = space || b.Len() > 0
			continue
		}
		if space {
			b.WriteByte(' ')
			space = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Allowed reports whether r survives normalization (whitespace excluded).
func Allowed(r rune) bool {
	if r < 0x80 {
		return (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || strings.ContainsRune(punctuation, r)
	}
	return allowed[r]
}

// IsWordRune reports whether r belongs to a word for boundary checks.
func IsWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
