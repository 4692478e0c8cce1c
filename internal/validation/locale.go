package validation

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	ukUpper = "АБВГҐДЕЄЖЗИІЇЙКЛМНОПРСТУФХЦЧШЩЬЮЯ"
	ukLower = "абвгґдеєжзиіїйклмнопрстуфхцчшщьюя"

	apostrophes = "'ʼ’"
)

var phonePattern = regexp.MustCompile(`^\+380\d{9}$`)

var phoneNoise = strings.NewReplacer(" ", "", "-", "", "(", "", ")", "", ".", "")

func isUkrainianLetter(r rune) bool {
	return strings.ContainsRune(ukUpper, r) || strings.ContainsRune(ukLower, r)
}

func isLatinLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// NormalizePhone strips formatting and brings local forms to +380XXXXXXXXX.
// Values that cannot be normalized are returned stripped but otherwise untouched.
func NormalizePhone(s string) string {
	p := phoneNoise.Replace(strings.TrimSpace(s))
	switch {
	case strings.HasPrefix(p, "+"):
		return p
	case strings.HasPrefix(p, "380") && len(p) == 12:
		return "+" + p
	case strings.HasPrefix(p, "0") && len(p) == 10:
		return "+38" + p
	}
	return p
}

// IsUkrainianPhone reports whether s is exactly +380 followed by 9 digits.
func IsUkrainianPhone(s string) bool {
	return phonePattern.MatchString(s)
}

// IsUkrainianName accepts person names: Ukrainian letters with apostrophes,
// hyphens and single spaces, starting with a capital letter.
func IsUkrainianName(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 2 || n > 50 {
		return false
	}
	first, _ := utf8.DecodeRuneInString(s)
	if !strings.ContainsRune(ukUpper, first) {
		return false
	}
	last, _ := utf8.DecodeLastRuneInString(s)
	if !isUkrainianLetter(last) {
		return false
	}
	var prev rune
	for _, r := range s {
		switch {
		case isUkrainianLetter(r):
		case strings.ContainsRune(apostrophes, r), r == '-', r == ' ':
			if !isUkrainianLetter(prev) {
				return false
			}
		default:
			return false
		}
		prev = r
	}
	return true
}

// IsUkrainianText accepts free text that contains at least one Ukrainian
// letter. Latin letters, digits, punctuation and whitespace may appear too;
// letters of any other alphabet, including Russian-only ё ъ ы э, may not.
func IsUkrainianText(s string) bool {
	hasUk := false
	for _, r := range s {
		switch {
		case isUkrainianLetter(r):
			hasUk = true
		case isLatinLetter(r), strings.ContainsRune(apostrophes, r):
		case unicode.IsLetter(r):
			return false
		case r == '\n' || r == '\t' || r == '\r':
		case unicode.IsControl(r):
			return false
		}
	}
	return hasUk
}

// IsStrongPassword requires 8-64 runes, a letter, a digit and no whitespace.
func IsStrongPassword(s string) bool {
	n := utf8.RuneCountInString(s)
	if n < 8 || n > 64 {
		return false
	}
	var letter, digit bool
	for _, r := range s {
		switch {
		case unicode.IsSpace(r):
			return false
		case unicode.IsLetter(r):
			letter = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return letter && digit
}
