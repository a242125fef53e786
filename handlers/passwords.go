package handlers

import (
	"strings"
	"unicode"
)

const minPasswordLength = 8

// commonPasswords is a short blocklist of the passwords seen most often in
// credential dumps. Matching is case-insensitive.
var commonPasswords = map[string]struct{}{
	"password":   {},
	"password1":  {},
	"passw0rd":   {},
	"12345678":   {},
	"123456789":  {},
	"1234567890": {},
	"qwerty123":  {},
	"qwertyuiop": {},
	"letmein1":   {},
	"iloveyou":   {},
	"sunshine":   {},
	"princess":   {},
	"football":   {},
	"baseball":   {},
	"superman":   {},
	"trustno1":   {},
	"welcome1":   {},
	"admin123":   {},
	"abc12345":   {},
	"monkey123":  {},
	"dragon123":  {},
	"starwars":   {},
	"whatever":   {},
	"computer":   {},
	"michelle":   {},
	"jennifer":   {},
	"11111111":   {},
	"00000000":   {},
}

// validatePassword applies the minimum-strength policy to a candidate
// password: length, not entirely numeric, not a common password, not the
// username itself. Returns one message per failed check.
func validatePassword(username, password string) []string {
	var errs []string

	if len(password) < minPasswordLength {
		errs = append(errs, "This password is too short. It must contain at least 8 characters.")
	}

	if password != "" && isEntirelyNumeric(password) {
		errs = append(errs, "This password is entirely numeric.")
	}

	if _, found := commonPasswords[strings.ToLower(password)]; found {
		errs = append(errs, "This password is too common.")
	}

	if username != "" && strings.EqualFold(password, username) {
		errs = append(errs, "The password is too similar to the username.")
	}

	return errs
}

func isEntirelyNumeric(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}
