// Package inputval validates user-supplied input fields.
package inputval

import (
	"net/mail"
	"strings"
)

// IsValidEmail reports whether s is an acceptable email address.
//
// It uses RFC 5322 address parsing plus structural checks that the parser
// is lenient about: display-name forms ("Name <a@b>") are rejected, as are
// leading/trailing/consecutive dots in the local part or domain. Single-
// label domains (user@localhost) are allowed for dev/test environments.
func IsValidEmail(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}

	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	// Reject display-name forms: the parsed address must be the input.
	if addr.Address != s {
		return false
	}

	at := strings.LastIndex(s, "@")
	if at <= 0 || at == len(s)-1 {
		return false
	}
	local, domain := s[:at], s[at+1:]

	for _, part := range []string{local, domain} {
		if strings.HasPrefix(part, ".") || strings.HasSuffix(part, ".") {
			return false
		}
		if strings.Contains(part, "..") {
			return false
		}
		if strings.ContainsAny(part, " \t") {
			return false
		}
	}
	return true
}
