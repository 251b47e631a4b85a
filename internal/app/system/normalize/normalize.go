// Package normalize provides canonical forms for user-supplied fields
// before they are stored or compared.
package normalize

import "strings"

// Email lowercases and trims an email address. Lookup against the
// email_ci index additionally folds diacritics (see waffle pantry/text);
// this keeps the stored display form predictable.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace but preserves case.
func Name(s string) string {
	return strings.TrimSpace(s)
}
