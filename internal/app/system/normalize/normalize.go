// Package normalize cleans user-supplied identifiers and names before they
// are stored or used in lookups.
package normalize

import (
	"strings"
)

// Email trims and lowercases an email address.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Name trims surrounding whitespace and collapses internal runs of spaces.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Wallet trims a wallet address. Case is preserved because base58 addresses
// are case-sensitive.
func Wallet(s string) string {
	return strings.TrimSpace(s)
}

// Role trims and lowercases a workspace role.
func Role(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Gender maps free-form input to "male", "female" or "".
func Gender(s string) string {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "male", "m":
		return "male"
	case "female", "f":
		return "female"
	default:
		return ""
	}
}

// Interests trims each entry, drops blanks and removes case-insensitive
// duplicates while keeping the first spelling seen.
func Interests(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = Name(s)
		if s == "" {
			continue
		}
		k := strings.ToLower(s)
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, s)
	}
	return out
}

// OptString returns nil for blank input and a pointer to the value otherwise.
func OptString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
