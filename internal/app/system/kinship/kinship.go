// Package kinship holds the relationship vocabulary used on family edges and
// the table that maps a label to its reciprocal.
//
// Labels are accepted in lowercase ("mother") or with a leading capital
// ("Mother"). Stored labels are never rewritten; lookups fold case.
package kinship

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// Gender hints used when picking a reciprocal label.
const (
	Male   = "male"
	Female = "female"
)

// inverse lists the reciprocal label for a male, female and unknown subject.
type inverse struct {
	male, female, neutral string
}

func same(label string) inverse { return inverse{label, label, label} }

// table is keyed by the lowercase label.
var table = map[string]inverse{
	"mother": {"son", "daughter", "child"},
	"father": {"son", "daughter", "child"},
	"parent": {"son", "daughter", "child"},

	"son":      {"father", "mother", "parent"},
	"daughter": {"father", "mother", "parent"},
	"child":    {"father", "mother", "parent"},

	"brother": {"brother", "sister", "sibling"},
	"sister":  {"brother", "sister", "sibling"},
	"sibling": {"brother", "sister", "sibling"},

	"half-brother": {"half-brother", "half-sister", "sibling"},
	"half-sister":  {"half-brother", "half-sister", "sibling"},

	"husband": {"husband", "wife", "spouse"},
	"wife":    {"husband", "wife", "spouse"},
	"spouse":  {"husband", "wife", "spouse"},
	"partner": same("partner"),

	"grandmother": {"grandson", "granddaughter", "grandchild"},
	"grandfather": {"grandson", "granddaughter", "grandchild"},
	"grandparent": {"grandson", "granddaughter", "grandchild"},

	"grandson":      {"grandfather", "grandmother", "grandparent"},
	"granddaughter": {"grandfather", "grandmother", "grandparent"},
	"grandchild":    {"grandfather", "grandmother", "grandparent"},

	"great-grandmother": {"great-grandson", "great-granddaughter", "relative"},
	"great-grandfather": {"great-grandson", "great-granddaughter", "relative"},

	"great-grandson":      {"great-grandfather", "great-grandmother", "relative"},
	"great-granddaughter": {"great-grandfather", "great-grandmother", "relative"},

	"aunt":  {"nephew", "niece", "relative"},
	"uncle": {"nephew", "niece", "relative"},

	"niece":  {"uncle", "aunt", "relative"},
	"nephew": {"uncle", "aunt", "relative"},

	"cousin": same("cousin"),

	"stepmother": {"stepson", "stepdaughter", "stepchild"},
	"stepfather": {"stepson", "stepdaughter", "stepchild"},
	"stepparent": {"stepson", "stepdaughter", "stepchild"},

	"stepson":      {"stepfather", "stepmother", "stepparent"},
	"stepdaughter": {"stepfather", "stepmother", "stepparent"},
	"stepchild":    {"stepfather", "stepmother", "stepparent"},

	"mother-in-law": {"son-in-law", "daughter-in-law", "relative"},
	"father-in-law": {"son-in-law", "daughter-in-law", "relative"},

	"son-in-law":      {"father-in-law", "mother-in-law", "relative"},
	"daughter-in-law": {"father-in-law", "mother-in-law", "relative"},

	"brother-in-law": {"brother-in-law", "sister-in-law", "relative"},
	"sister-in-law":  {"brother-in-law", "sister-in-law", "relative"},

	"guardian": same("ward"),
	"ward":     same("guardian"),

	"relative": same("relative"),
	"other":    same("other"),
}

// labels is the lowercase vocabulary in a stable order.
var labels = []string{
	"mother", "father", "parent", "son", "daughter", "child",
	"brother", "sister", "sibling", "half-brother", "half-sister",
	"husband", "wife", "spouse", "partner",
	"grandmother", "grandfather", "grandparent",
	"grandson", "granddaughter", "grandchild",
	"great-grandmother", "great-grandfather", "great-grandson", "great-granddaughter",
	"aunt", "uncle", "niece", "nephew", "cousin",
	"stepmother", "stepfather", "stepparent", "stepson", "stepdaughter", "stepchild",
	"mother-in-law", "father-in-law", "son-in-law", "daughter-in-law",
	"brother-in-law", "sister-in-law",
	"guardian", "ward", "relative", "other",
}

// Labels returns the lowercase vocabulary.
func Labels() []string {
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// AllowedValues returns every accepted spelling: each lowercase label and its
// capitalized variant. This is the enum used by the collection validator.
func AllowedValues() []string {
	out := make([]string, 0, 2*len(labels))
	for _, l := range labels {
		out = append(out, l, capitalize(l))
	}
	return out
}

// IsValid reports whether label is an accepted spelling of a known relation.
func IsValid(label string) bool {
	if label == "" {
		return false
	}
	lower := strings.ToLower(label)
	if _, ok := table[lower]; !ok {
		return false
	}
	return label == lower || label == capitalize(lower)
}

// Inverse returns the label that describes the other side of an edge.
// If "A is B's label", Inverse(label, genderOfB) is what B is to A.
// The result keeps the capitalization style of the input. ok is false for
// unknown labels.
func Inverse(label, gender string) (string, bool) {
	inv, found := table[strings.ToLower(label)]
	if !found {
		return "", false
	}
	var out string
	switch strings.ToLower(gender) {
	case Male:
		out = inv.male
	case Female:
		out = inv.female
	default:
		out = inv.neutral
	}
	if startsUpper(label) {
		out = capitalize(out)
	}
	return out, true
}

func capitalize(s string) string {
	r, size := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[size:]
}

func startsUpper(s string) bool {
	r, _ := utf8.DecodeRuneInString(s)
	return unicode.IsUpper(r)
}
