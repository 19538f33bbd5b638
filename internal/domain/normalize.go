package domain

import (
	"slices"
	"strings"
)

// NormalizeText trims surrounding whitespace and compresses inner runs of
// spaces into one. Case is preserved.
func NormalizeText(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeSet trims every value, drops blanks and duplicates, and sorts the
// result. It never returns nil.
func NormalizeSet(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = NormalizeText(v)
		if v == "" {
			continue
		}
		out = append(out, v)
	}
	slices.Sort(out)
	return slices.Compact(out)
}

// NormalizeFieldValue normalizes a change-request value according to the
// field kind: sets are normalized, scalars keep only their trimmed first value.
func NormalizeFieldValue(field ProfileField, values []string) []string {
	if field.IsSet() {
		return NormalizeSet(values)
	}
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return []string{v}
		}
	}
	return []string{}
}

// FieldValuesEqual compares two values of the given field.
func FieldValuesEqual(field ProfileField, a, b []string) bool {
	return slices.Equal(NormalizeFieldValue(field, a), NormalizeFieldValue(field, b))
}

// Missing returns the members of required absent from have, in sorted order.
func Missing(required, have []string) []string {
	haveSet := make(map[string]struct{}, len(have))
	for _, h := range NormalizeSet(have) {
		haveSet[h] = struct{}{}
	}
	var missing []string
	for _, r := range NormalizeSet(required) {
		if _, ok := haveSet[r]; !ok {
			missing = append(missing, r)
		}
	}
	return missing
}

// IsSubset reports whether every member of sub is in super.
func IsSubset(sub, super []string) bool {
	return len(Missing(sub, super)) == 0
}
