package provider

import "strings"

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

func compact(values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// positive returns a pointer to v when v is a usable, strictly positive
// amount. Providers report missing supply figures as zero.
func positive(v float64) *float64 {
	if v <= 0 {
		return nil
	}
	return &v
}
