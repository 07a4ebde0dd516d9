package advisor

import (
	"strings"

	"crypto-insight/internal/domain"
)

// ExtractSymbols scans free text for registry symbols or asset names.
// Returns deduplicated uppercase symbols in order of first mention.
func ExtractSymbols(text string) []string {
	upper := strings.ToUpper(text)
	words := strings.FieldsFunc(upper, func(r rune) bool {
		return !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})

	seen := make(map[string]bool)
	var result []string
	for _, w := range words {
		sym, ok := symbolFor(w)
		if ok && !seen[sym] {
			seen[sym] = true
			result = append(result, sym)
		}
	}
	return result
}

func symbolFor(word string) (string, bool) {
	if a, ok := domain.LookupAsset(word); ok {
		return a.Symbol, true
	}
	if a, ok := domain.AssetByCoinGeckoID(strings.ToLower(word)); ok {
		return a.Symbol, true
	}
	return "", false
}
