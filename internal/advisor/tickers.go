package advisor

import (
	"strings"

	"equity-sentry/internal/domain"
)

// ExtractTickers scans the user message for mentions of watched
// tickers. Returns deduplicated uppercase tickers found.
func ExtractTickers(text string) []string {
	upper := strings.ToUpper(text)
	words := strings.FieldsFunc(upper, func(r rune) bool {
		return !((r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9'))
	})

	seen := make(map[string]bool)
	var result []string
	for _, w := range words {
		if domain.IsWatched(w) && !seen[w] {
			seen[w] = true
			result = append(result, w)
		}
	}
	return result
}
