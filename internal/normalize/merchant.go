// Package normalize canonicalizes raw feed fields so that the same
// logical merchant or transaction always maps to the same value,
// whatever the source feed looked like.
package normalize

import (
	"regexp"
	"strings"
)

// noiseTokens are point-of-sale artifacts that carry no merchant
// identity: processor verbs, terminal markers and reference labels.
var noiseTokens = map[string]bool{
	"POS":       true,
	"PURCHASE":  true,
	"DEBIT":     true,
	"CHECKCARD": true,
	"TERMINAL":  true,
	"TERM":      true,
	"AUTH":      true,
	"REF":       true,
	"TXN":       true,
	"WEB":       true,
	"RECURRING": true,
}

var (
	// Store/terminal numbers: "#1234", "04567", "STORE 081".
	digitRunRE = regexp.MustCompile(`^#?\d{2,}$`)
	// Masked card fragments: "XXXX1234", "XX-4821".
	maskedCardRE = regexp.MustCompile(`^X{2,}-?\d+$`)
	spaceRunRE   = regexp.MustCompile(`\s+`)
)

// MerchantName maps a noisy merchant string to a canonical uppercase
// label. It strips store numbers, "POS PURCHASE"-style suffixes and
// masked card fragments, then collapses whitespace. Idempotent: a
// canonical label passes through unchanged. Unknown formats degrade to
// an uppercased, trimmed copy of the input; non-empty input never
// yields an empty result.
func MerchantName(raw string) string {
	upper := strings.ToUpper(strings.TrimSpace(raw))
	if upper == "" {
		return ""
	}

	cleaned := strings.ReplaceAll(upper, "*", " ")
	tokens := strings.Fields(cleaned)
	kept := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		if noiseTokens[tok] {
			continue
		}
		if digitRunRE.MatchString(tok) || maskedCardRE.MatchString(tok) {
			continue
		}
		kept = append(kept, tok)
	}

	if len(kept) == 0 {
		return spaceRunRE.ReplaceAllString(upper, " ")
	}
	return strings.Join(kept, " ")
}
