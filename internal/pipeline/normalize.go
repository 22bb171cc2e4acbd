// Package pipeline implements the transaction cleaning pipeline: string
// normalization, account classification, ignore-filtering and the
// cutoff-based incremental merge.
package pipeline

import (
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/kandluis/myTransactions/internal/config"
)

// Termination reports why the merchant normalization loop stopped.
type Termination int

const (
	// TerminationStabilized means a pass produced no further change.
	TerminationStabilized Termination = iota
	// TerminationEmptied means the rules stripped the value down to
	// nothing.
	TerminationEmptied
	// TerminationCapped means the iteration cap was hit before the value
	// stabilized, which indicates a rule cycle.
	TerminationCapped
)

func (t Termination) String() string {
	switch t {
	case TerminationStabilized:
		return "stabilized"
	case TerminationEmptied:
		return "emptied"
	case TerminationCapped:
		return "capped"
	}
	return "unknown"
}

// maxNormalizeIterations bounds the fixed-point loop in
// NormalizeMerchant. A warning fires when fewer than
// normalizeWarnThreshold iterations remain.
const (
	maxNormalizeIterations = 30
	normalizeWarnThreshold = 5
)

// Normalizer cleans transaction field values. It is pure and safe for
// concurrent use.
type Normalizer struct {
	cfg *config.Config
	log zerolog.Logger
}

// NewNormalizer creates a Normalizer using the given rules.
func NewNormalizer(cfg *config.Config, log zerolog.Logger) *Normalizer {
	return &Normalizer{cfg: cfg, log: log}
}

// Normalize cleans a generic field value: drop every rune that is not a
// letter, digit, whitespace or "/", collapse whitespace runs, and
// title-case the result. Idempotent.
func (n *Normalizer) Normalize(value string) string {
	var b strings.Builder
	for _, r := range value {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) || r == '/' {
			b.WriteRune(r)
		}
	}
	return titleCase(collapseSpace(b.String()))
}

// NormalizeMerchant cleans a merchant name by applying the configured
// prefix/suffix/replacement rules repeatedly until the value stabilizes.
// A single pass can expose a prefix that only becomes leading after an
// earlier rule fired (stripping a payment-gateway prefix reveals an
// "aplpay "-style inner prefix), hence the fixed-point loop.
func (n *Normalizer) NormalizeMerchant(merchant string) string {
	result, _ := n.normalizeMerchant(merchant)
	return result
}

// normalizeMerchant is NormalizeMerchant plus the termination reason,
// exposed for tests.
func (n *Normalizer) normalizeMerchant(merchant string) (string, Termination) {
	result := merchant
	for i := 0; i < maxNormalizeIterations; i++ {
		next := n.normalizeOnce(result)
		if next == result {
			if remaining := maxNormalizeIterations - i; remaining < normalizeWarnThreshold {
				n.log.Warn().
					Str("merchant", merchant).
					Int("iterations", i+1).
					Msg("merchant normalization nearly hit the iteration cap; check rules for a cycle")
			}
			return result, TerminationStabilized
		}
		if next == "" {
			return "", TerminationEmptied
		}
		result = next
	}
	n.log.Warn().
		Str("merchant", merchant).
		Str("result", result).
		Msg("merchant normalization hit the iteration cap without stabilizing")
	return result, TerminationCapped
}

// normalizeOnce runs a single cleaning pass over a merchant name.
func (n *Normalizer) normalizeOnce(merchant string) string {
	s := strings.ToLower(merchant)

	for _, prefix := range n.cfg.StartsWithRemoval {
		p := strings.ToLower(prefix)
		if strings.HasPrefix(s, p) {
			s = s[len(p):]
		}
	}

	// Marketplace order prefixes collapse to the parent brand.
	for _, rewrite := range n.cfg.MarketplaceRewrites {
		p := strings.ToLower(rewrite.From)
		if strings.HasPrefix(s, p) {
			s = strings.ToLower(rewrite.To) + " " + s[len(p):]
		}
	}

	for _, suffix := range n.cfg.EndsWithRemoval {
		p := strings.ToLower(suffix)
		if strings.HasSuffix(s, p) {
			s = s[:len(s)-len(p)]
		}
	}

	// Ordered: replacements chain.
	for _, pair := range n.cfg.MerchantNormalizationPairs {
		s = strings.ReplaceAll(s, strings.ToLower(pair.From), strings.ToLower(pair.To))
	}

	var b strings.Builder
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	s = titleCase(collapseSpace(b.String()))

	lower := strings.ToLower(s)
	for _, canonical := range n.cfg.MerchantNormalization {
		if strings.Contains(lower, strings.ToLower(canonical)) {
			return canonical
		}
	}
	return s
}

// collapseSpace reduces whitespace runs to single spaces and trims the
// ends.
func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// titleCase upper-cases every letter that follows a non-letter and
// lower-cases the rest, matching the sheet's historical formatting
// ("str90/4ing" -> "Str90/4Ing").
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range s {
		if unicode.IsLetter(r) {
			if prevLetter {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToUpper(r))
			}
			prevLetter = true
		} else {
			b.WriteRune(r)
			prevLetter = false
		}
	}
	return b.String()
}
