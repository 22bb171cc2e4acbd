package pipeline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"github.com/kandluis/myTransactions/internal/config"
)

// Classifier maps raw account names to semantic account types using
// substring rules.
type Classifier struct {
	// rules sorted by descending substring length so that the most
	// specific rule wins; ties keep configuration order.
	rules []config.TypeRule
	log   zerolog.Logger
}

// NewClassifier creates a Classifier from the configured account rules.
func NewClassifier(cfg *config.Config, log zerolog.Logger) *Classifier {
	rules := make([]config.TypeRule, len(cfg.AccountNameToType))
	copy(rules, cfg.AccountNameToType)
	sort.SliceStable(rules, func(i, j int) bool {
		return len(rules[i].Substring) > len(rules[j].Substring)
	})
	return &Classifier{rules: rules, log: log}
}

// Classify returns the semantic type for a raw account name. The first
// (longest) rule whose substring appears in the name, case-insensitively,
// wins. Unmatched names yield an "Unknown - <name>" sentinel; new or
// renamed accounts are expected, so this warns instead of failing.
func (c *Classifier) Classify(rawName string) string {
	lower := strings.ToLower(rawName)
	for _, rule := range c.rules {
		if strings.Contains(lower, strings.ToLower(rule.Substring)) {
			return rule.Type
		}
	}
	c.log.Warn().Str("account", rawName).Msg("no account type rule matched")
	return fmt.Sprintf("Unknown - %s", rawName)
}
