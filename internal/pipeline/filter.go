package pipeline

import (
	"github.com/kandluis/myTransactions/internal/config"
	"github.com/kandluis/myTransactions/internal/domain"
)

// Filter decides which cleaned transactions are dropped from the ledger.
//
// Configured ignore entries are passed through the same normalization
// as the data they are compared against, so config authors can write
// entries in either raw or normalized form.
type Filter struct {
	categories map[string]struct{}
	merchants  map[string]struct{}
	accounts   map[string]struct{}
	ids        map[string]struct{}
}

// NewFilter precomputes the normalized ignore sets.
func NewFilter(cfg *config.Config, norm *Normalizer) *Filter {
	f := &Filter{
		categories: make(map[string]struct{}, len(cfg.IgnoredCategories)),
		merchants:  make(map[string]struct{}, len(cfg.IgnoredMerchants)),
		accounts:   make(map[string]struct{}, len(cfg.SkippedAccounts)),
		ids:        make(map[string]struct{}, len(cfg.IgnoredTxns)),
	}
	for _, category := range cfg.IgnoredCategories {
		f.categories[norm.Normalize(category)] = struct{}{}
	}
	for _, merchant := range cfg.IgnoredMerchants {
		f.merchants[norm.NormalizeMerchant(merchant)] = struct{}{}
	}
	for _, account := range cfg.SkippedAccounts {
		f.accounts[norm.Normalize(account)] = struct{}{}
	}
	for _, id := range cfg.IgnoredTxns {
		f.ids[id] = struct{}{}
	}
	return f
}

// Ignored reports whether a cleaned transaction should be dropped. The
// transaction's Category, Merchant and Account must already be
// normalized.
func (f *Filter) Ignored(t domain.Transaction) bool {
	if _, ok := f.categories[t.Category]; ok {
		return true
	}
	if _, ok := f.merchants[t.Merchant]; ok {
		return true
	}
	if _, ok := f.accounts[t.Account]; ok {
		return true
	}
	if _, ok := f.ids[t.ID]; ok {
		return true
	}
	return false
}
