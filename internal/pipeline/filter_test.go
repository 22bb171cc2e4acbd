package pipeline

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/kandluis/myTransactions/internal/config"
	"github.com/kandluis/myTransactions/internal/domain"
)

func testFilter(mutate func(*config.Config)) *Filter {
	cfg := config.Default()
	cfg.MerchantNormalization = nil
	if mutate != nil {
		mutate(cfg)
	}
	norm := NewNormalizer(cfg, zerolog.Nop())
	return NewFilter(cfg, norm)
}

func TestFilterIgnoredCategory(t *testing.T) {
	f := testFilter(nil)

	assert.True(t, f.Ignored(domain.Transaction{Category: "Credit Card Payment"}))
	assert.False(t, f.Ignored(domain.Transaction{Category: "Groceries"}))
}

func TestFilterIgnoredMerchant(t *testing.T) {
	// Ignore entries may be written in raw form; they are normalized
	// before comparison.
	f := testFilter(func(cfg *config.Config) {
		cfg.IgnoredMerchants = []string{"aplpay chase autopay"}
	})

	assert.True(t, f.Ignored(domain.Transaction{Merchant: "Chase Autopay"}))
	assert.False(t, f.Ignored(domain.Transaction{Merchant: "Chase Sapphire"}))
}

func TestFilterIgnoredID(t *testing.T) {
	f := testFilter(func(cfg *config.Config) {
		cfg.IgnoredTxns = []string{"13636484313"}
	})

	assert.True(t, f.Ignored(domain.Transaction{ID: "13636484313", Category: "Groceries"}))
	assert.False(t, f.Ignored(domain.Transaction{ID: "999", Category: "Groceries"}))
}

func TestFilterSkippedAccount(t *testing.T) {
	f := testFilter(func(cfg *config.Config) {
		cfg.SkippedAccounts = []string{"wealthfront  cash   account"}
	})

	assert.True(t, f.Ignored(domain.Transaction{Account: "Wealthfront Cash Account"}))
	assert.False(t, f.Ignored(domain.Transaction{Account: "Wealthfront Brokerage"}))
}
