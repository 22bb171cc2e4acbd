package pipeline

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"

	"github.com/kandluis/myTransactions/internal/config"
)

func TestClassifyLongestMatchWins(t *testing.T) {
	cfg := config.Default()
	cfg.AccountNameToType = []config.TypeRule{
		{Substring: "Amazon", Type: "Savings"},
		{Substring: "Amazon Store Card", Type: "Credit"},
		{Substring: "Amazon Store", Type: "Checking"},
		{Substring: "Investment", Type: "Investment"},
		// Case should not matter.
		{Substring: "roth", Type: "Investment"},
		{Substring: "Lending", Type: "Loan"},
		{Substring: "Brokerage", Type: "Stock"},
		{Substring: "Brokerage account - luis", Type: "Retirement"},
	}
	c := NewClassifier(cfg, zerolog.Nop())

	tests := []struct {
		name string
		want string
	}{
		// The longer literal wins even though "Amazon" matches both.
		{"Amazon Store Card", "Credit"},
		{"Amazon Store", "Checking"},
		{"Investment_101", "Investment"},
		{"Roth IRA", "Investment"},
		{"LendingClub", "Loan"},
		{"Brokerage Account", "Stock"},
		{"Brokerage Account - Luis", "Retirement"},
		{"Traditional IRA", "Unknown - Traditional IRA"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, c.Classify(tt.name), "Classify(%q)", tt.name)
	}
}

func TestClassifyNoRules(t *testing.T) {
	cfg := config.Default()
	cfg.AccountNameToType = nil
	c := NewClassifier(cfg, zerolog.Nop())

	assert.Equal(t, "Unknown - Traditional IRA", c.Classify("Traditional IRA"))
}

func TestClassifyTiesKeepConfigOrder(t *testing.T) {
	cfg := config.Default()
	cfg.AccountNameToType = []config.TypeRule{
		{Substring: "Visa", Type: "Credit"},
		{Substring: "Ally", Type: "Cash"},
	}
	c := NewClassifier(cfg, zerolog.Nop())

	// Both rules match and have equal length; the first configured rule
	// wins.
	assert.Equal(t, "Credit", c.Classify("Ally Visa"))
}
