// Package domain holds the record shapes that flow through the scraper:
// raw Empower API records and the cleaned rows persisted to Google Sheets.
package domain

import (
	"fmt"
	"strings"
)

// RawTransaction is a single transaction as returned by the Empower API.
// Only the fields consumed by the pipeline are mapped; the API returns
// many more.
type RawTransaction struct {
	AccountName     string  `json:"accountName"`
	Amount          float64 `json:"amount"`
	CategoryName    string  `json:"categoryName"`
	TransactionDate string  `json:"transactionDate"` // yyyy-mm-dd
	Description     string  `json:"description"`
	Merchant        string  `json:"merchant"`
	ID              int64   `json:"userTransactionId"`
	Status          string  `json:"status"` // "pending" or "posted"
	IsSpending      bool    `json:"isSpending"`
	IsCashOut       bool    `json:"isCashOut"`
	IsCredit        bool    `json:"isCredit"`
	// Set only for investment movements (e.g. "Buy", "Dividend"). Rows
	// with a non-empty InvestmentType are not spending and are dropped.
	InvestmentType string `json:"investmentType"`
}

// RawAccount is a single account as returned by the Empower API.
type RawAccount struct {
	Name        string  `json:"name"`
	Balance     float64 `json:"balance"`
	ClosedDate  string  `json:"closedDate"` // empty while the account is open
	AccountType string  `json:"accountType"`
}

// Transaction is one cleaned ledger row. Date stays an ISO yyyy-mm-dd
// string so that rows read back from the sheet round-trip verbatim even
// when a legacy row carries a date the current code cannot parse; ISO
// strings order lexicographically, which is all the merge needs.
type Transaction struct {
	Date        string
	Merchant    string
	Amount      float64
	Category    string
	Account     string
	ID          string
	Description string
}

// Field returns the named canonical field as a string. Amounts are
// rendered to cents so float noise never splits a key. Unknown names
// yield "".
func (t Transaction) Field(name string) string {
	switch name {
	case "Date":
		return t.Date
	case "Merchant":
		return t.Merchant
	case "Amount":
		return fmt.Sprintf("%.2f", t.Amount)
	case "Category":
		return t.Category
	case "Account":
		return t.Account
	case "ID":
		return t.ID
	case "Description":
		return t.Description
	}
	return ""
}

// KeyFor returns the deduplication key built from the named fields.
// The configured columns deliberately leave out the raw ID: the same
// logical transaction has shown up under different IDs across provider
// migrations, so identity is content-based. Two genuinely distinct
// transactions that agree on every keyed field collapse to one row;
// that is an accepted limitation.
func (t Transaction) KeyFor(columns []string) string {
	parts := make([]string, len(columns))
	for i, name := range columns {
		parts[i] = t.Field(name)
	}
	return strings.Join(parts, "|")
}

// Account is one classified account row.
type Account struct {
	Name    string
	Type    string
	Balance float64
	// The provider's own type string, retained for audit.
	InferredType string
}
