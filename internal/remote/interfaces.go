package remote

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/kandluis/myTransactions/internal/domain"
)

// API is the slice of the Empower client the orchestrator consumes.
// This interface enables mocking and testing of the scrape flow.
type API interface {
	// GetTransactions fetches the raw transactions in [start, end].
	GetTransactions(ctx context.Context, start, end civil.Date) ([]domain.RawTransaction, error)

	// GetAccounts fetches the raw account list.
	GetAccounts(ctx context.Context) ([]domain.RawAccount, error)
}

// Storage is the spreadsheet backend the persisted tables live in.
type Storage interface {
	// ReadSheet returns the named worksheet as a string table.
	ReadSheet(ctx context.Context, title string) ([][]string, error)

	// WriteSheet replaces the named worksheet with rows.
	WriteSheet(ctx context.Context, title string, rows [][]interface{}) error

	// UpdateRange writes rows at an A1 range, leaving the rest alone.
	UpdateRange(ctx context.Context, a1Range string, rows [][]interface{}) error
}
