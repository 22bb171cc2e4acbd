// Package remote orchestrates a scrape run: pull raw data from the
// Empower API, run it through the cleaning pipeline, merge it with the
// ledger persisted on the spreadsheet and write the result back.
package remote

import (
	"context"
	"fmt"
	"os"
	"time"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/kandluis/myTransactions/internal/config"
	"github.com/kandluis/myTransactions/internal/domain"
	"github.com/kandluis/myTransactions/internal/pipeline"
)

// How far past today the fetch window extends; matches the web client.
const fetchLookahead = time.Hour * 24 * 31

const settingsStampLayout = "02-January-2006 15:04:05 MST"

// Service implements the scrape flow over the API and Storage
// interfaces. Construct with New; the zero value is not usable.
type Service struct {
	cfg        *config.Config
	log        zerolog.Logger
	classifier *pipeline.Classifier
	merger     *pipeline.Merger

	now      func() time.Time
	hostname func() (string, error)
}

// New wires the pipeline components off cfg.
func New(cfg *config.Config, log zerolog.Logger) *Service {
	norm := pipeline.NewNormalizer(cfg, log)
	return &Service{
		cfg:        cfg,
		log:        log,
		classifier: pipeline.NewClassifier(cfg, log),
		merger:     pipeline.NewMerger(cfg, norm, pipeline.NewFilter(cfg, norm), log),
		now:        time.Now,
		hostname:   os.Hostname,
	}
}

// RetrieveAccounts fetches the account list, drops closed accounts and
// classifies the rest by name.
func (s *Service) RetrieveAccounts(ctx context.Context, api API) ([]domain.Account, error) {
	raws, err := api.GetAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("retrieve accounts: %w", err)
	}
	accounts := make([]domain.Account, 0, len(raws))
	for _, raw := range raws {
		if raw.ClosedDate != "" {
			continue
		}
		accounts = append(accounts, domain.Account{
			Name:         raw.Name,
			Type:         s.classifier.Classify(raw.Name),
			Balance:      raw.Balance,
			InferredType: raw.AccountType,
		})
	}
	s.log.Info().Int("count", len(accounts)).Msg("retrieved accounts")
	return accounts, nil
}

// RetrieveTransactions runs the incremental merge: read the persisted
// ledger, compute the cutoff, fetch the raw transactions from the
// cutoff forward, clean them and merge against the retained history.
// Nothing is written; the caller decides what to do with the result.
func (s *Service) RetrieveTransactions(ctx context.Context, api API, storage Storage) ([]domain.Transaction, error) {
	rows, err := storage.ReadSheet(ctx, s.cfg.RawTransactionsTitle)
	if err != nil {
		return nil, fmt.Errorf("read persisted transactions: %w", err)
	}
	old := decodeTransactions(s.cfg, rows, s.log)

	cutoff, haveCutoff := s.merger.Cutoff(old)
	start := cutoff
	if !haveCutoff {
		start = s.fullFetchStart()
	}
	end := civil.DateOf(s.now().Add(fetchLookahead))
	s.log.Info().
		Str("start", start.String()).
		Str("end", end.String()).
		Int("persisted", len(old)).
		Msg("fetching transactions")

	raws, err := api.GetTransactions(ctx, start, end)
	if err != nil {
		return nil, fmt.Errorf("retrieve transactions: %w", err)
	}
	fresh := s.merger.TransactionsFromRaw(raws)
	if haveCutoff {
		// The API has returned rows outside the requested window before;
		// trust the cutoff, not the server.
		boundary := cutoff.String()
		kept := fresh[:0]
		for _, t := range fresh {
			if t.Date >= boundary {
				kept = append(kept, t)
			}
		}
		fresh = kept
	}

	merged := s.merger.Merge(old, fresh, cutoff, haveCutoff)
	s.log.Info().
		Int("fetched", len(fresh)).
		Int("merged", len(merged)).
		Msg("merged transactions")
	return merged, nil
}

// fullFetchStart is the window start when no cutoff applies: the
// migration boundary, since the provider has no data before it.
func (s *Service) fullFetchStart() civil.Date {
	if d, err := civil.ParseDate(s.cfg.MigrationDate); err == nil {
		return d
	}
	return civil.Date{Year: 1970, Month: time.January, Day: 1}
}

// CleanTransactions normalizes and filters an arbitrary ledger slice.
func (s *Service) CleanTransactions(txns []domain.Transaction) []domain.Transaction {
	return s.merger.CleanTransactions(txns)
}

// UpdateSheet writes the merged tables back: transactions and accounts
// worksheets (each skipped when nil) and the settings stamp recording
// when and where the run happened.
func (s *Service) UpdateSheet(ctx context.Context, storage Storage, txns []domain.Transaction, accounts []domain.Account) error {
	if txns != nil {
		if err := storage.WriteSheet(ctx, s.cfg.RawTransactionsTitle, encodeTransactions(s.cfg, txns)); err != nil {
			return fmt.Errorf("write transactions: %w", err)
		}
	}
	if accounts != nil {
		if err := storage.WriteSheet(ctx, s.cfg.RawAccountsTitle, encodeAccounts(accounts)); err != nil {
			return fmt.Errorf("write accounts: %w", err)
		}
	}

	host, err := s.hostname()
	if err != nil {
		host = "unknown"
	}
	stamp := s.now().Format(settingsStampLayout)
	rows := [][]interface{}{{stamp}, {host}}
	if err := storage.UpdateRange(ctx, fmt.Sprintf("%s!D2", s.cfg.SettingsSheetTitle), rows); err != nil {
		return fmt.Errorf("write settings stamp: %w", err)
	}
	s.log.Info().Str("stamp", stamp).Str("host", host).Msg("sheet updated")
	return nil
}
