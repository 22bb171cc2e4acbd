package pipeline

import (
	"sort"
	"strconv"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"

	"github.com/kandluis/myTransactions/internal/config"
	"github.com/kandluis/myTransactions/internal/domain"
)

// Merger combines freshly fetched transactions with the rows already
// persisted on the sheet. Runs are incremental: only rows at or after a
// cutoff date are re-fetched, and re-running never duplicates rows.
type Merger struct {
	cfg    *config.Config
	norm   *Normalizer
	filter *Filter
	log    zerolog.Logger
}

// NewMerger creates a Merger.
func NewMerger(cfg *config.Config, norm *Normalizer, filter *Filter, log zerolog.Logger) *Merger {
	return &Merger{cfg: cfg, norm: norm, filter: filter, log: log}
}

// Cutoff computes the date separating persisted history from the range
// to re-fetch: the date NumTxnForCutoff rows from the end of the
// persisted table, clamped forward to the migration date so history
// from the decommissioned provider is never re-fetched. A history
// shorter than the window, an empty table or an unparseable window-row
// date all degrade to the migration boundary alone. ok is false only
// when the window is disabled (<= 0) — the full-fetch escape hatch, in
// which every persisted row is kept and the whole range re-fetched.
func (m *Merger) Cutoff(old []domain.Transaction) (civil.Date, bool) {
	window := m.cfg.NumTxnForCutoff
	if window <= 0 {
		return civil.Date{}, false
	}
	var cutoff civil.Date
	if len(old) >= window {
		raw := old[len(old)-window].Date
		parsed, err := civil.ParseDate(raw)
		if err != nil {
			m.log.Warn().Str("date", raw).Msg("unusable history date; treating history as unusable")
		} else {
			cutoff = parsed
		}
	}
	if m.cfg.MigrationDate != "" {
		if boundary, err := civil.ParseDate(m.cfg.MigrationDate); err == nil && cutoff.Before(boundary) {
			cutoff = boundary
		}
	}
	return cutoff, true
}

// TransactionsFromRaw converts raw API records into cleaned ledger rows:
// column mapping, the sign convention (credits positive, everything
// else negated), merchant fill-from-description, and an ascending date
// sort. Investment movements and pending records are dropped — they are
// not spending.
func (m *Merger) TransactionsFromRaw(raws []domain.RawTransaction) []domain.Transaction {
	txns := make([]domain.Transaction, 0, len(raws))
	for _, raw := range raws {
		if raw.InvestmentType != "" || raw.Status == "pending" {
			continue
		}
		amount := raw.Amount
		if !raw.IsCredit {
			amount = -amount
		}
		merchant := raw.Merchant
		if merchant == "" {
			merchant = raw.Description
		}
		txns = append(txns, domain.Transaction{
			Date:        raw.TransactionDate,
			Merchant:    merchant,
			Amount:      amount,
			Category:    raw.CategoryName,
			Account:     raw.AccountName,
			ID:          strconv.FormatInt(raw.ID, 10),
			Description: raw.Description,
		})
	}
	sort.SliceStable(txns, func(i, j int) bool { return txns[i].Date < txns[j].Date })
	return txns
}

// CleanTransactions normalizes every row and drops the ignored ones.
func (m *Merger) CleanTransactions(txns []domain.Transaction) []domain.Transaction {
	cleaned := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		t.Category = m.norm.Normalize(t.Category)
		t.Merchant = m.norm.NormalizeMerchant(t.Merchant)
		t.Account = m.norm.Normalize(t.Account)
		t.Description = m.norm.Normalize(t.Description)
		if m.filter.Ignored(t) {
			continue
		}
		cleaned = append(cleaned, t)
	}
	return cleaned
}

// Merge splits the persisted table at the cutoff, keeps the strictly
// older rows, appends the fresh rows, cleans and deduplicates. With no
// cutoff the whole history is kept and deduplication absorbs any
// overlap with the fresh rows. Whether the historical segment is
// re-cleaned is a configuration choice, not a separate code path.
func (m *Merger) Merge(old, fresh []domain.Transaction, cutoff civil.Date, haveCutoff bool) []domain.Transaction {
	kept := old
	if haveCutoff {
		boundary := cutoff.String()
		kept = make([]domain.Transaction, 0, len(old))
		for _, t := range old {
			if t.Date < boundary {
				kept = append(kept, t)
			}
		}
	}

	var merged []domain.Transaction
	if m.cfg.CleanUpOldTxns {
		merged = m.CleanTransactions(append(append([]domain.Transaction{}, kept...), fresh...))
	} else {
		merged = append(append([]domain.Transaction{}, kept...), m.CleanTransactions(fresh)...)
	}
	return Deduplicate(merged, m.cfg.IdentifierColumns)
}

// Deduplicate removes rows sharing the identifier tuple named by
// columns, keeping the first occurrence and preserving order
// otherwise. Total over any input; never fails.
func Deduplicate(txns []domain.Transaction, columns []string) []domain.Transaction {
	seen := make(map[string]struct{}, len(txns))
	out := make([]domain.Transaction, 0, len(txns))
	for _, t := range txns {
		key := t.KeyFor(columns)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, t)
	}
	return out
}
