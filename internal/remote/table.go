package remote

import (
	"strconv"

	"github.com/rs/zerolog"

	"github.com/kandluis/myTransactions/internal/config"
	"github.com/kandluis/myTransactions/internal/domain"
)

// canonicalColumns is the fixed field order behind the configurable
// display headers: cfg.ColumnNames[i] is the sheet label for
// canonicalColumns[i].
var canonicalColumns = []string{"Date", "Merchant", "Amount", "Category", "Account", "ID", "Description"}

// accountHeader is the accounts worksheet layout.
var accountHeader = []interface{}{"Name", "Type", "Balance", "Inferred Type"}

// encodeTransactions renders the ledger as sheet rows: the configured
// header followed by one row per transaction. Amounts stay numeric so
// the sheet can aggregate them.
func encodeTransactions(cfg *config.Config, txns []domain.Transaction) [][]interface{} {
	width := min(len(cfg.ColumnNames), len(canonicalColumns))
	rows := make([][]interface{}, 0, len(txns)+1)
	header := make([]interface{}, width)
	for i := 0; i < width; i++ {
		header[i] = cfg.ColumnNames[i]
	}
	rows = append(rows, header)
	for _, t := range txns {
		row := make([]interface{}, width)
		for i := 0; i < width; i++ {
			if canonicalColumns[i] == "Amount" {
				row[i] = t.Amount
				continue
			}
			row[i] = t.Field(canonicalColumns[i])
		}
		rows = append(rows, row)
	}
	return rows
}

// decodeTransactions parses a previously written worksheet back into
// the ledger. The header row is matched against the configured display
// names and resolved to the canonical fields behind them, so a renamed
// or reordered sheet still round-trips. Decoding is forgiving beyond
// that: short rows are skipped and a malformed amount becomes zero
// rather than an error so one bad cell cannot wedge every future run.
func decodeTransactions(cfg *config.Config, rows [][]string, log zerolog.Logger) []domain.Transaction {
	if len(rows) == 0 {
		return nil
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[name] = i
	}
	fieldIndex := make(map[string]int, len(canonicalColumns))
	for i, display := range cfg.ColumnNames {
		if i >= len(canonicalColumns) {
			break
		}
		if j, ok := header[display]; ok {
			fieldIndex[canonicalColumns[i]] = j
		}
	}
	col := func(row []string, field string) string {
		i, ok := fieldIndex[field]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	txns := make([]domain.Transaction, 0, len(rows)-1)
	for n, row := range rows[1:] {
		date := col(row, "Date")
		if date == "" {
			continue
		}
		amount, err := strconv.ParseFloat(col(row, "Amount"), 64)
		if err != nil {
			log.Warn().Int("row", n+2).Str("amount", col(row, "Amount")).Msg("unparseable amount on sheet")
			amount = 0
		}
		txns = append(txns, domain.Transaction{
			Date:        date,
			Merchant:    col(row, "Merchant"),
			Amount:      amount,
			Category:    col(row, "Category"),
			Account:     col(row, "Account"),
			ID:          col(row, "ID"),
			Description: col(row, "Description"),
		})
	}
	return txns
}

// encodeAccounts renders the classified accounts as sheet rows.
func encodeAccounts(accounts []domain.Account) [][]interface{} {
	rows := make([][]interface{}, 0, len(accounts)+1)
	rows = append(rows, accountHeader)
	for _, a := range accounts {
		rows = append(rows, []interface{}{a.Name, a.Type, a.Balance, a.InferredType})
	}
	return rows
}
