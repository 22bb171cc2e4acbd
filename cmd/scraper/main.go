// Command scraper logs into Empower, pulls the latest accounts and
// transactions, merges them with the ledger persisted in Google Sheets
// and writes the result back.
package main

import (
	"context"
	"encoding/csv"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"

	"github.com/kandluis/myTransactions/internal/config"
	"github.com/kandluis/myTransactions/internal/domain"
	"github.com/kandluis/myTransactions/internal/empower"
	"github.com/kandluis/myTransactions/internal/logger"
	"github.com/kandluis/myTransactions/internal/remote"
	"github.com/kandluis/myTransactions/internal/sheets"
)

func main() {
	dryRun := flag.Bool("dry_run", false, "Fetch and merge everything but write nothing to the sheet")
	debug := flag.Bool("debug", false, "Verbose logging plus local CSV dumps of the retrieved tables")
	types := flag.String("types", "all", "Data to scrape: all, transactions or accounts")
	mfaMethod := flag.String("mfa_method", "totp", "MFA method: totp, sms, phone or email (totp is non-interactive)")
	configPath := flag.String("config", "", "Optional YAML file overriding the built-in configuration")
	flag.Parse()

	log := logger.New(*debug).With().Str("run_id", uuid.NewString()).Logger()

	opts, err := config.OptionsFromFlags(*dryRun, *debug, *types, *mfaMethod)
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid flags")
	}

	cfg := config.Default()
	if *configPath != "" {
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", *configPath).Msg("Failed to load config")
		}
	}
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid config")
	}

	creds, err := config.CredentialsFromEnv()
	if err != nil {
		log.Fatal().Err(err).Msg("Missing credentials")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()
	ctx = logger.WithContext(ctx, log)

	log.Info().Msg("Logging in...")
	client := empower.New(log)
	if err := client.Login(ctx, creds.Username, creds.Password, empower.MFAMethod(opts.MFAMethod), creds.MFAToken); err != nil {
		log.Fatal().Err(err).Msg("Empower login failed")
	}

	log.Info().Msg("Connecting to sheets...")
	storage, err := sheets.NewClient(ctx, creds.SpreadsheetID, creds.SheetsJSON)
	if err != nil {
		log.Fatal().Err(err).Msg("Sheets connection failed")
	}

	svc := remote.New(cfg, log)

	var accounts []domain.Account
	if opts.ScrapeAccounts {
		log.Info().Msg("Retrieving accounts...")
		if accounts, err = svc.RetrieveAccounts(ctx, client); err != nil {
			log.Fatal().Err(err).Msg("Account retrieval failed")
		}
	}

	var txns []domain.Transaction
	if opts.ScrapeTransactions {
		log.Info().Msg("Retrieving transactions...")
		if txns, err = svc.RetrieveTransactions(ctx, client, storage); err != nil {
			log.Fatal().Err(err).Msg("Transaction retrieval failed")
		}
	}

	if opts.DryRun {
		log.Info().Msg("Dry run; skipping sheet update")
	} else {
		log.Info().Msg("Retrieval complete. Uploading to sheets...")
		if err := svc.UpdateSheet(ctx, storage, txns, accounts); err != nil {
			log.Fatal().Err(err).Msg("Sheet update failed")
		}
	}

	if opts.Debug {
		if txns != nil {
			if err := dumpTransactionsCSV("transactions.csv", txns); err != nil {
				log.Error().Err(err).Msg("Failed to dump transactions")
			}
		}
		if accounts != nil {
			if err := dumpAccountsCSV("accounts.csv", accounts); err != nil {
				log.Error().Err(err).Msg("Failed to dump accounts")
			}
		}
	}

	color.Green("Scrape complete: %d transactions, %d accounts.", len(txns), len(accounts))
}

func dumpTransactionsCSV(path string, txns []domain.Transaction) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Date", "Merchant", "Amount", "Category", "Account", "ID", "Description"}); err != nil {
		return err
	}
	for _, t := range txns {
		record := []string{
			t.Date, t.Merchant, strconv.FormatFloat(t.Amount, 'f', -1, 64),
			t.Category, t.Account, t.ID, t.Description,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func dumpAccountsCSV(path string, accounts []domain.Account) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write([]string{"Name", "Type", "Balance", "Inferred Type"}); err != nil {
		return err
	}
	for _, a := range accounts {
		record := []string{
			a.Name, a.Type, strconv.FormatFloat(a.Balance, 'f', -1, 64), a.InferredType,
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
