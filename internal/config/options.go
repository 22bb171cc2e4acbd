package config

import (
	"fmt"
	"strings"
)

// Options control a single scraper run.
type Options struct {
	// DryRun performs every read but writes nothing to the sheet.
	DryRun bool
	// Debug dumps retrieved tables to local CSV files and lowers the log
	// level.
	Debug bool
	// ScrapeTransactions / ScrapeAccounts select which data kinds this
	// run retrieves. Each kind is all-or-nothing once selected.
	ScrapeTransactions bool
	ScrapeAccounts     bool
	// MFAMethod is one of "totp", "sms", "phone" or "email". totp is the
	// only fully non-interactive method.
	MFAMethod string
}

// OptionsFromFlags builds Options from parsed flag values. types must be
// one of "all", "transactions" or "accounts".
func OptionsFromFlags(dryRun, debug bool, types, mfaMethod string) (Options, error) {
	t := strings.ToLower(types)
	switch t {
	case "all", "transactions", "accounts":
	default:
		return Options{}, fmt.Errorf("type %q is not valid", types)
	}
	return Options{
		DryRun:             dryRun,
		Debug:              debug,
		ScrapeTransactions: t == "all" || t == "transactions",
		ScrapeAccounts:     t == "all" || t == "accounts",
		MFAMethod:          mfaMethod,
	}, nil
}
