package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Environment variables holding the run credentials.
const (
	EnvUsername      = "ACCOUNT_USERNAME"
	EnvPassword      = "PASSWORD"
	EnvSheetsCreds   = "GOOGLE_SHEETS_CREDENTIALS"
	EnvSpreadsheetID = "SPREADSHEET_ID"
	EnvMFAToken      = "MFA_TOKEN"
)

// Credentials holds everything needed to log into Empower and Google
// Sheets. Loaded once at startup; a missing or malformed value aborts
// before any network call.
type Credentials struct {
	Username string
	Password string
	// SheetsJSON is the Google service-account key, verbatim JSON.
	SheetsJSON []byte
	// SpreadsheetID identifies the target spreadsheet in Drive.
	SpreadsheetID string
	// MFAToken is the TOTP secret. Empty unless the totp MFA method is in
	// use.
	MFAToken string
}

// CredentialsFromEnv loads credentials from the environment.
func CredentialsFromEnv() (*Credentials, error) {
	username := os.Getenv(EnvUsername)
	if username == "" {
		return nil, fmt.Errorf("unable to find username from var %s", EnvUsername)
	}
	password := os.Getenv(EnvPassword)
	if password == "" {
		return nil, fmt.Errorf("unable to find password from var %s", EnvPassword)
	}
	sheetsJSON := os.Getenv(EnvSheetsCreds)
	if sheetsJSON == "" {
		return nil, fmt.Errorf("unable to find Google credentials from var %s", EnvSheetsCreds)
	}
	if !json.Valid([]byte(sheetsJSON)) {
		return nil, fmt.Errorf("%s does not hold valid JSON", EnvSheetsCreds)
	}
	spreadsheetID := os.Getenv(EnvSpreadsheetID)
	if spreadsheetID == "" {
		return nil, fmt.Errorf("unable to find spreadsheet ID from var %s", EnvSpreadsheetID)
	}
	return &Credentials{
		Username:      username,
		Password:      password,
		SheetsJSON:    []byte(sheetsJSON),
		SpreadsheetID: spreadsheetID,
		MFAToken:      os.Getenv(EnvMFAToken),
	}, nil
}
