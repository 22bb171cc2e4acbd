// Package empower is a client for the unofficial Empower (formerly
// Personal Capital) web API: CSRF-token login, device MFA and the two
// read endpoints the scraper consumes.
package empower

import (
	"encoding/json"
	"errors"

	"github.com/kandluis/myTransactions/internal/domain"
)

// ErrSessionExpired is returned when the API reports that the login
// session is no longer valid (error code 201). The caller is expected
// to log in again and retry.
var ErrSessionExpired = errors.New("empower: login session expired")

// MFAMethod selects how the second authentication factor is satisfied.
// Only MFATOTP runs unattended; the others prompt for a code delivered
// out of band.
type MFAMethod string

const (
	MFAEmail MFAMethod = "email"
	MFAPhone MFAMethod = "phone"
	MFASMS   MFAMethod = "sms"
	MFATOTP  MFAMethod = "totp"
)

// Valid reports whether m is one of the supported methods.
func (m MFAMethod) Valid() bool {
	switch m {
	case MFAEmail, MFAPhone, MFASMS, MFATOTP:
		return true
	}
	return false
}

// challengeMethods and authMethods mirror the values the web client
// sends for each MFA flavor; the API rejects mismatched pairs.
var challengeMethods = map[MFAMethod]string{
	MFAEmail: "OP",
	MFAPhone: "OP",
	MFASMS:   "OP",
	MFATOTP:  "TP",
}

var authMethods = map[MFAMethod]string{
	MFAEmail: "OP",
	MFAPhone: "OP",
	MFASMS:   "OP",
	MFATOTP:  "TOTP",
}

var authEndpoints = map[MFAMethod]string{
	MFAEmail: "authenticateEmailByCode",
	MFAPhone: "authenticatePhone",
	MFASMS:   "authenticateSms",
	MFATOTP:  "authenticateTotpCode",
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// spHeader is the status envelope wrapped around every API response.
type spHeader struct {
	Success   bool       `json:"success"`
	AuthLevel string     `json:"authLevel"`
	CSRF      string     `json:"csrf"`
	Status    string     `json:"status"`
	Username  string     `json:"username"`
	Errors    []apiError `json:"errors"`
}

type envelope struct {
	SPHeader spHeader        `json:"spHeader"`
	SPData   json.RawMessage `json:"spData"`
}

type transactionsData struct {
	StartDate    string                  `json:"startDate"`
	EndDate      string                  `json:"endDate"`
	Transactions []domain.RawTransaction `json:"transactions"`
}

type accountsData struct {
	Accounts []domain.RawAccount `json:"accounts"`
	Networth float64             `json:"networth"`
}
