package empower

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeEmpower simulates the API surface the client touches: the CSRF
// landing page, the login endpoints and the two data endpoints.
type fakeEmpower struct {
	t *testing.T

	authLevel    string // returned by identifyUser
	sessionDead  bool   // data endpoints answer with error code 201
	calls        []string
	lastCSRF     string
	lastTOTPCode string
	lastCode     string
}

func (f *fakeEmpower) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html><script>var csrf = 'landing-csrf';</script></html>")
	})
	mux.HandleFunc("POST /api/login/identifyUser", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, "identifyUser")
		assert.NotEmpty(f.t, r.FormValue("username"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"spHeader":{"success":true,"csrf":"session-csrf","authLevel":%q}}`, f.authLevel)
	})
	mux.HandleFunc("POST /api/credential/challengeTotp", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, "challengeTotp")
		assert.Equal(f.t, "TP", r.FormValue("challengeMethod"))
		f.ok(w)
	})
	mux.HandleFunc("POST /api/credential/authenticateTotpCode", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, "authenticateTotpCode")
		assert.Equal(f.t, "TOTP", r.FormValue("challengeMethod"))
		f.lastTOTPCode = r.FormValue("totpCode")
		f.ok(w)
	})
	mux.HandleFunc("POST /api/credential/challengeSms", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, "challengeSms")
		assert.Equal(f.t, "OP", r.FormValue("challengeMethod"))
		f.ok(w)
	})
	mux.HandleFunc("POST /api/credential/authenticateSms", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, "authenticateSms")
		f.lastCode = r.FormValue("code")
		f.ok(w)
	})
	mux.HandleFunc("POST /api/credential/authenticatePassword", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, "authenticatePassword")
		assert.Equal(f.t, "secret", r.FormValue("passwd"))
		f.ok(w)
	})
	mux.HandleFunc("POST /api/transaction/getUserTransactions", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, "getUserTransactions")
		assert.Equal(f.t, "2023-12-08", r.FormValue("startDate"))
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{
			"spHeader":{"success":true},
			"spData":{"transactions":[
				{"accountName":"Citi Double Cash Card","amount":6.25,"categoryName":"Restaurants","transactionDate":"2023-12-10","description":"Teaspoon","userTransactionId":13500164298,"status":"posted"}
			]}
		}`)
	})
	mux.HandleFunc("POST /api/newaccount/getAccounts2", func(w http.ResponseWriter, r *http.Request) {
		f.record(r, "getAccounts2")
		w.Header().Set("Content-Type", "application/json")
		if f.sessionDead {
			fmt.Fprint(w, `{"spHeader":{"success":false,"errors":[{"code":201,"message":"expired"}]}}`)
			return
		}
		fmt.Fprint(w, `{
			"spHeader":{"success":true},
			"spData":{"accounts":[{"name":"Roth IRA - Luis","balance":123.45,"accountType":"IRA - Roth"}]}
		}`)
	})
	return mux
}

func (f *fakeEmpower) record(r *http.Request, name string) {
	f.calls = append(f.calls, name)
	assert.Equal(f.t, "WEB", r.FormValue("apiClient"))
	f.lastCSRF = r.FormValue("csrf")
}

func (f *fakeEmpower) ok(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprint(w, `{"spHeader":{"success":true}}`)
}

func testClient(t *testing.T, fake *fakeEmpower, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)
	opts = append([]Option{WithBaseURL(srv.URL)}, opts...)
	return New(zerolog.Nop(), opts...)
}

func TestLoginTOTP(t *testing.T) {
	fake := &fakeEmpower{t: t, authLevel: "DEVICE_AUTH"}
	c := testClient(t, fake)

	err := c.Login(context.Background(), "user@example.com", "secret", MFATOTP, "GEZDGNBVGY3TQOJQ")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"identifyUser", "challengeTotp", "authenticateTotpCode", "authenticatePassword",
	}, fake.calls)
	assert.Len(t, fake.lastTOTPCode, 6)
	assert.Equal(t, "session-csrf", fake.lastCSRF,
		"later requests carry the token issued at identifyUser")
}

func TestLoginRememberedDeviceSkipsMFA(t *testing.T) {
	fake := &fakeEmpower{t: t, authLevel: "USER_REMEMBERED"}
	c := testClient(t, fake)

	err := c.Login(context.Background(), "user@example.com", "secret", MFATOTP, "GEZDGNBVGY3TQOJQ")
	require.NoError(t, err)

	assert.Equal(t, []string{"identifyUser", "authenticatePassword"}, fake.calls)
}

func TestLoginPromptedCode(t *testing.T) {
	fake := &fakeEmpower{t: t, authLevel: "DEVICE_AUTH"}
	c := testClient(t, fake, WithCodePrompt(func() (string, error) {
		return "424242", nil
	}))

	err := c.Login(context.Background(), "user@example.com", "secret", MFASMS, "")
	require.NoError(t, err)
	assert.Equal(t, "424242", fake.lastCode)
}

func TestLoginTOTPRequiresToken(t *testing.T) {
	fake := &fakeEmpower{t: t, authLevel: "DEVICE_AUTH"}
	c := testClient(t, fake)

	err := c.Login(context.Background(), "user@example.com", "secret", MFATOTP, "")
	assert.Error(t, err)
}

func TestLoginRejectsUnknownMethod(t *testing.T) {
	c := New(zerolog.Nop())
	err := c.Login(context.Background(), "user@example.com", "secret", MFAMethod("carrier-pigeon"), "")
	assert.Error(t, err)
}

func TestGetTransactions(t *testing.T) {
	fake := &fakeEmpower{t: t, authLevel: "USER_REMEMBERED"}
	c := testClient(t, fake)
	require.NoError(t, c.Login(context.Background(), "user@example.com", "secret", MFATOTP, "GEZDGNBVGY3TQOJQ"))

	start := civil.Date{Year: 2023, Month: 12, Day: 8}
	end := civil.Date{Year: 2024, Month: 1, Day: 8}
	txns, err := c.GetTransactions(context.Background(), start, end)
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Equal(t, "Teaspoon", txns[0].Description)
	assert.Equal(t, int64(13500164298), txns[0].ID)
}

func TestGetAccounts(t *testing.T) {
	fake := &fakeEmpower{t: t, authLevel: "USER_REMEMBERED"}
	c := testClient(t, fake)
	require.NoError(t, c.Login(context.Background(), "user@example.com", "secret", MFATOTP, "GEZDGNBVGY3TQOJQ"))

	accounts, err := c.GetAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Roth IRA - Luis", accounts[0].Name)
	assert.Equal(t, "IRA - Roth", accounts[0].AccountType)
}

func TestSessionExpired(t *testing.T) {
	fake := &fakeEmpower{t: t, authLevel: "USER_REMEMBERED", sessionDead: true}
	c := testClient(t, fake)
	require.NoError(t, c.Login(context.Background(), "user@example.com", "secret", MFATOTP, "GEZDGNBVGY3TQOJQ"))

	_, err := c.GetAccounts(context.Background())
	assert.ErrorIs(t, err, ErrSessionExpired)
	assert.False(t, c.IsLoggedIn(context.Background()))
}

func TestNonJSONResponseFails(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "<html>maintenance</html>")
	}))
	t.Cleanup(srv.Close)

	c := New(zerolog.Nop(), WithBaseURL(srv.URL))
	_, err := c.GetAccounts(context.Background())
	assert.Error(t, err)
}
