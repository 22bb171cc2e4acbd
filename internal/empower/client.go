package empower

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/go-resty/resty/v2"
	"github.com/rs/zerolog"

	"github.com/kandluis/myTransactions/internal/domain"
)

const (
	defaultBaseURL = "https://home.personalcapital.com"
	userAgent      = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) Chrome/98.0.4758.102 Safari/537.36"
)

// The landing page embeds the initial CSRF token in an inline script.
var csrfPattern = regexp.MustCompile(`csrf *= *'([-a-z0-9]+)'`)

// CodePrompt asks the user for an MFA code delivered out of band. Used
// for every method except TOTP.
type CodePrompt func() (string, error)

// Client talks to the Empower web API. It is stateful: Login must
// succeed before the data methods are usable, and the session cookie
// jar plus CSRF token carried between calls are what keep the session
// alive. Not safe for concurrent use.
type Client struct {
	baseURL string
	http    *resty.Client
	log     zerolog.Logger
	prompt  CodePrompt

	csrf     string
	loggedIn bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at a different API root.
func WithBaseURL(u string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(u, "/") }
}

// WithCodePrompt replaces the interactive stdin prompt.
func WithCodePrompt(p CodePrompt) Option {
	return func(c *Client) { c.prompt = p }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = resty.NewWithClient(hc) }
}

// New creates a Client. The zero configuration targets the production
// API and prompts on stdin for non-TOTP MFA codes.
func New(log zerolog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: defaultBaseURL,
		log:     log,
		prompt:  stdinPrompt,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = resty.New()
	}
	c.http.SetHeader("User-Agent", userAgent)
	return c
}

func stdinPrompt() (string, error) {
	fmt.Fprint(os.Stderr, "Enter 2 factor code: ")
	code, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read mfa code: %w", err)
	}
	return strings.TrimSpace(code), nil
}

// IsLoggedIn reports whether the session is still usable by probing the
// accounts endpoint.
func (c *Client) IsLoggedIn(ctx context.Context) bool {
	if !c.loggedIn {
		return false
	}
	_, err := c.GetAccounts(ctx)
	return err == nil
}

// Login authenticates the session: CSRF bootstrap off the landing page,
// user identification, the MFA exchange (skipped when the device is
// remembered) and finally the password. mfaToken is the TOTP secret and
// is required only for MFATOTP.
func (c *Client) Login(ctx context.Context, username, password string, method MFAMethod, mfaToken string) error {
	if !method.Valid() {
		return fmt.Errorf("empower: unsupported mfa method %q", method)
	}

	landing, err := c.http.R().SetContext(ctx).Get(c.baseURL)
	if err != nil {
		return fmt.Errorf("fetch landing page: %w", err)
	}
	match := csrfPattern.FindStringSubmatch(landing.String())
	if match == nil {
		return fmt.Errorf("empower: no csrf token on landing page")
	}
	c.csrf = match[1]

	resp, err := c.apiRequest(ctx, "/api/login/identifyUser", map[string]string{"username": username})
	if err != nil {
		return fmt.Errorf("identify user: %w", err)
	}
	if resp.SPHeader.CSRF != "" {
		c.csrf = resp.SPHeader.CSRF
	}

	if resp.SPHeader.AuthLevel != "USER_REMEMBERED" {
		c.log.Info().Str("method", string(method)).Msg("device not remembered; starting mfa challenge")
		if err := c.handleMFA(ctx, method, mfaToken); err != nil {
			return err
		}
	}

	if _, err := c.apiRequest(ctx, "/api/credential/authenticatePassword", map[string]string{
		"bindDevice": "false",
		"deviceName": "API script",
		"passwd":     password,
	}); err != nil {
		return fmt.Errorf("authenticate password: %w", err)
	}

	c.loggedIn = true
	c.log.Info().Msg("empower login complete")
	return nil
}

func (c *Client) handleMFA(ctx context.Context, method MFAMethod, mfaToken string) error {
	challengePath := "/api/credential/challenge" + strings.ToUpper(string(method[:1])) + string(method[1:])
	if _, err := c.apiRequest(ctx, challengePath, map[string]string{
		"challengeReason": "DEVICE_AUTH",
		"challengeMethod": challengeMethods[method],
		"bindDevice":      "false",
	}); err != nil {
		return fmt.Errorf("mfa challenge: %w", err)
	}

	var code string
	if method == MFATOTP {
		if mfaToken == "" {
			return fmt.Errorf("empower: mfa method %q requires a token", method)
		}
		totp, err := TOTPNow(mfaToken)
		if err != nil {
			return fmt.Errorf("generate totp code: %w", err)
		}
		code = totp
	} else {
		entered, err := c.prompt()
		if err != nil {
			return err
		}
		code = entered
	}

	form := map[string]string{
		"challengeReason": "DEVICE_AUTH",
		"challengeMethod": authMethods[method],
		"bindDevice":      "false",
	}
	if method == MFATOTP {
		form["totpCode"] = code
	} else {
		form["code"] = code
	}
	if _, err := c.apiRequest(ctx, "/api/credential/"+authEndpoints[method], form); err != nil {
		return fmt.Errorf("mfa auth: %w", err)
	}
	return nil
}

// GetTransactions fetches the raw transactions in [start, end].
func (c *Client) GetTransactions(ctx context.Context, start, end civil.Date) ([]domain.RawTransaction, error) {
	resp, err := c.apiRequest(ctx, "/api/transaction/getUserTransactions", map[string]string{
		"startDate": start.String(),
		"endDate":   end.String(),
	})
	if err != nil {
		return nil, err
	}
	var data transactionsData
	if err := json.Unmarshal(resp.SPData, &data); err != nil {
		return nil, fmt.Errorf("decode transactions: %w", err)
	}
	c.log.Debug().
		Int("count", len(data.Transactions)).
		Str("start", start.String()).
		Str("end", end.String()).
		Msg("fetched transactions")
	return data.Transactions, nil
}

// GetAccounts fetches the raw account list.
func (c *Client) GetAccounts(ctx context.Context) ([]domain.RawAccount, error) {
	resp, err := c.apiRequest(ctx, "/api/newaccount/getAccounts2", nil)
	if err != nil {
		return nil, err
	}
	var data accountsData
	if err := json.Unmarshal(resp.SPData, &data); err != nil {
		return nil, fmt.Errorf("decode accounts: %w", err)
	}
	c.log.Debug().Int("count", len(data.Accounts)).Msg("fetched accounts")
	return data.Accounts, nil
}

// apiRequest posts a form to path with the session CSRF token attached
// and validates the spHeader envelope. Error code 201 in the envelope
// means the session died; the CSRF token is discarded and
// ErrSessionExpired returned so the caller can re-login.
func (c *Client) apiRequest(ctx context.Context, path string, form map[string]string) (*envelope, error) {
	data := map[string]string{"csrf": c.csrf, "apiClient": "WEB"}
	for k, v := range form {
		data[k] = v
	}

	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(data).
		Post(c.baseURL + path)
	if err != nil {
		return nil, fmt.Errorf("post %s: %w", path, err)
	}
	contentType := resp.Header().Get("Content-Type")
	if resp.StatusCode() != http.StatusOK || !strings.Contains(contentType, "json") {
		c.log.Error().
			Str("path", path).
			Int("status", resp.StatusCode()).
			Str("contentType", contentType).
			Msg("api request failed")
		return nil, fmt.Errorf("empower: %s returned %d (%s)", path, resp.StatusCode(), contentType)
	}

	var env envelope
	if err := json.Unmarshal(resp.Body(), &env); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", path, err)
	}
	if !env.SPHeader.Success {
		for _, apiErr := range env.SPHeader.Errors {
			if apiErr.Code == 201 {
				c.csrf = ""
				c.loggedIn = false
				return nil, fmt.Errorf("%s: %w", path, ErrSessionExpired)
			}
		}
		return nil, fmt.Errorf("empower: %s failed: %+v", path, env.SPHeader.Errors)
	}
	return &env, nil
}
