// Package auth implements the device code login flow and account management
package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fastmc/fastmc/internals/credentials"
)

// Default Microsoft endpoints for the consumer tenant
const (
	DefaultDeviceCodeURL = "https://login.microsoftonline.com/consumers/oauth2/v2.0/devicecode"
	DefaultTokenURL      = "https://login.microsoftonline.com/consumers/oauth2/v2.0/token"
)

// provider error codes (RFC 8628 §3.5)
const (
	errAuthorizationPending = "authorization_pending"
	errSlowDown             = "slow_down"
	errExpiredToken         = "expired_token"
	errAccessDenied         = "access_denied"
	errInvalidGrant         = "invalid_grant"
)

// SessionState is the polling state of a device code session
type SessionState int

const (
	StatePending SessionState = iota
	StateAuthorized
	StateDenied
	StateExpired
)

func (s SessionState) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateAuthorized:
		return "authorized"
	case StateDenied:
		return "denied"
	case StateExpired:
		return "expired"
	}
	return "unknown"
}

// Terminal reports whether the session can still change state
func (s SessionState) Terminal() bool {
	return s != StatePending
}

// DeviceCodeSession is one device code login attempt. It only changes
// state through Poll and stays in its first terminal state forever.
// Abandoning a session is done by simply dropping it, there is no
// background work attached.
type DeviceCodeSession struct {
	DeviceCode      string
	UserCode        string
	VerificationURI string
	// Message is the provider supplied "visit X and enter Y" text
	Message   string
	Interval  time.Duration
	ExpiresAt time.Time

	state      SessionState
	lastPoll   time.Time
	credential *credentials.Credential
	denied     string
}

// State returns the current polling state
func (s *DeviceCodeSession) State() SessionState { return s.state }

// PollOutcome is the result of a single Poll call
type PollOutcome struct {
	State SessionState
	// Credential is set once State is StateAuthorized
	Credential *credentials.Credential
	// Reason is set when State is StateDenied
	Reason string
}

// DeviceAuthFlow drives the device code protocol. It never sleeps or
// schedules anything itself: the caller polls on its own timer and the
// flow just enforces the provider interval against a stored timestamp.
type DeviceAuthFlow struct {
	// HTTP client used for all provider calls
	HTTP *http.Client
	// ClientID is the oauth client id registered with the provider
	ClientID string
	// Scopes requested on login
	Scopes []string

	DeviceCodeURL string
	TokenURL      string

	// Now is the clock used for interval and expiry checks, overridable in tests
	Now func() time.Time
}

// NewDeviceAuthFlow returns a flow with the Microsoft consumer endpoints
// and the Xbox Live scopes set
func NewDeviceAuthFlow(httpClient *http.Client, clientID string) *DeviceAuthFlow {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &DeviceAuthFlow{
		HTTP:          httpClient,
		ClientID:      clientID,
		Scopes:        []string{"XboxLive.signin", "offline_access"},
		DeviceCodeURL: DefaultDeviceCodeURL,
		TokenURL:      DefaultTokenURL,
	}
}

func (f *DeviceAuthFlow) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}

type deviceCodeResponse struct {
	DeviceCode      string `json:"device_code"`
	UserCode        string `json:"user_code"`
	VerificationURI string `json:"verification_uri"`
	ExpiresIn       int    `json:"expires_in"`
	Interval        int    `json:"interval"`
	Message         string `json:"message"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
	Scope        string `json:"scope"`

	Error            string `json:"error"`
	ErrorDescription string `json:"error_description"`
}

// Start requests a new device code from the provider
func (f *DeviceAuthFlow) Start(ctx context.Context) (*DeviceCodeSession, error) {
	form := url.Values{
		"client_id": {f.ClientID},
		"scope":     {strings.Join(f.Scopes, " ")},
	}

	res := deviceCodeResponse{}
	if err := f.postForm(ctx, f.DeviceCodeURL, form, &res); err != nil {
		return nil, err
	}
	if res.Error != "" {
		return nil, &ProviderError{Code: res.Error, Description: res.ErrorDescription}
	}

	interval := time.Duration(res.Interval) * time.Second
	if interval == 0 {
		interval = 5 * time.Second
	}

	return &DeviceCodeSession{
		DeviceCode:      res.DeviceCode,
		UserCode:        res.UserCode,
		VerificationURI: res.VerificationURI,
		Message:         res.Message,
		Interval:        interval,
		ExpiresAt:       f.now().Add(time.Duration(res.ExpiresIn) * time.Second),
		state:           StatePending,
	}, nil
}

// Poll advances the session. Callers are expected to keep calling this
// on a timer until the returned state is terminal. Calls before the
// provider interval has elapsed return StatePending without a network
// round trip.
func (f *DeviceAuthFlow) Poll(ctx context.Context, session *DeviceCodeSession) (*PollOutcome, error) {
	// terminal states are sticky
	switch session.state {
	case StateAuthorized:
		return &PollOutcome{State: StateAuthorized, Credential: session.credential}, nil
	case StateDenied:
		return &PollOutcome{State: StateDenied, Reason: session.denied}, nil
	case StateExpired:
		return &PollOutcome{State: StateExpired}, nil
	}

	now := f.now()
	if !now.Before(session.ExpiresAt) {
		session.state = StateExpired
		return &PollOutcome{State: StateExpired}, nil
	}

	// local throttle, the provider punishes fast polling
	if !session.lastPoll.IsZero() && now.Sub(session.lastPoll) < session.Interval {
		return &PollOutcome{State: StatePending}, nil
	}
	session.lastPoll = now

	form := url.Values{
		"client_id":   {f.ClientID},
		"grant_type":  {"urn:ietf:params:oauth:grant-type:device_code"},
		"device_code": {session.DeviceCode},
	}

	res := tokenResponse{}
	err := f.postForm(ctx, f.TokenURL, form, &res)
	if err != nil {
		return nil, err
	}

	switch res.Error {
	case "":
		session.state = StateAuthorized
		session.credential = f.credentialFrom(&res)
		return &PollOutcome{State: StateAuthorized, Credential: session.credential}, nil
	case errAuthorizationPending:
		return &PollOutcome{State: StatePending}, nil
	case errSlowDown:
		// provider asks for a bigger interval, honor it from now on
		session.Interval += 5 * time.Second
		return &PollOutcome{State: StatePending}, nil
	case errExpiredToken:
		session.state = StateExpired
		return &PollOutcome{State: StateExpired}, nil
	case errAccessDenied:
		session.state = StateDenied
		session.denied = res.ErrorDescription
		if session.denied == "" {
			session.denied = "the login request was declined"
		}
		return &PollOutcome{State: StateDenied, Reason: session.denied}, nil
	default:
		return nil, &ProviderError{Code: res.Error, Description: res.ErrorDescription}
	}
}

// Refresh exchanges a refresh token for a fresh credential
func (f *DeviceAuthFlow) Refresh(ctx context.Context, refreshToken string) (*credentials.Credential, error) {
	form := url.Values{
		"client_id":     {f.ClientID},
		"grant_type":    {"refresh_token"},
		"refresh_token": {refreshToken},
		"scope":         {strings.Join(f.Scopes, " ")},
	}

	res := tokenResponse{}
	if err := f.postForm(ctx, f.TokenURL, form, &res); err != nil {
		return nil, err
	}

	switch res.Error {
	case "":
		cred := f.credentialFrom(&res)
		if cred.RefreshToken == "" {
			// provider did not rotate the refresh token, keep the old one
			cred.RefreshToken = refreshToken
		}
		return cred, nil
	case errInvalidGrant, errExpiredToken:
		return nil, ErrReauthRequired
	default:
		return nil, &ProviderError{Code: res.Error, Description: res.ErrorDescription}
	}
}

func (f *DeviceAuthFlow) credentialFrom(res *tokenResponse) *credentials.Credential {
	scopes := f.Scopes
	if res.Scope != "" {
		scopes = strings.Fields(res.Scope)
	}

	cred := &credentials.Credential{Scopes: scopes}
	cred.AccessToken = res.AccessToken
	cred.RefreshToken = res.RefreshToken
	cred.TokenType = "Bearer"
	if res.ExpiresIn != 0 {
		cred.Expiry = f.now().Add(time.Duration(res.ExpiresIn) * time.Second)
	}
	return cred
}

// postForm POSTs a form and decodes the json response. Provider error
// codes are left in the decoded struct, the ones in the response body
// are part of the protocol and not transport failures.
func (f *DeviceAuthFlow) postForm(ctx context.Context, endpoint string, form url.Values, v interface{}) error {
	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	res, err := f.HTTP.Do(req)
	if err != nil {
		return ErrNetworkFailure
	}
	defer res.Body.Close()

	if err := json.NewDecoder(res.Body).Decode(v); err != nil {
		if res.StatusCode >= 500 {
			return ErrNetworkFailure
		}
		return err
	}
	return nil
}
