package apiclient

import (
	"log/slog"
	"net/http"
)

// LoginPath is where visitors are sent when the backend rejects their token.
const LoginPath = "/login"

// Session is the per-visitor context the client is constructed with. It
// supplies the bearer token and receives the forced logout on HTTP 401.
type Session interface {
	Token() string
	ClearToken()
	RedirectToLogin(path string)
}

// authTransport attaches the session's bearer token to every request.
type authTransport struct {
	next    http.RoundTripper
	session Session
}

func (t *authTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if token := t.session.Token(); token != "" {
		req = req.Clone(req.Context())
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return t.next.RoundTrip(req)
}

// unauthorizedTransport clears the token and redirects to the login route
// whenever the backend answers 401.
type unauthorizedTransport struct {
	next    http.RoundTripper
	session Session
	logger  *slog.Logger
}

func (t *unauthorizedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	resp, err := t.next.RoundTrip(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		t.logger.Info("Backend rejected token, logging out", "path", req.URL.Path)
		t.session.ClearToken()
		t.session.RedirectToLogin(LoginPath)
	}
	return resp, nil
}

// chain wraps base with the request and response interceptors.
func chain(base http.RoundTripper, session Session, logger *slog.Logger) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	return &authTransport{
		session: session,
		next: &unauthorizedTransport{
			next:    base,
			session: session,
			logger:  logger,
		},
	}
}

// Anonymous is a Session with no token. Used for calls that are not tied to
// a visitor, e.g. health probes.
type Anonymous struct{}

func (Anonymous) Token() string          { return "" }
func (Anonymous) ClearToken()            {}
func (Anonymous) RedirectToLogin(string) {}
