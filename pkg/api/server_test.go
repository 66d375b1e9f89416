package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kientrucanlac/anlac/pkg/apiclient"
	"github.com/kientrucanlac/anlac/pkg/chat"
	"github.com/kientrucanlac/anlac/pkg/config"
	"github.com/kientrucanlac/anlac/pkg/envelope"
	"github.com/kientrucanlac/anlac/pkg/fetch"
	"github.com/kientrucanlac/anlac/pkg/session"
	"github.com/kientrucanlac/anlac/pkg/site"
)

var testProjects = []apiclient.Project{
	{ID: "villa-thao-dien", Title: "Biệt thự Thảo Điền", Category: "villa", Featured: true},
	{ID: "nha-pho-q7", Title: "Nhà phố Quận 7", Category: "townhouse"},
	{ID: "can-ho-q2", Title: "Căn hộ Quận 2", Category: "apartment", Featured: true},
}

var testServices = []apiclient.Service{
	{ID: "kien-truc", Name: "Thiết kế kiến trúc"},
	{ID: "noi-that", Name: "Thiết kế nội thất"},
}

// fakeBackend is a minimal REST backend speaking the envelope format.
type fakeBackend struct {
	mu       sync.Mutex
	auth     []string
	contacts []apiclient.Contact
	status   int // forced status for every call when non-zero
	failMsg  string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	b.auth = append(b.auth, r.Header.Get("Authorization"))
	status, failMsg := b.status, b.failMsg
	b.mu.Unlock()

	write := func(code int, body any) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		_ = json.NewEncoder(w).Encode(body)
	}
	if status != 0 {
		write(status, envelope.Fail[any](failMsg))
		return
	}

	switch {
	case r.URL.Path == "/api/services":
		write(http.StatusOK, envelope.New(testServices))
	case r.URL.Path == "/api/projects":
		write(http.StatusOK, envelope.New(testProjects))
	case strings.HasPrefix(r.URL.Path, "/api/projects/"):
		id := strings.TrimPrefix(r.URL.Path, "/api/projects/")
		for _, p := range testProjects {
			if p.ID == id {
				write(http.StatusOK, envelope.New(p))
				return
			}
		}
		write(http.StatusNotFound, envelope.Fail[any]("Không tìm thấy dự án"))
	case r.URL.Path == "/api/contacts" && r.Method == http.MethodPost:
		var c apiclient.Contact
		_ = json.NewDecoder(r.Body).Decode(&c)
		if c.Email == "taken@example.com" {
			write(http.StatusOK, envelope.Fail[apiclient.Contact]("Email đã được đăng ký"))
			return
		}
		c.ID = "c-1"
		b.mu.Lock()
		b.contacts = append(b.contacts, c)
		b.mu.Unlock()
		write(http.StatusOK, envelope.New(c))
	default:
		write(http.StatusNotFound, envelope.Fail[any]("not found"))
	}
}

func (b *fakeBackend) lastAuth() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.auth) == 0 {
		return ""
	}
	return b.auth[len(b.auth)-1]
}

type testEnv struct {
	server   *Server
	backend  *fakeBackend
	sessions *session.Manager
	cookie   *http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	backend := &fakeBackend{}
	ts := httptest.NewServer(backend)
	t.Cleanup(ts.Close)

	cfg := config.Defaults()
	cfg.API.BaseURL = ts.URL + "/api"
	cfg.API.Timeout = 2 * time.Second

	catalog, err := site.Builtin()
	require.NoError(t, err)

	sessions := session.NewManager(session.NewMemoryTokenStore(),
		session.WithWidgetOptions(chat.WithReplyDelay(10*time.Millisecond)))

	return &testEnv{
		server:   NewServer(cfg, sessions, catalog),
		backend:  backend,
		sessions: sessions,
	}
}

// do sends a request as the same visitor across calls.
func (e *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if e.cookie != nil {
		req.AddCookie(e.cookie)
	}
	rec := httptest.NewRecorder()
	e.server.Handler().ServeHTTP(rec, req)

	for _, c := range rec.Result().Cookies() {
		if c.Name == "anlac_session" {
			e.cookie = c
		}
	}
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/health", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HealthResponse](t, rec)
	assert.Equal(t, healthStatusHealthy, resp.Status)
	assert.NotEmpty(t, resp.Version)
	assert.Contains(t, resp.Checks, "sessions")
	assert.NotContains(t, resp.Checks, "redis")
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestVisitorSessionCookie(t *testing.T) {
	env := newTestEnv(t)

	env.do(t, http.MethodGet, "/about", "")
	require.NotNil(t, env.cookie)
	first := env.cookie.Value
	assert.True(t, env.cookie.HttpOnly)

	env.do(t, http.MethodGet, "/about", "")
	assert.Equal(t, first, env.cookie.Value)
	assert.Equal(t, 1, env.sessions.Count())

	// An existing visitor gets the cookie again with a full idle window.
	rec := env.do(t, http.MethodGet, "/api/chat", "")
	var refreshed *http.Cookie
	for _, c := range rec.Result().Cookies() {
		if c.Name == "anlac_session" {
			refreshed = c
		}
	}
	require.NotNil(t, refreshed, "cookie re-issued for an existing session")
	assert.Equal(t, first, refreshed.Value)
	assert.Equal(t, int(config.Defaults().Sessions.IdleTTL/time.Second), refreshed.MaxAge)

	env.cookie = &http.Cookie{Name: "anlac_session", Value: "unknown"}
	env.do(t, http.MethodGet, "/about", "")
	assert.NotEqual(t, "unknown", env.cookie.Value)
	assert.Equal(t, 2, env.sessions.Count())
}

func TestHomePage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[HomeResponse](t, rec)
	assert.Equal(t, "Kiến Trúc An Lạc", resp.Company.Name)
	assert.Equal(t, fetch.PhaseReady, resp.Services.Phase)
	assert.Equal(t, testServices, resp.Services.Value)
	require.Equal(t, fetch.PhaseReady, resp.Projects.Phase)
	require.Len(t, resp.Projects.Value, 2)
	assert.Equal(t, "villa-thao-dien", resp.Projects.Value[0].ID)
	assert.Equal(t, "can-ho-q2", resp.Projects.Value[1].ID)
}

func TestPortfolioPage(t *testing.T) {
	tests := []struct {
		query    string
		category string
		want     []string
	}{
		{query: "", category: "all", want: []string{"villa-thao-dien", "nha-pho-q7", "can-ho-q2"}},
		{query: "?category=townhouse", category: "townhouse", want: []string{"nha-pho-q7"}},
		{query: "?category=office", category: "office", want: []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodGet, "/portfolio"+tt.query, "")

			require.Equal(t, http.StatusOK, rec.Code)
			resp := decode[PortfolioResponse](t, rec)
			assert.Equal(t, tt.category, resp.Category)
			require.True(t, resp.Projects.Ready())
			ids := []string{}
			for _, p := range resp.Projects.Value {
				ids = append(ids, p.ID)
			}
			assert.Equal(t, tt.want, ids)
		})
	}
}

func TestProjectPage(t *testing.T) {
	t.Run("found", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/project/villa-thao-dien", "")

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ProjectResponse](t, rec)
		require.True(t, resp.Project.Ready())
		assert.Equal(t, "Biệt thự Thảo Điền", resp.Project.Value.Title)
	})

	t.Run("backend error message surfaces in failed state", func(t *testing.T) {
		env := newTestEnv(t)
		rec := env.do(t, http.MethodGet, "/project/missing", "")

		require.Equal(t, http.StatusOK, rec.Code)
		resp := decode[ProjectResponse](t, rec)
		assert.Equal(t, fetch.PhaseFailed, resp.Project.Phase)
		assert.Equal(t, "Không tìm thấy dự án", resp.Project.Err)
	})
}

func TestUnauthorizedRedirectsToLogin(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodPost, "/login", `{"token":"opaque-token"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	env.do(t, http.MethodGet, "/services", "")
	assert.Equal(t, "Bearer opaque-token", env.backend.lastAuth())

	env.backend.mu.Lock()
	env.backend.status = http.StatusUnauthorized
	env.backend.failMsg = "Phiên đăng nhập đã hết hạn"
	env.backend.mu.Unlock()

	rec = env.do(t, http.MethodGet, "/services", "")
	assert.Equal(t, http.StatusFound, rec.Code)
	assert.Equal(t, "/login", rec.Header().Get("Location"))

	rec = env.do(t, http.MethodGet, "/login", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[LoginPageResponse](t, rec)
	assert.False(t, resp.Authenticated)
	assert.Equal(t, "Đăng nhập", resp.Page.Title)
}

func TestLogin(t *testing.T) {
	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredToken, err := expired.SignedString([]byte("secret"))
	require.NoError(t, err)

	tests := []struct {
		name string
		body string
		want int
	}{
		{name: "opaque token", body: `{"token":"abc"}`, want: http.StatusOK},
		{name: "blank token", body: `{"token":"   "}`, want: http.StatusBadRequest},
		{name: "expired jwt", body: `{"token":"` + expiredToken + `"}`, want: http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/login", tt.body)
			assert.Equal(t, tt.want, rec.Code, rec.Body.String())
		})
	}

	t.Run("logout clears token", func(t *testing.T) {
		env := newTestEnv(t)
		env.do(t, http.MethodPost, "/login", `{"token":"abc"}`)
		require.True(t, decode[LoginPageResponse](t, env.do(t, http.MethodGet, "/login", "")).Authenticated)

		rec := env.do(t, http.MethodPost, "/logout", "")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.False(t, decode[LoginPageResponse](t, env.do(t, http.MethodGet, "/login", "")).Authenticated)
	})
}

func TestBlogPage(t *testing.T) {
	env := newTestEnv(t)

	rec := env.do(t, http.MethodGet, "/blog?category=interior", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[BlogResponse](t, rec)
	assert.Equal(t, "interior", resp.Category)
	require.NotNil(t, resp.Listing.Featured)
	for _, p := range resp.Listing.Posts {
		assert.Equal(t, "interior", p.Category)
		assert.False(t, p.Featured)
	}
	assert.NotEmpty(t, resp.Categories)

	rec = env.do(t, http.MethodGet, "/blog?category=gardening", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestContactSubmit(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    int
		wantErr string
	}{
		{
			name: "created",
			body: `{"name":"Minh","email":"minh@example.com","message":"Tư vấn thiết kế nhà phố"}`,
			want: http.StatusCreated,
		},
		{
			name:    "missing name",
			body:    `{"email":"minh@example.com","message":"x"}`,
			want:    http.StatusBadRequest,
			wantErr: "name",
		},
		{
			name:    "no way to reach the visitor",
			body:    `{"name":"Minh","message":"x"}`,
			want:    http.StatusBadRequest,
			wantErr: "email or phone",
		},
		{
			name:    "bad email",
			body:    `{"name":"Minh","email":"not-an-email","message":"x"}`,
			want:    http.StatusBadRequest,
			wantErr: "invalid email",
		},
		{
			name:    "error envelope from backend",
			body:    `{"name":"Minh","email":"taken@example.com","message":"x"}`,
			want:    http.StatusBadGateway,
			wantErr: "Email đã được đăng ký",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			rec := env.do(t, http.MethodPost, "/contact", tt.body)

			require.Equal(t, tt.want, rec.Code, rec.Body.String())
			if tt.wantErr != "" {
				assert.Contains(t, decode[ErrorResponse](t, rec).Error, tt.wantErr)
				return
			}
			resp := decode[ContactResponse](t, rec)
			assert.Equal(t, "c-1", resp.Contact.ID)
			assert.Equal(t, msgContactReceived, resp.Message)
		})
	}
}

func TestContactPage(t *testing.T) {
	env := newTestEnv(t)
	rec := env.do(t, http.MethodGet, "/contact", "")

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decode[ContactPageResponse](t, rec)
	assert.Equal(t, "0123 456 789", resp.Company.Phone)
	assert.True(t, resp.Services.Ready())
}
