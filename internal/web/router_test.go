package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/oauth2"

	"github.com/secretwall/secretwall/internal/auth"
	"github.com/secretwall/secretwall/internal/session"
	"github.com/secretwall/secretwall/internal/user"
	"github.com/secretwall/secretwall/internal/web"
	"github.com/secretwall/secretwall/internal/web/view"
)

type stubPinger struct {
	err error
}

func (p stubPinger) Ping(_ context.Context) error { return p.err }

// fakeProvider stands in for Google's token and userinfo endpoints.
func fakeProvider(t *testing.T, subject string) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/token", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"access_token": "test-access-token",
			"token_type":   "Bearer",
			"expires_in":   3600,
		})
	})
	mux.HandleFunc("/userinfo", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"id": subject, "name": "Fed User"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

type testApp struct {
	server *httptest.Server
	users  *user.MemoryRepository
}

func newTestApp(t *testing.T, googleSubject string) *testApp {
	t.Helper()

	users := user.NewMemoryRepository()
	sessions := session.NewManager(session.NewMemoryStore(), "test-session-secret", time.Hour, false)
	authService := auth.NewService(users, bcrypt.MinCost)

	provider := fakeProvider(t, googleSubject)
	broker := auth.NewGoogleBroker(auth.GoogleConfig{
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RedirectURL:  "http://localhost:3000/auth/google/secrets",
		Endpoint: oauth2.Endpoint{
			AuthURL:  provider.URL + "/auth",
			TokenURL: provider.URL + "/token",
		},
		UserinfoURL: provider.URL + "/userinfo",
	}, users)

	renderer, err := view.New()
	require.NoError(t, err)

	router := web.NewRouter(web.RouterDeps{
		Users:    users,
		Auth:     authService,
		Google:   broker,
		Sessions: sessions,
		Renderer: renderer,
		DB:       stubPinger{},
		Version:  "test",
	})

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{server: srv, users: users}
}

// client returns an HTTP client with a cookie jar that does not follow
// redirects, so tests can assert redirect targets.
func (a *testApp) client(t *testing.T) *http.Client {
	t.Helper()

	jar, err := cookiejar.New(nil)
	require.NoError(t, err)

	return &http.Client{
		Jar: jar,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func (a *testApp) get(t *testing.T, c *http.Client, path string) *http.Response {
	t.Helper()
	resp, err := c.Get(a.server.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (a *testApp) postForm(t *testing.T, c *http.Client, path string, form url.Values) *http.Response {
	t.Helper()
	resp, err := c.PostForm(a.server.URL+path, form)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func body(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func assertRedirect(t *testing.T, resp *http.Response, location string) {
	t.Helper()
	require.Equal(t, http.StatusFound, resp.StatusCode)
	assert.Equal(t, location, resp.Header.Get("Location"))
}

func credentials(username, password string) url.Values {
	return url.Values{"username": {username}, "password": {password}}
}

func TestHome_Renders(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	resp := app.get(t, c, "/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "Secret Wall")
}

func TestSubmitForm_RedirectsAnonymousHome(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	assertRedirect(t, app.get(t, c, "/submit"), "/")
}

func TestSubmitPost_AnonymousNeverWrites(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	resp := app.postForm(t, c, "/submit", url.Values{"secret": {"sneaky"}})
	assertRedirect(t, resp, "/")

	users, err := app.users.ListWithSecrets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, users)
}

func TestRegisterLoginSubmitScenario(t *testing.T) {
	app := newTestApp(t, "sub-1")

	// Register alice/pw1 on one client; the response carries a session.
	registerClient := app.client(t)
	assertRedirect(t, app.postForm(t, registerClient, "/register", credentials("alice", "pw1")), "/secrets")

	// Log in with the same credentials on a fresh client.
	c := app.client(t)
	assertRedirect(t, app.postForm(t, c, "/login", credentials("alice", "pw1")), "/secrets")

	// The submit form is now reachable.
	resp := app.get(t, c, "/submit")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	// Post a secret, then read it from the wall.
	assertRedirect(t, app.postForm(t, c, "/submit", url.Values{"secret": {"x"}}), "/secrets")

	page := body(t, app.get(t, c, "/secrets"))
	assert.Contains(t, page, ">x<")

	// Overwrite: the wall shows only the second value.
	assertRedirect(t, app.postForm(t, c, "/submit", url.Values{"secret": {"y"}}), "/secrets")

	page = body(t, app.get(t, c, "/secrets"))
	assert.Contains(t, page, ">y<")
	assert.NotContains(t, page, ">x<")

	users, err := app.users.ListWithSecrets(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "alice", users[0].Username)
	assert.Equal(t, "y", *users[0].Secret)
}

func TestRegister_DuplicateUsernameRedirectsBack(t *testing.T) {
	app := newTestApp(t, "sub-1")

	first := app.client(t)
	assertRedirect(t, app.postForm(t, first, "/register", credentials("alice", "pw1")), "/secrets")

	second := app.client(t)
	assertRedirect(t, app.postForm(t, second, "/register", credentials("alice", "pw2")), "/register")

	// The original credential still works.
	assertRedirect(t, app.postForm(t, second, "/login", credentials("alice", "pw1")), "/secrets")
}

func TestLogin_BadCredentialsRedirectsBack(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	assertRedirect(t, app.postForm(t, c, "/login", credentials("nobody", "pw")), "/login")
}

func TestLogout_DestroysSession(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	assertRedirect(t, app.postForm(t, c, "/register", credentials("alice", "pw1")), "/secrets")
	require.Equal(t, http.StatusOK, app.get(t, c, "/submit").StatusCode)

	assertRedirect(t, app.get(t, c, "/logout"), "/")

	// A subsequent request is anonymous again.
	assertRedirect(t, app.get(t, c, "/submit"), "/")
}

// googleCallback drives both legs of the federated flow and returns the
// callback response.
func googleCallback(t *testing.T, app *testApp, c *http.Client) *http.Response {
	t.Helper()

	resp := app.get(t, c, "/auth/google")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	authURL, err := url.Parse(resp.Header.Get("Location"))
	require.NoError(t, err)
	state := authURL.Query().Get("state")
	require.NotEmpty(t, state)
	assert.Contains(t, authURL.Query().Get("scope"), "profile")

	return app.get(t, c, "/auth/google/secrets?state="+url.QueryEscape(state)+"&code=auth-code")
}

func TestGoogleLogin_FirstCallbackCreatesUser(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	assertRedirect(t, googleCallback(t, app, c), "/secrets")

	// Exactly one record with the federated identity, no local credential.
	u, err := app.users.GetByGoogleID(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Nil(t, u.PasswordHash)

	// The session is live: the submit form is reachable.
	require.Equal(t, http.StatusOK, app.get(t, c, "/submit").StatusCode)
}

func TestGoogleLogin_KnownSubjectReusesRecord(t *testing.T) {
	app := newTestApp(t, "sub-1")

	first := app.client(t)
	assertRedirect(t, googleCallback(t, app, first), "/secrets")

	u1, err := app.users.GetByGoogleID(context.Background(), "sub-1")
	require.NoError(t, err)

	second := app.client(t)
	assertRedirect(t, googleCallback(t, app, second), "/secrets")

	u2, err := app.users.GetByGoogleID(context.Background(), "sub-1")
	require.NoError(t, err)
	assert.Equal(t, u1.ID, u2.ID)

	// Creating the same username again would collide, proving no duplicate
	// record was inserted.
	err = app.users.Create(context.Background(), &user.User{Username: u1.Username, GoogleID: u1.GoogleID})
	assert.ErrorIs(t, err, user.ErrDuplicateUsername)
}

func TestGoogleCallback_StateMismatchRedirectsToLogin(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	resp := app.get(t, c, "/auth/google")
	require.Equal(t, http.StatusFound, resp.StatusCode)

	resp = app.get(t, c, "/auth/google/secrets?state=forged&code=auth-code")
	assertRedirect(t, resp, "/login")
}

func TestGoogleCallback_WithoutStateCookieRedirectsToLogin(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	resp := app.get(t, c, "/auth/google/secrets?state=whatever&code=auth-code")
	assertRedirect(t, resp, "/login")
}

func TestSecretsPage_IsPublic(t *testing.T) {
	app := newTestApp(t, "sub-1")

	authed := app.client(t)
	assertRedirect(t, app.postForm(t, authed, "/register", credentials("alice", "pw1")), "/secrets")
	assertRedirect(t, app.postForm(t, authed, "/submit", url.Values{"secret": {"the wall is public"}}), "/secrets")

	anonymous := app.client(t)
	resp := app.get(t, anonymous, "/secrets")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, body(t, resp), "the wall is public")
}

func TestHealth(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	resp := app.get(t, c, "/health")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var data struct {
		Status   string `json:"status"`
		Database bool   `json:"database"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&data))
	assert.Equal(t, "healthy", data.Status)
	assert.True(t, data.Database)
}

func TestStatic_ServesStylesheet(t *testing.T) {
	app := newTestApp(t, "sub-1")
	c := app.client(t)

	resp := app.get(t, c, "/static/styles.css")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.True(t, strings.Contains(body(t, resp), "body"))
}
