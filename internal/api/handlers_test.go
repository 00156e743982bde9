// Zero2prod - Newsletter Subscription Service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/zero2prod

package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/tomtom215/zero2prod/internal/auth"
	"github.com/tomtom215/zero2prod/internal/models"
	"github.com/tomtom215/zero2prod/internal/newsletter"
)

const testHMACSecret = "test-hmac-secret"

type fakeRegistrar struct {
	mu    sync.Mutex
	calls [][2]string
	err   error
}

func (f *fakeRegistrar) Subscribe(_ context.Context, name, email string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, [2]string{name, email})
	return f.err
}

type fakeConfirmer struct {
	tokens []string
	err    error
}

func (f *fakeConfirmer) Confirm(_ context.Context, token string) error {
	f.tokens = append(f.tokens, token)
	return f.err
}

type fakePublisher struct {
	creds  []auth.Credentials
	issues []models.NewsletterIssue
	err    error
	delay  time.Duration
}

func (f *fakePublisher) Publish(_ context.Context, creds auth.Credentials, issue models.NewsletterIssue) error {
	if f.delay > 0 {
		time.Sleep(f.delay)
	}
	f.creds = append(f.creds, creds)
	f.issues = append(f.issues, issue)
	return f.err
}

type fakeLogin struct {
	username, password string
	err                error
}

func (f *fakeLogin) Validate(_ context.Context, creds auth.Credentials, _ string) (uuid.UUID, error) {
	if f.err != nil {
		return uuid.Nil, f.err
	}
	if creds.Username != f.username || creds.Password != f.password {
		return uuid.Nil, &auth.AuthError{Kind: auth.AuthErrorInvalidPassword, Err: auth.ErrInvalidPassword}
	}
	return uuid.New(), nil
}

type testApp struct {
	registrar *fakeRegistrar
	confirmer *fakeConfirmer
	publisher *fakePublisher
	login     *fakeLogin
	server    http.Handler
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	return newTestAppWithMiddleware(t, NewChiMiddleware(&ChiMiddlewareConfig{RateLimitDisabled: true}))
}

func newTestAppWithMiddleware(t *testing.T, mw *ChiMiddleware) *testApp {
	t.Helper()
	app := &testApp{
		registrar: &fakeRegistrar{},
		confirmer: &fakeConfirmer{},
		publisher: &fakePublisher{},
		login:     &fakeLogin{username: "admin", password: "everythinghastostartsomewhere"},
	}
	h, err := NewHandler(HandlerDeps{
		Registrar: app.registrar,
		Confirmer: app.confirmer,
		Publisher: app.publisher,
		Login:     app.login,
		Flash:     NewFlashSigner(testHMACSecret),
	})
	if err != nil {
		t.Fatalf("NewHandler() error = %v", err)
	}
	app.server = NewRouter(h, mw, zerolog.Nop()).SetupChi()
	return app
}

func (a *testApp) do(req *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	a.server.ServeHTTP(rec, req)
	return rec
}

func formRequest(method, target, body string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

func basicAuth(user, pass string) string {
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(user+":"+pass))
}

func TestNewHandler_RequiresDependencies(t *testing.T) {
	t.Parallel()
	if _, err := NewHandler(HandlerDeps{}); err == nil {
		t.Error("expected error for missing dependencies")
	}
}

func TestHealthCheck(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/health_check", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
	if rec.Body.Len() != 0 {
		t.Errorf("body = %q, want empty", rec.Body.String())
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestSubscribe_ValidForm(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(formRequest(http.MethodPost, "/subscriptions", "name=le%20guin&email=ursula_le_guin%40gmail.com"))

	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201", rec.Code)
	}
	if len(app.registrar.calls) != 1 || app.registrar.calls[0] != [2]string{"le guin", "ursula_le_guin@gmail.com"} {
		t.Errorf("registrar calls = %v", app.registrar.calls)
	}
}

func TestSubscribe_MissingFields(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		body        string
		wantMessage string
	}{
		{"missing email", "name=le%20guin", "Failed to deserialize form body: missing field `email`"},
		{"missing name", "email=ursula_le_guin%40gmail.com", "Failed to deserialize form body: missing field `name`"},
		{"missing both", "", "Failed to deserialize form body: missing field `email`"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)

			rec := app.do(formRequest(http.MethodPost, "/subscriptions", tt.body))

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rec.Code)
			}
			if rec.Body.String() != tt.wantMessage {
				t.Errorf("body = %q, want %q", rec.Body.String(), tt.wantMessage)
			}
			if len(app.registrar.calls) != 0 {
				t.Error("registrar must not be called for malformed forms")
			}
		})
	}
}

func TestSubscribe_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"validation", &newsletter.SubscribeError{Kind: newsletter.SubscribeErrorValidation, Err: errors.New("name is invalid")}, http.StatusBadRequest},
		{"unexpected", &newsletter.SubscribeError{Kind: newsletter.SubscribeErrorUnexpected, Err: errors.New("db down")}, http.StatusInternalServerError},
		{"untyped", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)
			app.registrar.err = tt.err

			rec := app.do(formRequest(http.MethodPost, "/subscriptions", "name=&email=ursula_le_guin%40gmail.com"))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusInternalServerError && strings.Contains(rec.Body.String(), "db down") {
				t.Error("internal error details leaked to client")
			}
		})
	}
}

func TestConfirmSubscription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		target     string
		err        error
		wantStatus int
		wantBody   string
	}{
		{
			name:       "valid token",
			target:     "/subscriptions/confirm?subscription_token=abc123",
			wantStatus: http.StatusOK,
		},
		{
			name:       "missing token",
			target:     "/subscriptions/confirm",
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "unknown token",
			target:     "/subscriptions/confirm?subscription_token=nope",
			err:        &newsletter.ConfirmError{Kind: newsletter.ConfirmErrorUnknownToken, Err: newsletter.ErrUnknownToken},
			wantStatus: http.StatusUnauthorized,
			wantBody:   `{"error":"Invalid Token"}`,
		},
		{
			name:       "unexpected",
			target:     "/subscriptions/confirm?subscription_token=abc123",
			err:        &newsletter.ConfirmError{Kind: newsletter.ConfirmErrorUnexpected, Err: errors.New("db down")},
			wantStatus: http.StatusInternalServerError,
			wantBody:   `{"error":"Unexpected Error"}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)
			app.confirmer.err = tt.err

			rec := app.do(httptest.NewRequest(http.MethodGet, tt.target, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if tt.wantBody != "" {
				if got := strings.TrimSpace(rec.Body.String()); got != tt.wantBody {
					t.Errorf("body = %s, want %s", got, tt.wantBody)
				}
				if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
					t.Errorf("Content-Type = %q", ct)
				}
			}
		})
	}
}

const validIssueJSON = `{"title":"Newsletter title","content":{"html":"<p>Body</p>","text":"Body"}}`

func TestPublishNewsletter_Success(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/newsletters", strings.NewReader(validIssueJSON))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", basicAuth("admin", "pw"))
	rec := app.do(req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if len(app.publisher.issues) != 1 {
		t.Fatalf("publisher calls = %d", len(app.publisher.issues))
	}
	got := app.publisher.issues[0]
	if got.Title != "Newsletter title" || got.Content.HTML != "<p>Body</p>" || got.Content.Text != "Body" {
		t.Errorf("issue = %+v", got)
	}
	if app.publisher.creds[0] != (auth.Credentials{Username: "admin", Password: "pw"}) {
		t.Errorf("creds = %+v", app.publisher.creds[0])
	}
}

func TestPublishNewsletter_InvalidBody(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		body     string
		wantBody string
	}{
		{"missing title", `{"content":{"html":"<p>Body</p>","text":"Body"}}`, "title is required"},
		{"null title", `{"title":null,"content":{"html":"<p>Body</p>","text":"Body"}}`, "title is required"},
		{"missing content", `{"title":"Newsletter!"}`, "content is required"},
		{"missing html", `{"title":"Newsletter!","content":{"text":"Body"}}`, "content.html is required"},
		{"missing text", `{"title":"Newsletter!","content":{"html":"<p>Body</p>"}}`, "content.text is required"},
		{"not json", `title=Newsletter`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)

			req := httptest.NewRequest(http.MethodPost, "/newsletters", strings.NewReader(tt.body))
			req.Header.Set("Authorization", basicAuth("admin", "pw"))
			rec := app.do(req)

			if rec.Code != http.StatusUnprocessableEntity {
				t.Errorf("status = %d, want 422", rec.Code)
			}
			if !strings.HasPrefix(rec.Body.String(), "Failed to deserialize the JSON body: ") {
				t.Errorf("body = %q", rec.Body.String())
			}
			if tt.wantBody != "" && !strings.Contains(rec.Body.String(), tt.wantBody) {
				t.Errorf("body = %q, want it to mention %q", rec.Body.String(), tt.wantBody)
			}
			if len(app.publisher.issues) != 0 {
				t.Error("publisher called with invalid body")
			}
		})
	}
}

func TestPublishNewsletter_EmptyFieldsAccepted(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		body string
		want models.NewsletterIssue
	}{
		{
			name: "empty title",
			body: `{"title":"","content":{"html":"<p>x</p>","text":"x"}}`,
			want: models.NewsletterIssue{Content: models.IssueContent{HTML: "<p>x</p>", Text: "x"}},
		},
		{
			name: "text only",
			body: `{"title":"T","content":{"html":"","text":"plain only"}}`,
			want: models.NewsletterIssue{Title: "T", Content: models.IssueContent{Text: "plain only"}},
		},
		{
			name: "all empty",
			body: `{"title":"","content":{"html":"","text":""}}`,
			want: models.NewsletterIssue{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)

			req := httptest.NewRequest(http.MethodPost, "/newsletters", strings.NewReader(tt.body))
			req.Header.Set("Authorization", basicAuth("admin", "pw"))
			rec := app.do(req)

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200 (body %q)", rec.Code, rec.Body.String())
			}
			if len(app.publisher.issues) != 1 || app.publisher.issues[0] != tt.want {
				t.Errorf("issues = %+v, want [%+v]", app.publisher.issues, tt.want)
			}
		})
	}
}

func TestPublishNewsletter_OutlivesServerWriteTimeout(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	app.publisher.delay = 300 * time.Millisecond

	srv := httptest.NewUnstartedServer(app.server)
	srv.Config.WriteTimeout = 50 * time.Millisecond
	srv.Start()
	t.Cleanup(srv.Close)

	req, err := http.NewRequestWithContext(context.Background(), http.MethodPost, srv.URL+"/newsletters",
		strings.NewReader(`{"title":"T","content":{"html":"<p>x</p>","text":"x"}}`))
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Authorization", basicAuth("admin", "pw"))

	resp, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("publish slower than WriteTimeout lost its response: %v", err)
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("status = %d, want 200", resp.StatusCode)
	}
}

func TestPublishNewsletter_Unauthorized(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		header string
		err    error
	}{
		{"missing header", "", nil},
		{"not basic", "Bearer abc", nil},
		{"bad base64", "Basic !!!", nil},
		{"rejected credentials", basicAuth("admin", "wrong"),
			&newsletter.PublishError{Kind: newsletter.PublishErrorAuth, Err: &auth.AuthError{Kind: auth.AuthErrorInvalidPassword, Err: auth.ErrInvalidPassword}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)
			app.publisher.err = tt.err

			req := httptest.NewRequest(http.MethodPost, "/newsletters", strings.NewReader(validIssueJSON))
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := app.do(req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status = %d, want 401", rec.Code)
			}
			if got := rec.Header().Get("WWW-Authenticate"); got != `Basic realm="publish"` {
				t.Errorf("WWW-Authenticate = %q", got)
			}
		})
	}
}

func TestPublishNewsletter_ErrorMapping(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{"in progress", &newsletter.PublishError{Kind: newsletter.PublishErrorInProgress, Err: newsletter.ErrPublishInProgress}, http.StatusConflict},
		{"unexpected", &newsletter.PublishError{Kind: newsletter.PublishErrorUnexpected, Err: errors.New("postmark down")}, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)
			app.publisher.err = tt.err

			req := httptest.NewRequest(http.MethodPost, "/newsletters", strings.NewReader(validIssueJSON))
			req.Header.Set("Authorization", basicAuth("admin", "pw"))
			rec := app.do(req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if strings.Contains(rec.Body.String(), "postmark") {
				t.Error("internal error details leaked to client")
			}
		})
	}
}

func TestHome(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q", ct)
	}
}

func TestLogin_Success(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(formRequest(http.MethodPost, "/login", "username=admin&password=everythinghastostartsomewhere"))

	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/" {
		t.Errorf("Location = %q, want /", loc)
	}
}

func TestLogin_FailureRoundTrip(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	rec := app.do(formRequest(http.MethodPost, "/login", "username=admin&password=wrong"))
	if rec.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303", rec.Code)
	}
	loc, err := url.Parse(rec.Header().Get("Location"))
	if err != nil {
		t.Fatalf("bad Location: %v", err)
	}
	if loc.Path != "/login" || loc.Query().Get("error") != msgAuthenticationFailed || loc.Query().Get("tag") == "" {
		t.Fatalf("Location = %s", loc)
	}

	page := app.do(httptest.NewRequest(http.MethodGet, loc.String(), nil))
	if !strings.Contains(page.Body.String(), "<p><i>Authentication failed</i></p>") {
		t.Errorf("login page does not show the verified error:\n%s", page.Body.String())
	}
}

func TestLogin_UnexpectedError(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	app.login.err = errors.New("db down")

	rec := app.do(formRequest(http.MethodPost, "/login", "username=admin&password=x"))

	loc, _ := url.Parse(rec.Header().Get("Location"))
	if rec.Code != http.StatusSeeOther || loc.Query().Get("error") != msgLoginUnexpected {
		t.Errorf("status = %d, Location = %s", rec.Code, loc)
	}
}

func TestLoginForm_IgnoresUnsignedError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		query string
	}{
		{"no tag", "?error=Your+account+has+been+locked"},
		{"forged tag", "?error=Your+account+has+been+locked&tag=" + strings.Repeat("ab", 32)},
		{"non-hex tag", "?error=Your+account+has+been+locked&tag=zz"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			app := newTestApp(t)

			rec := app.do(httptest.NewRequest(http.MethodGet, "/login"+tt.query, nil))

			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d", rec.Code)
			}
			if strings.Contains(rec.Body.String(), "locked") {
				t.Error("unsigned error message rendered")
			}
		})
	}
}

func TestLoginForm_EscapesSignedMessage(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)
	signer := NewFlashSigner(testHMACSecret)

	rec := app.do(httptest.NewRequest(http.MethodGet, "/login?"+signer.RedirectQuery("<script>alert(1)</script>"), nil))

	body := rec.Body.String()
	if strings.Contains(body, "<script>") {
		t.Error("message was not HTML-escaped")
	}
	if !strings.Contains(body, "&lt;script&gt;") {
		t.Errorf("escaped message missing:\n%s", body)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	t.Parallel()
	app := newTestApp(t)

	app.do(httptest.NewRequest(http.MethodGet, "/health_check", nil))
	rec := app.do(httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "api_requests_total") {
		t.Error("api_requests_total not exposed")
	}
}

func TestLogin_RateLimited(t *testing.T) {
	t.Parallel()
	app := newTestAppWithMiddleware(t, NewChiMiddleware(&ChiMiddlewareConfig{
		LoginRateLimitRequests: 2,
		LoginRateLimitWindow:   time.Minute,
	}))

	attempt := func() int {
		req := formRequest(http.MethodPost, "/login", "username=admin&password=wrong")
		req.RemoteAddr = "203.0.113.7:4000"
		return app.do(req).Code
	}

	for i := 0; i < 2; i++ {
		if code := attempt(); code != http.StatusSeeOther {
			t.Fatalf("attempt %d: status = %d, want 303", i+1, code)
		}
	}
	if code := attempt(); code != http.StatusTooManyRequests {
		t.Errorf("status = %d, want 429 once the limit is reached", code)
	}

	other := formRequest(http.MethodPost, "/login", "username=admin&password=wrong")
	other.RemoteAddr = "198.51.100.9:4000"
	if code := app.do(other).Code; code != http.StatusSeeOther {
		t.Errorf("other client status = %d, want 303", code)
	}
}
