package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/BruksfildServices01/clinic-scheduler/internal/oauthstate"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeFlow struct {
	token *oauth2.Token
	err   error
	codes []string
}

func (f *fakeFlow) AuthCodeURL(state string, _ ...oauth2.AuthCodeOption) string {
	return "https://accounts.example/auth?state=" + url.QueryEscape(state)
}

func (f *fakeFlow) Exchange(_ context.Context, code string, _ ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	f.codes = append(f.codes, code)
	if f.err != nil {
		return nil, f.err
	}
	return f.token, nil
}

func authEngine(flow OAuthFlow, signer *oauthstate.Signer) *gin.Engine {
	h := NewGoogleAuthHandler(flow, signer, zerolog.Nop())
	r := gin.New()
	r.GET("/auth", h.AuthURL)
	r.GET("/callback", h.Callback)
	return r
}

func get(r http.Handler, path string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestGoogleAuthURLCarriesVerifiableState(t *testing.T) {
	signer := oauthstate.NewSigner("secret", time.Minute)
	r := authEngine(&fakeFlow{}, signer)

	rec := get(r, "/auth")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}

	var body struct {
		Success bool   `json:"success"`
		AuthURL string `json:"authUrl"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}

	u, err := url.Parse(body.AuthURL)
	if err != nil {
		t.Fatalf("parse authUrl: %v", err)
	}
	if err := signer.Verify(u.Query().Get("state")); err != nil {
		t.Errorf("state does not verify: %v", err)
	}
}

func TestGoogleCallback(t *testing.T) {
	signer := oauthstate.NewSigner("secret", time.Minute)
	state, err := signer.Issue()
	if err != nil {
		t.Fatalf("issue state: %v", err)
	}
	foreign, _ := oauthstate.NewSigner("other", time.Minute).Issue()

	tests := []struct {
		name     string
		flow     OAuthFlow
		query    string
		status   int
		contains string
	}{
		{
			name:     "not configured",
			flow:     nil,
			query:    "?code=abc&state=" + state,
			status:   http.StatusInternalServerError,
			contains: "not configured",
		},
		{
			name:     "forged state",
			flow:     &fakeFlow{token: &oauth2.Token{RefreshToken: "r"}},
			query:    "?code=abc&state=" + foreign,
			status:   http.StatusBadRequest,
			contains: "Invalid or expired state",
		},
		{
			name:     "missing code",
			flow:     &fakeFlow{token: &oauth2.Token{RefreshToken: "r"}},
			query:    "?state=" + state,
			status:   http.StatusBadRequest,
			contains: "Authorization code not provided",
		},
		{
			name:     "exchange fails",
			flow:     &fakeFlow{err: errors.New("invalid_grant")},
			query:    "?code=abc&state=" + state,
			status:   http.StatusInternalServerError,
			contains: "invalid_grant",
		},
		{
			name:     "no refresh token",
			flow:     &fakeFlow{token: &oauth2.Token{AccessToken: "a"}},
			query:    "?code=abc&state=" + state,
			status:   http.StatusInternalServerError,
			contains: "No refresh token",
		},
		{
			name:     "success",
			flow:     &fakeFlow{token: &oauth2.Token{AccessToken: "a", RefreshToken: "1//refresh"}},
			query:    "?code=abc&state=" + state,
			status:   http.StatusOK,
			contains: "GOOGLE_REFRESH_TOKEN=1//refresh",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := get(authEngine(tt.flow, signer), "/callback"+tt.query)

			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d; body = %s", rec.Code, tt.status, rec.Body.String())
			}
			if !strings.Contains(rec.Body.String(), tt.contains) {
				t.Errorf("body %q does not contain %q", rec.Body.String(), tt.contains)
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
				t.Errorf("content type = %q", ct)
			}
		})
	}
}
