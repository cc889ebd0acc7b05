package handlers

import (
	"context"
	"html/template"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/render"
	"github.com/rs/zerolog"
	"golang.org/x/oauth2"

	"github.com/BruksfildServices01/clinic-scheduler/internal/httperr"
	"github.com/BruksfildServices01/clinic-scheduler/internal/httpresp"
	"github.com/BruksfildServices01/clinic-scheduler/internal/oauthstate"
)

// OAuthFlow is the part of *oauth2.Config the consent endpoints use.
type OAuthFlow interface {
	AuthCodeURL(state string, opts ...oauth2.AuthCodeOption) string
	Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error)
}

var callbackPage = template.Must(template.New("callback").Parse(`<html>
  <body>
    {{if .Error}}
    <h2>Authorization Failed</h2>
    <p>Error: {{.Error}}</p>
    {{else}}
    <h2>Authorization Successful!</h2>
    <p>Add this to your .env file:</p>
    <pre style="background: #f5f5f5; padding: 15px; border-radius: 5px;">GOOGLE_REFRESH_TOKEN={{.RefreshToken}}</pre>
    <p>You can close this window.</p>
    {{end}}
  </body>
</html>`))

type callbackView struct {
	RefreshToken string
	Error        string
}

// GoogleAuthHandler runs the one-time consent flow that yields the
// refresh token for calendar sync.
type GoogleAuthHandler struct {
	flow   OAuthFlow
	states *oauthstate.Signer
	log    zerolog.Logger
}

// NewGoogleAuthHandler takes a nil flow when OAuth is not configured.
func NewGoogleAuthHandler(flow OAuthFlow, states *oauthstate.Signer, log zerolog.Logger) *GoogleAuthHandler {
	return &GoogleAuthHandler{flow: flow, states: states, log: log}
}

func (h *GoogleAuthHandler) AuthURL(c *gin.Context) {
	if h.flow == nil {
		httperr.Internal(c, "calendar_not_configured", "Google OAuth is not configured (GOOGLE_CLIENT_ID / GOOGLE_CLIENT_SECRET).")
		return
	}

	state, err := h.states.Issue()
	if err != nil {
		h.log.Error().Err(err).Msg("issue oauth state")
		httperr.Internal(c, "internal_error", "Server error")
		return
	}

	url := h.flow.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.ApprovalForce)
	httpresp.Raw(c, http.StatusOK, gin.H{
		"authUrl": url,
		"message": "Visit this URL to authorize the application",
	})
}

func (h *GoogleAuthHandler) Callback(c *gin.Context) {
	if h.flow == nil {
		h.page(c, http.StatusInternalServerError, callbackView{Error: "Google OAuth is not configured"})
		return
	}

	if err := h.states.Verify(c.Query("state")); err != nil {
		h.log.Warn().Err(err).Msg("oauth callback with bad state")
		h.page(c, http.StatusBadRequest, callbackView{Error: "Invalid or expired state parameter"})
		return
	}

	code := c.Query("code")
	if code == "" {
		h.page(c, http.StatusBadRequest, callbackView{Error: "Authorization code not provided"})
		return
	}

	tok, err := h.flow.Exchange(c.Request.Context(), code)
	if err != nil {
		h.log.Error().Err(err).Msg("oauth code exchange failed")
		h.page(c, http.StatusInternalServerError, callbackView{Error: err.Error()})
		return
	}
	if tok.RefreshToken == "" {
		h.page(c, http.StatusInternalServerError, callbackView{
			Error: "No refresh token returned; revoke the app's access and try again",
		})
		return
	}

	h.log.Info().Msg("google oauth consent completed")
	h.page(c, http.StatusOK, callbackView{RefreshToken: tok.RefreshToken})
}

func (h *GoogleAuthHandler) page(c *gin.Context, status int, v callbackView) {
	c.Render(status, render.HTML{Template: callbackPage, Name: "callback", Data: v})
}
