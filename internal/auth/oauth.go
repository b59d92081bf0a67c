// AngelaMos | 2026
// oauth.go

package auth

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/facebook"
	"golang.org/x/oauth2/google"

	"github.com/carterperez-dev/enhancify/internal/config"
	"github.com/carterperez-dev/enhancify/internal/core"
	"github.com/carterperez-dev/enhancify/internal/middleware"
)

const (
	oauthStateCookie = "oauth_state"
	oauthStateTTL    = 10 * time.Minute

	googleUserInfoURL   = "https://www.googleapis.com/oauth2/v3/userinfo"
	facebookUserInfoURL = "https://graph.facebook.com/me?fields=id,name,email,first_name,last_name,picture.type(large)"
)

// ProfileFetcher turns an exchanged token into the provider's view of the user.
type ProfileFetcher func(ctx context.Context, client *http.Client) (OAuthProfile, error)

type OAuthProvider struct {
	Name    string
	Config  *oauth2.Config
	Profile ProfileFetcher
}

// NewOAuthProviders builds the providers that have credentials configured.
func NewOAuthProviders(cfg config.OAuthConfig, publicURL string) map[string]*OAuthProvider {
	base := strings.TrimRight(publicURL, "/") + "/v1/auth/oauth/"
	providers := make(map[string]*OAuthProvider)

	if cfg.Google.Enabled() {
		providers[providerGoogle] = &OAuthProvider{
			Name: providerGoogle,
			Config: &oauth2.Config{
				ClientID:     cfg.Google.ClientID,
				ClientSecret: cfg.Google.ClientSecret,
				Endpoint:     google.Endpoint,
				RedirectURL:  base + providerGoogle + "/callback",
				Scopes:       []string{"openid", "email", "profile"},
			},
			Profile: fetchGoogleProfile,
		}
	}

	if cfg.Facebook.Enabled() {
		providers[providerFacebook] = &OAuthProvider{
			Name: providerFacebook,
			Config: &oauth2.Config{
				ClientID:     cfg.Facebook.ClientID,
				ClientSecret: cfg.Facebook.ClientSecret,
				Endpoint:     facebook.Endpoint,
				RedirectURL:  base + providerFacebook + "/callback",
				Scopes:       []string{"email", "public_profile"},
			},
			Profile: fetchFacebookProfile,
		}
	}

	return providers
}

const (
	providerGoogle   = "google"
	providerFacebook = "facebook"
)

type OAuthHandler struct {
	service   *Service
	providers map[string]*OAuthProvider
	cookie    middleware.SessionCookie
	clientURL string
	logger    *slog.Logger
}

func NewOAuthHandler(
	service *Service,
	providers map[string]*OAuthProvider,
	cookie middleware.SessionCookie,
	clientURL string,
	logger *slog.Logger,
) *OAuthHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &OAuthHandler{
		service:   service,
		providers: providers,
		cookie:    cookie,
		clientURL: strings.TrimRight(clientURL, "/"),
		logger:    logger,
	}
}

func (h *OAuthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/auth/oauth/{provider}", h.Begin)
	r.Get("/auth/oauth/{provider}/callback", h.Callback)
}

func (h *OAuthHandler) Begin(w http.ResponseWriter, r *http.Request) {
	provider, ok := h.providers[chi.URLParam(r, "provider")]
	if !ok {
		core.NotFound(w, "oauth provider")
		return
	}

	state, err := core.GenerateSecureToken(24)
	if err != nil {
		core.InternalServerError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    state,
		Path:     "/v1/auth/oauth",
		MaxAge:   int(oauthStateTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.Secure,
		SameSite: http.SameSiteLaxMode,
	})

	http.Redirect(w, r, provider.Config.AuthCodeURL(state), http.StatusFound)
}

func (h *OAuthHandler) Callback(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "provider")
	provider, ok := h.providers[name]
	if !ok {
		core.NotFound(w, "oauth provider")
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     oauthStateCookie,
		Value:    "",
		Path:     "/v1/auth/oauth",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.Secure,
	})

	if !validState(r) {
		h.fail(w, r, name, errors.New("oauth state mismatch"))
		return
	}

	if errParam := r.URL.Query().Get("error"); errParam != "" {
		h.fail(w, r, name, fmt.Errorf("provider denied: %s", errParam))
		return
	}

	ctx := r.Context()

	token, err := provider.Config.Exchange(ctx, r.URL.Query().Get("code"))
	if err != nil {
		h.fail(w, r, name, fmt.Errorf("exchange code: %w", err))
		return
	}

	profile, err := provider.Profile(ctx, provider.Config.Client(ctx, token))
	if err != nil {
		h.fail(w, r, name, fmt.Errorf("fetch profile: %w", err))
		return
	}
	profile.Provider = name

	result, err := h.service.OAuthSignin(ctx, profile, ClientMeta{
		UserAgent:     r.UserAgent(),
		IPAddress:     middleware.ClientIP(r),
		PreviousToken: h.cookie.Token(r),
	})
	if err != nil {
		if errors.Is(err, core.ErrAccountBlocked) {
			h.cookie.Clear(w)
			http.Redirect(w, r, h.clientURL+"/login?error=account_blocked", http.StatusFound)
			return
		}
		h.fail(w, r, name, err)
		return
	}

	h.cookie.Set(w, result.Token)
	http.Redirect(w, r, h.clientURL+"/dashboard", http.StatusFound)
}

func (h *OAuthHandler) fail(w http.ResponseWriter, r *http.Request, provider string, err error) {
	h.logger.Warn("oauth sign in failed", "provider", provider, "error", err)
	http.Redirect(w, r, h.clientURL+"/login?error=oauth_failed", http.StatusFound)
}

func validState(r *http.Request) bool {
	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" {
		return false
	}
	state := r.URL.Query().Get("state")
	return subtle.ConstantTimeCompare([]byte(cookie.Value), []byte(state)) == 1
}

func fetchGoogleProfile(ctx context.Context, client *http.Client) (OAuthProfile, error) {
	var body struct {
		Sub        string `json:"sub"`
		Email      string `json:"email"`
		Name       string `json:"name"`
		GivenName  string `json:"given_name"`
		FamilyName string `json:"family_name"`
		Picture    string `json:"picture"`
	}
	if err := getJSON(ctx, client, googleUserInfoURL, &body); err != nil {
		return OAuthProfile{}, err
	}
	if body.Sub == "" {
		return OAuthProfile{}, errors.New("google profile without subject")
	}

	return OAuthProfile{
		ProviderID:     body.Sub,
		Email:          strings.ToLower(body.Email),
		FirstName:      body.GivenName,
		LastName:       body.FamilyName,
		Username:       body.Name,
		ProfilePicture: body.Picture,
	}, nil
}

func fetchFacebookProfile(ctx context.Context, client *http.Client) (OAuthProfile, error) {
	var body struct {
		ID        string `json:"id"`
		Name      string `json:"name"`
		Email     string `json:"email"`
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Picture   struct {
			Data struct {
				URL string `json:"url"`
			} `json:"data"`
		} `json:"picture"`
	}
	if err := getJSON(ctx, client, facebookUserInfoURL, &body); err != nil {
		return OAuthProfile{}, err
	}
	if body.ID == "" {
		return OAuthProfile{}, errors.New("facebook profile without id")
	}

	return OAuthProfile{
		ProviderID:     body.ID,
		Email:          strings.ToLower(body.Email),
		FirstName:      body.FirstName,
		LastName:       body.LastName,
		Username:       body.Name,
		ProfilePicture: body.Picture.Data.URL,
	}, nil
}

func getJSON(ctx context.Context, client *http.Client, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("build profile request: %w", err)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("profile request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("profile request: status %d: %s", resp.StatusCode, snippet)
	}

	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(out); err != nil {
		return fmt.Errorf("decode profile: %w", err)
	}

	return nil
}
