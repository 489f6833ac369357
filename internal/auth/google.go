package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/secretwall/secretwall/internal/user"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v2/userinfo"

// ErrProfileUnavailable is returned when the provider's userinfo endpoint
// does not yield a usable profile.
var ErrProfileUnavailable = errors.New("federated profile unavailable")

// GoogleConfig configures the federated identity broker. Endpoint and
// UserinfoURL default to Google's and are overridable so tests can point at
// a fake provider.
type GoogleConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Endpoint     oauth2.Endpoint
	UserinfoURL  string
}

// GoogleProfile is the subset of the userinfo response the broker consumes.
// With the profile scope only, no email address is available.
type GoogleProfile struct {
	Subject string `json:"id"`
	Name    string `json:"name"`
}

// GoogleBroker brokers the OAuth2 handshake with Google and maps the
// asserted profile to a local user record, creating one on first sight.
type GoogleBroker struct {
	oauth       *oauth2.Config
	users       user.Repository
	userinfoURL string
}

// NewGoogleBroker creates a broker over the given user repository.
func NewGoogleBroker(cfg GoogleConfig, users user.Repository) *GoogleBroker {
	endpoint := cfg.Endpoint
	if endpoint.AuthURL == "" {
		endpoint = google.Endpoint
	}
	userinfoURL := cfg.UserinfoURL
	if userinfoURL == "" {
		userinfoURL = googleUserinfoURL
	}

	return &GoogleBroker{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"profile"},
			Endpoint:     endpoint,
		},
		users:       users,
		userinfoURL: userinfoURL,
	}
}

// AuthCodeURL returns the provider authorization URL carrying the given
// anti-forgery state.
func (b *GoogleBroker) AuthCodeURL(state string) string {
	return b.oauth.AuthCodeURL(state)
}

// Exchange trades the callback authorization code for a token.
func (b *GoogleBroker) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	tok, err := b.oauth.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("exchanging authorization code: %w", err)
	}
	return tok, nil
}

// FetchProfile retrieves the authenticated profile from the userinfo endpoint.
func (b *GoogleBroker) FetchProfile(ctx context.Context, tok *oauth2.Token) (*GoogleProfile, error) {
	client := b.oauth.Client(ctx, tok)

	resp, err := client.Get(b.userinfoURL)
	if err != nil {
		return nil, fmt.Errorf("fetching userinfo: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo returned status %d: %w", resp.StatusCode, ErrProfileUnavailable)
	}

	var profile GoogleProfile
	if err := json.NewDecoder(resp.Body).Decode(&profile); err != nil {
		return nil, fmt.Errorf("decoding userinfo: %w", err)
	}
	if profile.Subject == "" {
		return nil, ErrProfileUnavailable
	}

	return &profile, nil
}

// FindOrCreate maps a federated profile to a local user record. A subject id
// seen for the first time creates a user with only the Google identity set;
// a known subject id attaches to the existing record.
func (b *GoogleBroker) FindOrCreate(ctx context.Context, profile *GoogleProfile) (*user.User, error) {
	u, err := b.users.GetByGoogleID(ctx, profile.Subject)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, user.ErrUserNotFound) {
		return nil, fmt.Errorf("finding user by google id: %w", err)
	}

	googleID := profile.Subject
	u = &user.User{
		Username: "google-" + profile.Subject,
		GoogleID: &googleID,
	}

	if err := b.users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrDuplicateUsername) {
			// Lost a race with a concurrent callback for the same subject.
			return b.users.GetByGoogleID(ctx, profile.Subject)
		}
		return nil, fmt.Errorf("creating federated user: %w", err)
	}

	return u, nil
}
