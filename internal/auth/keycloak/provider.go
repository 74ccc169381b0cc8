// Package keycloak implements the Keycloak login exchange for the dashboard.
// The dashboard uses the resource-owner password grant: the login form posts
// credentials here, this package forwards them to the realm's token endpoint,
// and the resulting access token is handed back to the browser. Signature
// verification of the returned token is out of scope (see internal/auth).
package keycloak

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/log-dashboard/log-dashboard/internal/config"
	"golang.org/x/oauth2"
)

// Provider exchanges user credentials for tokens against one Keycloak realm.
type Provider struct {
	config *oauth2.Config
	client *http.Client
}

// NewProvider builds a Provider from the realm configuration.
func NewProvider(cfg *config.KeycloakConfig) (*Provider, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("keycloak realm URL is required")
	}
	if cfg.ClientID == "" {
		return nil, fmt.Errorf("keycloak client ID is required")
	}

	oauth2Config := &oauth2.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		Endpoint: oauth2.Endpoint{
			TokenURL: cfg.TokenURL(),
		},
	}

	return &Provider{
		config: oauth2Config,
		client: &http.Client{Timeout: 10 * time.Second},
	}, nil
}

// Login performs the password grant for the supplied credentials and returns
// the issued token set. Invalid credentials and unreachable realms both
// surface as errors from the token endpoint; callers treat either as a
// failed login rather than distinguishing them to the user.
func (p *Provider) Login(ctx context.Context, username, password string) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, p.client)

	token, err := p.config.PasswordCredentialsToken(ctx, username, password)
	if err != nil {
		return nil, fmt.Errorf("keycloak token exchange failed: %w", err)
	}
	return token, nil
}
