package google

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/teemow/workspace-console/internal/apperr"
)

// OutOfBandRedirect is used by the CLI when no redirect URL is configured;
// the user pastes the authorization code back into the terminal.
const OutOfBandRedirect = "urn:ietf:wg:oauth:2.0:oob"

// UserOAuthConfig returns the OAuth2 configuration for the interactive user flow.
func UserOAuthConfig(clientID, clientSecret, redirectURL string) *oauth2.Config {
	if redirectURL == "" {
		redirectURL = OutOfBandRedirect
	}
	return &oauth2.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		Endpoint:     google.Endpoint,
		RedirectURL:  redirectURL,
		Scopes:       append([]string(nil), DefaultOAuthScopes...),
	}
}

// ExchangeAuthCode trades an authorization code for a user token.
// The token is returned to the caller and never persisted.
func ExchangeAuthCode(ctx context.Context, conf *oauth2.Config, code string) (*oauth2.Token, error) {
	if code == "" {
		return nil, apperr.Required("authCode")
	}
	tok, err := conf.Exchange(ctx, code)
	if err != nil {
		return nil, apperr.Auth("exchange authorization code", err)
	}
	return tok, nil
}

// NewBearerClient returns an HTTP client that authorizes every request with accessToken.
// The client is configured to use HTTP/1.1 to avoid HTTP/2 protocol errors, unless
// ctx already carries a base client under oauth2.HTTPClient.
func NewBearerClient(ctx context.Context, accessToken string, timeout time.Duration) *http.Client {
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"})
	client := oauth2.NewClient(ctx, ts)

	if _, custom := ctx.Value(oauth2.HTTPClient).(*http.Client); !custom {
		if transport, ok := client.Transport.(*oauth2.Transport); ok {
			transport.Base = &http.Transport{
				Proxy:             http.ProxyFromEnvironment,
				ForceAttemptHTTP2: false,
			}
		}
	}
	client.Timeout = timeout
	return client
}
