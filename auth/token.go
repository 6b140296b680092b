// Package auth exchanges OAuth2 client credentials for catalog bearer tokens.
package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/apache/iceberg-go"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/xixipi-lining/iceberg-rest-client/resterr"
)

const (
	KeyAuthURL    = "rest.authorization-url"
	KeyScope      = "scope"
	KeyToken      = "token"
	KeyCredential = "credential"

	DefaultScope = "catalog"
	TokensPath   = "oauth/tokens"
)

// Token is an access token issued by the catalog's token endpoint.
type Token struct {
	AccessToken     string
	TokenType       string
	Expiry          time.Time
	RefreshToken    string
	Scope           string
	IssuedTokenType string
}

// Client performs the client-credentials grant against a token endpoint.
type Client struct {
	httpClient *http.Client
	url        string
	scope      string
}

// NewClient returns a token Client posting to tokenURL through httpClient.
// An empty scope falls back to DefaultScope.
func NewClient(httpClient *http.Client, tokenURL, scope string) *Client {
	if scope == "" {
		scope = DefaultScope
	}
	return &Client{httpClient: httpClient, url: tokenURL, scope: scope}
}

// URL is the token endpoint this client posts to.
func (c *Client) URL() string {
	return c.url
}

// ParseCredential splits "clientId:secret" at the first colon. A credential
// without a colon is a bare secret.
func ParseCredential(credential string) (clientID, secret string) {
	if id, sec, ok := strings.Cut(credential, ":"); ok {
		return id, sec
	}
	return "", credential
}

// FetchToken exchanges credential for an access token.
func (c *Client) FetchToken(ctx context.Context, credential string) (*Token, error) {
	clientID, secret := ParseCredential(credential)
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: secret,
		TokenURL:     c.url,
		Scopes:       []string{c.scope},
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	tok, err := cfg.Token(context.WithValue(ctx, oauth2.HTTPClient, c.httpClient))
	if err != nil {
		var rErr *oauth2.RetrieveError
		if errors.As(err, &rErr) && rErr.Response != nil {
			return nil, resterr.FromResponse(rErr.Response.StatusCode, rErr.Body, resterr.TokenOverrides)
		}
		return nil, fmt.Errorf("fetch token from %s: %w", c.url, err)
	}

	return &Token{
		AccessToken:     tok.AccessToken,
		TokenType:       tok.TokenType,
		Expiry:          tok.Expiry,
		RefreshToken:    tok.RefreshToken,
		Scope:           extraString(tok, "scope"),
		IssuedTokenType: extraString(tok, "issued_token_type"),
	}, nil
}

func extraString(tok *oauth2.Token, key string) string {
	if v, ok := tok.Extra(key).(string); ok {
		return v
	}
	return ""
}

// ResolveURL picks the token endpoint: the explicit authorization URL when
// configured, otherwise the unprefixed tokens path under baseURI.
func ResolveURL(props iceberg.Properties, baseURI string) string {
	if u := props[KeyAuthURL]; u != "" {
		return u
	}
	return strings.TrimSuffix(baseURI, "/") + "/v1/" + TokensPath
}
