// Package session owns the long-lived HTTP transport used to talk to a REST
// catalog: TLS material, default headers, the bearer token and optional
// request signing.
package session

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/apache/iceberg-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	"golang.org/x/sync/singleflight"

	"github.com/xixipi-lining/iceberg-rest-client/auth"
	"github.com/xixipi-lining/iceberg-rest-client/logger"
)

const (
	KeyCABundle   = "ssl.cabundle"
	KeyClientCert = "ssl.client.cert"
	KeyClientKey  = "ssl.client.key"
	KeyTimeout    = "rest.timeout"
	HeaderPrefix  = "header."

	// ClientVersion is the REST protocol version this client speaks.
	ClientVersion = "0.14.1"
	UserAgent     = "iceberg-rest-client/0.1.0"
)

var ErrInvalidConfiguration = errors.New("invalid session configuration")

type options struct {
	log       logger.Logger
	transport http.RoundTripper
	creds     aws.CredentialsProvider
	region    string
}

type Option func(*options)

// WithLogger sets the logger used for request tracing.
func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithTransport replaces the base round tripper. TLS properties are ignored
// when a transport is supplied.
func WithTransport(rt http.RoundTripper) Option {
	return func(o *options) { o.transport = rt }
}

// WithCredentialsProvider sets the provider used for request signing instead
// of the default AWS credential chain.
func WithCredentialsProvider(p aws.CredentialsProvider) Option {
	return func(o *options) { o.creds = p }
}

// WithRegion sets the signing region used when rest.signing-region is unset.
func WithRegion(region string) Option {
	return func(o *options) { o.region = region }
}

// Session is safe for concurrent use. Token reads and writes are serialized
// by mu; concurrent refreshes are coalesced.
type Session struct {
	props   iceberg.Properties
	headers http.Header
	client  *http.Client
	tokens  *auth.Client
	log     logger.Logger

	mu    sync.RWMutex
	token string

	refresh singleflight.Group
}

// New builds a session for the catalog at baseURI and resolves the initial
// bearer token.
func New(ctx context.Context, baseURI string, props iceberg.Properties, opts ...Option) (*Session, error) {
	o := options{log: logger.Nop()}
	for _, opt := range opts {
		opt(&o)
	}

	base := o.transport
	if base == nil {
		tlsCfg, err := tlsConfig(props)
		if err != nil {
			return nil, err
		}
		t := http.DefaultTransport.(*http.Transport).Clone()
		t.TLSClientConfig = tlsCfg
		base = t
	}

	var timeout time.Duration
	if v := props[KeyTimeout]; v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrInvalidConfiguration, KeyTimeout, err)
		}
		timeout = d
	}

	s := &Session{
		props:   props,
		headers: defaultHeaders(props),
		log:     o.log.WithField("component", "session"),
	}

	rt := &loggingTransport{next: base, log: s.log}
	if signingEnabled(props) {
		signer, err := NewSigner(ctx, props, o.creds, o.region)
		if err != nil {
			return nil, err
		}
		rt.next = &signingTransport{next: base, signer: signer}
	}

	s.client = &http.Client{
		Transport: &headerTransport{next: rt, session: s},
		Timeout:   timeout,
	}
	s.tokens = auth.NewClient(s.client, auth.ResolveURL(props, baseURI), props[auth.KeyScope])

	if err := s.resolveToken(ctx, true); err != nil {
		return nil, err
	}
	return s, nil
}

// Client is the HTTP client all catalog requests go through.
func (s *Session) Client() *http.Client {
	return s.client
}

// Token returns the current bearer token, empty when unauthenticated.
func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// SetToken replaces the bearer token.
func (s *Session) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// Headers returns a copy of the default request headers.
func (s *Session) Headers() http.Header {
	return s.headers.Clone()
}

// RefreshToken re-runs token resolution in place. Concurrent callers share a
// single exchange.
func (s *Session) RefreshToken(ctx context.Context) error {
	_, err, _ := s.refresh.Do("token", func() (any, error) {
		return nil, s.resolveToken(ctx, false)
	})
	return err
}

// resolveToken applies, in order: a static token (initial resolution only),
// a credential exchange, or nothing. On refresh the credential wins since the
// static token is what just expired.
func (s *Session) resolveToken(ctx context.Context, initial bool) error {
	static := s.props[auth.KeyToken]
	credential, hasCredential := s.props[auth.KeyCredential]

	switch {
	case initial && static != "":
		s.SetToken(static)
	case hasCredential:
		tok, err := s.tokens.FetchToken(ctx, credential)
		if err != nil {
			return err
		}
		s.SetToken(tok.AccessToken)
		s.log.Debug("fetched access token", logger.F("url", s.tokens.URL()), logger.F("scope", tok.Scope))
	case static != "":
		s.SetToken(static)
	}
	return nil
}

func defaultHeaders(props iceberg.Properties) http.Header {
	h := http.Header{}
	h.Set("Content-Type", "application/json")
	h.Set("X-Client-Version", ClientVersion)
	h.Set("User-Agent", UserAgent)
	h.Set("X-Iceberg-Access-Delegation", "vended-credentials")

	for k, v := range props {
		if name, ok := strings.CutPrefix(k, HeaderPrefix); ok && name != "" {
			h.Set(name, v)
		}
	}
	return h
}

func tlsConfig(props iceberg.Properties) (*tls.Config, error) {
	cfg := &tls.Config{MinVersion: tls.VersionTLS12}

	if bundle := props[KeyCABundle]; bundle != "" {
		pem, err := os.ReadFile(bundle)
		if err != nil {
			return nil, fmt.Errorf("%w: read %s: %v", ErrInvalidConfiguration, KeyCABundle, err)
		}
		pool := x509.NewCertPool()
		if !pool.AppendCertsFromPEM(pem) {
			return nil, fmt.Errorf("%w: %s contains no PEM certificates", ErrInvalidConfiguration, bundle)
		}
		cfg.RootCAs = pool
	}

	cert, key := props[KeyClientCert], props[KeyClientKey]
	switch {
	case cert == "" && key == "":
	case cert == "" || key == "":
		return nil, fmt.Errorf("%w: %s and %s must be set together", ErrInvalidConfiguration, KeyClientCert, KeyClientKey)
	default:
		pair, err := tls.LoadX509KeyPair(cert, key)
		if err != nil {
			return nil, fmt.Errorf("%w: load client certificate: %v", ErrInvalidConfiguration, err)
		}
		cfg.Certificates = []tls.Certificate{pair}
	}

	return cfg, nil
}
