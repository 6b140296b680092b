package session

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/apache/iceberg-go"
	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
)

const (
	KeySigV4Enabled  = "rest.sigv4-enabled"
	KeySigningRegion = "rest.signing-region"
	KeySigningName   = "rest.signing-name"

	DefaultSigningName = "execute-api"
)

func signingEnabled(props iceberg.Properties) bool {
	return strings.EqualFold(props[KeySigV4Enabled], "true")
}

// Signer adds AWS SigV4 headers to outgoing catalog requests.
type Signer struct {
	creds   aws.CredentialsProvider
	region  string
	service string
	signer  *v4.Signer
	now     func() time.Time
}

// NewSigner builds a Signer from the session properties. A nil provider
// resolves the default AWS credential chain, which also supplies the region
// when neither rest.signing-region nor fallbackRegion is set.
func NewSigner(ctx context.Context, props iceberg.Properties, creds aws.CredentialsProvider, fallbackRegion string) (*Signer, error) {
	region := props[KeySigningRegion]
	if region == "" {
		region = fallbackRegion
	}

	if creds == nil || region == "" {
		cfg, err := awsconfig.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: load aws config: %v", ErrInvalidConfiguration, err)
		}
		if creds == nil {
			creds = cfg.Credentials
		}
		if region == "" {
			region = cfg.Region
		}
	}
	if region == "" {
		return nil, fmt.Errorf("%w: %s is required for request signing", ErrInvalidConfiguration, KeySigningRegion)
	}

	service := props[KeySigningName]
	if service == "" {
		service = DefaultSigningName
	}

	return &Signer{
		creds:   creds,
		region:  region,
		service: service,
		signer:  v4.NewSigner(),
		now:     time.Now,
	}, nil
}

// Sign mutates req in place. Headers whose value changes during signing are
// preserved under "Original-<Name>".
func (s *Signer) Sign(req *http.Request) error {
	req.Header.Del("Connection")

	payload, err := readBody(req)
	if err != nil {
		return err
	}
	sum := sha256.Sum256(payload)

	creds, err := s.creds.Retrieve(req.Context())
	if err != nil {
		return fmt.Errorf("retrieve signing credentials: %w", err)
	}

	signed := req.Clone(req.Context())
	if err := s.signer.SignHTTP(req.Context(), creds, signed, hex.EncodeToString(sum[:]), s.service, s.region, s.now()); err != nil {
		return fmt.Errorf("sign request: %w", err)
	}

	relocated := http.Header{}
	for name, values := range req.Header {
		if sv, ok := signed.Header[name]; ok && !equalValues(sv, values) {
			relocated["Original-"+name] = values
		}
	}
	for name, values := range relocated {
		req.Header[name] = values
	}
	for name, values := range signed.Header {
		req.Header[name] = values
	}
	return nil
}

func readBody(req *http.Request) ([]byte, error) {
	if req.Body == nil || req.Body == http.NoBody {
		return nil, nil
	}
	b, err := io.ReadAll(req.Body)
	if err != nil {
		return nil, fmt.Errorf("read request body: %w", err)
	}
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(b))
	req.GetBody = func() (io.ReadCloser, error) {
		return io.NopCloser(bytes.NewReader(b)), nil
	}
	return b, nil
}

func equalValues(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// signingTransport signs every request just before it leaves, since
// credentials and headers can change between calls.
type signingTransport struct {
	next   http.RoundTripper
	signer *Signer
}

func (t *signingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	if err := t.signer.Sign(r); err != nil {
		return nil, err
	}
	return t.next.RoundTrip(r)
}
