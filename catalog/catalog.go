// Package catalog is a client for the Iceberg REST catalog protocol.
//
// A Catalog bootstraps its configuration from the server, then issues every
// namespace and table operation through an authenticated session. Operations
// that fail because the bearer token expired are retried once after the
// token has been refreshed.
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"net/http"
	"net/url"
	"strings"

	"github.com/apache/iceberg-go"
	iceio "github.com/apache/iceberg-go/io"

	"github.com/xixipi-lining/iceberg-rest-client/logger"
	"github.com/xixipi-lining/iceberg-rest-client/resterr"
	"github.com/xixipi-lining/iceberg-rest-client/session"
)

// FileIOLoader builds the file-access provider for a table. props is the
// union of the table metadata properties and the config returned with it;
// location is the table's current metadata file.
type FileIOLoader func(ctx context.Context, props iceberg.Properties, location string) (iceio.IO, error)

func defaultFileIO(ctx context.Context, props iceberg.Properties, location string) (iceio.IO, error) {
	return iceio.LoadFS(ctx, props, location)
}

type options struct {
	log      logger.Logger
	sessOpts []session.Option
	fileIO   FileIOLoader
}

type Option func(*options)

func WithLogger(l logger.Logger) Option {
	return func(o *options) { o.log = l }
}

// WithSessionOptions passes options through to every session the catalog
// creates.
func WithSessionOptions(opts ...session.Option) Option {
	return func(o *options) { o.sessOpts = append(o.sessOpts, opts...) }
}

func WithFileIO(loader FileIOLoader) Option {
	return func(o *options) { o.fileIO = loader }
}

// Catalog is safe for concurrent use.
type Catalog struct {
	name    string
	props   iceberg.Properties
	uri     string
	base    string
	session *session.Session
	log     logger.Logger
	fileIO  FileIOLoader
}

// NewCatalog fetches the server config document, merges it with props and
// opens the session every later call goes through.
func NewCatalog(ctx context.Context, name string, props iceberg.Properties, opts ...Option) (*Catalog, error) {
	o := options{log: logger.Nop(), fileIO: defaultFileIO}
	for _, opt := range opts {
		opt(&o)
	}
	sessOpts := append([]session.Option{session.WithLogger(o.log)}, o.sessOpts...)

	uri := strings.TrimSuffix(props[KeyURI], "/")
	if uri == "" {
		return nil, ErrMissingURI
	}

	bootstrap, err := session.New(ctx, uri, props, sessOpts...)
	if err != nil {
		return nil, err
	}
	cfg, err := fetchConfig(ctx, bootstrap, uri, props[KeyWarehouse])
	if err != nil {
		return nil, err
	}

	merged := MergeProperties(cfg.Defaults, props, cfg.Overrides)
	if u := strings.TrimSuffix(merged[KeyURI], "/"); u != "" {
		uri = u
	}
	merged[KeyURI] = uri

	sess, err := session.New(ctx, uri, merged, sessOpts...)
	if err != nil {
		return nil, err
	}

	c := &Catalog{
		name:    name,
		props:   merged,
		uri:     uri,
		base:    uri + "/v1",
		session: sess,
		log:     o.log.WithField("catalog", name),
		fileIO:  o.fileIO,
	}
	if prefix := strings.Trim(merged[KeyPrefix], "/"); prefix != "" {
		c.base += "/" + prefix
	}

	c.log.Info("catalog initialized", logger.F("uri", uri), logger.F("prefix", merged[KeyPrefix]))
	return c, nil
}

func fetchConfig(ctx context.Context, sess *session.Session, uri, warehouse string) (configResponse, error) {
	endpoint := uri + "/v1/config"
	if warehouse != "" {
		endpoint += "?" + url.Values{KeyWarehouse: {warehouse}}.Encode()
	}

	var cfg configResponse
	if _, err := send(ctx, sess.Client(), http.MethodGet, endpoint, nil, &cfg, nil); err != nil {
		return configResponse{}, fmt.Errorf("fetch catalog config: %w", err)
	}
	return cfg, nil
}

func (c *Catalog) Name() string {
	return c.name
}

// Properties returns a copy of the merged catalog properties.
func (c *Catalog) Properties() iceberg.Properties {
	return maps.Clone(c.props)
}

// URI is the base catalog URI after config bootstrap.
func (c *Catalog) URI() string {
	return c.uri
}

func (c *Catalog) Session() *session.Session {
	return c.session
}

// endpoint joins escaped path segments under the prefixed base.
func (c *Catalog) endpoint(segments ...string) string {
	return c.base + "/" + strings.Join(segments, "/")
}

func (c *Catalog) do(ctx context.Context, method, endpoint string, body, out any, overrides resterr.Overrides) (int, error) {
	return send(ctx, c.session.Client(), method, endpoint, body, out, overrides)
}

// send issues one request. Non-2xx responses are mapped through overrides;
// a 2xx body that does not decode into out is a protocol error.
func send(ctx context.Context, client *http.Client, method, endpoint string, body, out any, overrides resterr.Overrides) (int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, resterr.FromResponse(resp.StatusCode, data, overrides)
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return resp.StatusCode, resterr.New(resterr.ErrRESTProtocol, resp.StatusCode,
				"Received unexpected JSON Payload: %s, errors: %v", data, err)
		}
	}
	return resp.StatusCode, nil
}
