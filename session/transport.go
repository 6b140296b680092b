package session

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/xixipi-lining/iceberg-rest-client/logger"
)

// headerTransport applies the session's default headers and bearer token.
// Headers already present on the request win.
type headerTransport struct {
	next    http.RoundTripper
	session *Session
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	r := req.Clone(req.Context())
	for k, vs := range t.session.headers {
		if _, ok := r.Header[k]; !ok {
			r.Header[k] = append([]string(nil), vs...)
		}
	}
	if tok := t.session.Token(); tok != "" && r.Header.Get("Authorization") == "" {
		r.Header.Set("Authorization", "Bearer "+tok)
	}
	return t.next.RoundTrip(r)
}

type loggingTransport struct {
	next http.RoundTripper
	log  logger.Logger
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	log := t.log.
		WithField("requestID", uuid.New().String()).
		WithField("method", req.Method).
		WithField("path", req.URL.Path)

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		log.Debug("request failed", logger.Err(err), logger.F("latency", time.Since(start).String()))
		return nil, err
	}

	log.
		WithField("status", resp.StatusCode).
		WithField("latency", time.Since(start).String()).
		Debug("request")
	return resp, nil
}
