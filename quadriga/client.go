package quadriga

import (
	"strings"

	"go.uber.org/zap"
)

// Options configures either client. Zero values fall back to the public
// endpoint, an HTTPTransport, JSONCodec, wall clock nonces and a no-op logger.
type Options struct {
	BaseURL   string
	Transport Transport
	Codec     Codec
	Nonce     NonceSource
	Logger    *zap.Logger
}

type base struct {
	baseURL   string
	transport Transport
	codec     Codec
	log       *zap.Logger
}

func newBase(opts Options) base {
	baseURL := strings.TrimSpace(opts.BaseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	transport := opts.Transport
	if transport == nil {
		transport = NewHTTPTransport(HTTPOptions{Logger: log})
	}
	codec := opts.Codec
	if codec == nil {
		codec = JSONCodec{}
	}
	return base{
		baseURL:   baseURL,
		transport: transport,
		codec:     codec,
		log:       log,
	}
}

func (b base) url(endpoint string) string {
	return b.baseURL + strings.TrimLeft(endpoint, "/")
}
