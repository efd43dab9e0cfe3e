package quadriga

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"sync"
	"time"
)

// NonceSource supplies the nonce for each signed call. The exchange rejects
// nonces lower than one it has already seen for the same key.
type NonceSource interface {
	Nonce() int64
}

// NonceFunc adapts a function to NonceSource.
type NonceFunc func() int64

func (f NonceFunc) Nonce() int64 { return f() }

// WallClock returns the current Unix time in seconds.
type WallClock struct{}

func (WallClock) Nonce() int64 { return time.Now().Unix() }

// MonotonicNonce returns strictly increasing nonces, running ahead of its
// source when calls arrive faster than the source advances.
type MonotonicNonce struct {
	source NonceSource

	mu   sync.Mutex
	last int64
}

func NewMonotonicNonce(source NonceSource) *MonotonicNonce {
	if source == nil {
		source = WallClock{}
	}
	return &MonotonicNonce{source: source}
}

func (m *MonotonicNonce) Nonce() int64 {
	n := m.source.Nonce()
	m.mu.Lock()
	defer m.mu.Unlock()
	if n <= m.last {
		n = m.last + 1
	}
	m.last = n
	return n
}

const (
	fieldKey       = "key"
	fieldNonce     = "nonce"
	fieldSignature = "signature"
)

type Signer struct {
	creds  Credentials
	nonces NonceSource
}

func NewSigner(creds Credentials, nonces NonceSource) (*Signer, error) {
	if err := creds.validate(); err != nil {
		return nil, err
	}
	if nonces == nil {
		nonces = WallClock{}
	}
	return &Signer{creds: creds, nonces: nonces}, nil
}

// Sign returns hex(HMAC-SHA256(nonce || clientID || apiKey, apiSecret)).
func (s *Signer) Sign(nonce int64) string {
	msg := strconv.FormatInt(nonce, 10) + strconv.FormatInt(s.creds.ClientID, 10) + s.creds.APIKey
	return sign(s.creds.APISecret, msg)
}

// Envelope merges fields with a fresh key/nonce/signature triple. The
// authentication fields always win over same-named operation fields.
func (s *Signer) Envelope(fields map[string]any) map[string]any {
	nonce := s.nonces.Nonce()
	env := make(map[string]any, len(fields)+3)
	for k, v := range fields {
		env[k] = v
	}
	env[fieldKey] = s.creds.APIKey
	env[fieldNonce] = nonce
	env[fieldSignature] = s.Sign(nonce)
	return env
}

func sign(secret, payload string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}
