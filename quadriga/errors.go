package quadriga

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrInvalidInput marks arguments rejected before any network call.
	ErrInvalidInput = errors.New("invalid input")
	// ErrTransport marks failures reported by the transport.
	ErrTransport = errors.New("transport error")
)

// TransportError is a connection failure or a non-2xx HTTP status. Body holds
// whatever the server sent back, uninterpreted.
type TransportError struct {
	Method     string
	URL        string
	StatusCode int
	Body       []byte
	Err        error
}

func (e *TransportError) Error() string {
	b := strings.Builder{}
	b.WriteString("quadriga transport error")
	if e.Method != "" {
		b.WriteString(" " + e.Method + " " + e.URL)
	}
	if e.StatusCode != 0 {
		b.WriteString(": http status " + strconv.Itoa(e.StatusCode))
		if body := strings.TrimSpace(string(e.Body)); body != "" {
			if len(body) > 256 {
				body = body[:256]
			}
			b.WriteString(": " + body)
		}
	}
	if e.Err != nil {
		b.WriteString(": " + e.Err.Error())
	}
	return b.String()
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// RemoteError is an application-level error encoded in a response body.
// RawCode is the code exactly as sent; Code is set only when it is an integer.
type RemoteError struct {
	Code    int
	RawCode string
	Message string
}

func (e RemoteError) Error() string {
	code := e.RawCode
	if code == "" {
		code = strconv.Itoa(e.Code)
	}
	return "quadriga api error " + code + ": " + e.Message
}

type remoteErrorEnvelope struct {
	Error *struct {
		Code    json.RawMessage `json:"code"`
		Message string          `json:"message"`
	} `json:"error"`
}

// rawCode unquotes a JSON string code and returns any other scalar as written.
func rawCode(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	v := strings.TrimSpace(string(raw))
	if v == "null" {
		return ""
	}
	return v
}

// ParseRemoteError reports whether body carries an {"error":{...}} object.
// Clients never call it; responses are handed back verbatim.
func ParseRemoteError(body []byte) (RemoteError, bool) {
	var env remoteErrorEnvelope
	if err := json.Unmarshal(body, &env); err != nil || env.Error == nil {
		return RemoteError{}, false
	}
	raw := rawCode(env.Error.Code)
	if raw == "" && env.Error.Message == "" {
		return RemoteError{}, false
	}
	remote := RemoteError{RawCode: raw, Message: env.Error.Message}
	if n, err := strconv.Atoi(raw); err == nil {
		remote.Code = n
	}
	return remote, true
}

func IsInvalidInput(err error) bool { return errors.Is(err, ErrInvalidInput) }

func AsTransportError(err error) (*TransportError, bool) {
	var te *TransportError
	if !errors.As(err, &te) {
		return nil, false
	}
	return te, true
}
