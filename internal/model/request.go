// Package model defines the request and result types exchanged between
// composers and the relay.
package model

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

var (
	// ErrUnsupportedMethod is returned for methods outside the relayable set.
	ErrUnsupportedMethod = errors.New("unsupported method")
	// ErrInvalidURL is returned for URLs without a scheme or host.
	ErrInvalidURL = errors.New("invalid URL")
)

// Method is an upper-cased HTTP method the relay accepts.
type Method string

const (
	MethodGet     Method = http.MethodGet
	MethodPost    Method = http.MethodPost
	MethodPut     Method = http.MethodPut
	MethodPatch   Method = http.MethodPatch
	MethodDelete  Method = http.MethodDelete
	MethodHead    Method = http.MethodHead
	MethodOptions Method = http.MethodOptions
)

// ParseMethod normalizes s to upper case and checks it against the
// relayable set.
func ParseMethod(s string) (Method, error) {
	m := Method(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case MethodGet, MethodPost, MethodPut, MethodPatch, MethodDelete, MethodHead, MethodOptions:
		return m, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedMethod, s)
}

// HasBody reports whether requests with this method carry a body.
func (m Method) HasBody() bool {
	return m == MethodPost || m == MethodPut || m == MethodPatch
}

// RequestSpec describes one outbound HTTP call.
type RequestSpec struct {
	Method  string
	URL     string
	Headers map[string]string
	Body    string
}

// ParseTargetURL parses raw and requires both a scheme and a host.
// No default scheme is assumed.
func ParseTargetURL(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidURL)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("%w: %q is not absolute", ErrInvalidURL, raw)
	}
	return u, nil
}

// CleanHeaders returns a copy of h without entries whose key is blank.
// Remaining keys and values are kept as given.
func CleanHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		if strings.TrimSpace(k) == "" {
			continue
		}
		out[k] = v
	}
	return out
}

// Invoker executes a RequestSpec and always returns a Result.
type Invoker interface {
	Invoke(ctx context.Context, spec RequestSpec) Result
}
