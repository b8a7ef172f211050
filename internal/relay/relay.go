// Package relay executes a RequestSpec against its target and normalizes the
// outcome into a single Result.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/net/http/httpguts"

	"http-relay-go/internal/config"
	"http-relay-go/internal/metrics"
	"http-relay-go/internal/model"
)

// Doer executes outbound HTTP requests. *client.TargetClient implements it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Options configures a Relay.
type Options struct {
	// Timeout bounds each outbound call. Zero means no timeout.
	Timeout time.Duration
}

// OptionsFromConfig derives relay options from the application config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{Timeout: cfg.Relay.Timeout()}
}

// Relay forwards one RequestSpec per call. It holds no per-call state, so a
// single Relay serves concurrent callers.
type Relay struct {
	doer    Doer
	opts    Options
	logger  *slog.Logger
	metrics *metrics.Metrics
}

// New creates a Relay. The metrics parameter is optional.
func New(d Doer, opts Options, logger *slog.Logger, m *metrics.Metrics) *Relay {
	return &Relay{
		doer:    d,
		opts:    opts,
		logger:  logger.With("component", "relay"),
		metrics: m,
	}
}

// Invoke executes spec and returns its Result. It never panics on bad input
// and never returns a nil Result.
func (r *Relay) Invoke(ctx context.Context, spec model.RequestSpec) model.Result {
	result := r.invoke(ctx, spec)
	r.record(result)
	return result
}

func (r *Relay) invoke(ctx context.Context, spec model.RequestSpec) model.Result {
	method, err := model.ParseMethod(spec.Method)
	if err != nil {
		return model.ValidationFailure(model.MsgUnsupportedMethod, err.Error())
	}

	target, err := model.ParseTargetURL(spec.URL)
	if err != nil {
		return model.ValidationFailure(model.MsgInvalidURL, err.Error())
	}

	header, host, err := buildHeader(spec.Headers)
	if err != nil {
		return model.ValidationFailure(model.MsgSetup, err.Error())
	}

	body, err := buildBody(method, spec.Body)
	if err != nil {
		return model.ValidationFailure(model.MsgInvalidJSONBody, err.Error())
	}
	if body != nil && !hasHeader(header, "Content-Type") {
		header.Set("Content-Type", "application/json")
	}

	if r.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.opts.Timeout)
		defer cancel()
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, string(method), target.String(), reader)
	if err != nil {
		return model.ValidationFailure(model.MsgSetup, err.Error())
	}
	req.Header = header
	if host != "" {
		req.Host = host
	}

	r.logger.Debug("relaying request",
		"method", method,
		"target", redactURL(target),
		"body_bytes", len(body),
	)

	resp, err := r.doer.Do(req)
	if err != nil {
		r.logger.Warn("no response from target",
			"method", method,
			"target", redactURL(target),
			"err", err,
		)
		return model.TransportFailed(describeTransportError(err, r.opts.Timeout))
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.TransportFailed(describeTransportError(fmt.Errorf("read response body: %w", err), r.opts.Timeout))
	}

	data := model.DecodeData(raw)
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return model.TargetFailed(resp.StatusCode, resp.Header, data)
	}
	return &model.Success{
		Status:  resp.StatusCode,
		Headers: resp.Header,
		Data:    data,
	}
}

// framingHeaders are computed by the transport from the body. Caller values
// are dropped so the request never carries two conflicting framings.
var framingHeaders = []string{"Content-Length", "Transfer-Encoding", "Trailer"}

// buildHeader copies the non-blank entries of h into a fresh header set,
// keeping keys exactly as given. A Host entry is returned separately since
// net/http takes it from Request.Host. Framing headers are dropped.
func buildHeader(h map[string]string) (http.Header, string, error) {
	out := make(http.Header, len(h))
	var host string
	for k, v := range model.CleanHeaders(h) {
		if !httpguts.ValidHeaderFieldName(k) {
			return nil, "", fmt.Errorf("invalid header name %q", k)
		}
		if !httpguts.ValidHeaderFieldValue(v) {
			return nil, "", fmt.Errorf("invalid value for header %q", k)
		}
		if strings.EqualFold(k, "Host") {
			host = v
			continue
		}
		if isFramingHeader(k) {
			continue
		}
		out[k] = []string{v}
	}
	return out, host, nil
}

// buildBody returns the compact JSON encoding of body when method carries
// one and body is not blank, nil otherwise.
func buildBody(method model.Method, body string) ([]byte, error) {
	if !method.HasBody() || strings.TrimSpace(body) == "" {
		return nil, nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, []byte(body)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isFramingHeader(name string) bool {
	for _, f := range framingHeaders {
		if strings.EqualFold(name, f) {
			return true
		}
	}
	return false
}

// hasHeader reports whether h has name under any casing.
func hasHeader(h http.Header, name string) bool {
	for k := range h {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

// describeTransportError turns a failed exchange into a caller-facing detail.
func describeTransportError(err error, timeout time.Duration) string {
	if errors.Is(err, context.DeadlineExceeded) {
		if timeout > 0 {
			return fmt.Sprintf("timeout of %s exceeded", timeout)
		}
		return "deadline exceeded"
	}
	if errors.Is(err, context.Canceled) {
		return "request canceled"
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return fmt.Sprintf("host %s could not be resolved: %s", dnsErr.Name, dnsErr.Err)
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) && opErr.Op == "dial" {
		return fmt.Sprintf("connection to %s failed: %v", opErr.Addr, opErr.Err)
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		return urlErr.Err.Error()
	}
	return err.Error()
}

// redactURL drops query and credentials from u for logging.
func redactURL(u *url.URL) string {
	c := *u
	c.User = nil
	if c.RawQuery != "" {
		c.RawQuery = "[REDACTED]"
	}
	return c.String()
}

// Outcome returns the metrics label for a Result.
func Outcome(res model.Result) string {
	if f, ok := res.(*model.Failure); ok {
		return string(f.Kind)
	}
	return "success"
}

func (r *Relay) record(res model.Result) {
	if r.metrics == nil {
		return
	}
	r.metrics.RelayResults.WithLabelValues(Outcome(res)).Inc()
}
