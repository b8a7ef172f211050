package composer

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"http-relay-go/internal/model"
)

// RequestPath is the relay route that accepts wire requests.
const RequestPath = "/api/request"

const unreachableHint = "check network connection, CORS policy on the server, or the URL"

// RemoteInvoker submits RequestSpecs to a relay server over HTTP.
type RemoteInvoker struct {
	endpoint   string
	httpClient *http.Client
}

// NewRemoteInvoker creates a RemoteInvoker for the relay at baseURL.
// A zero timeout waits as long as the relay takes.
func NewRemoteInvoker(baseURL string, timeout time.Duration) *RemoteInvoker {
	return &RemoteInvoker{
		endpoint:   strings.TrimRight(baseURL, "/") + RequestPath,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Invoke implements model.Invoker. Failures reported by the relay are
// returned unmodified.
func (ri *RemoteInvoker) Invoke(ctx context.Context, spec model.RequestSpec) model.Result {
	wr, err := model.NewWireRequest(spec)
	if err != nil {
		return model.ValidationFailure(model.MsgSetup, err.Error())
	}
	payload, err := json.Marshal(wr)
	if err != nil {
		return model.ValidationFailure(model.MsgSetup, err.Error())
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, ri.endpoint, bytes.NewReader(payload))
	if err != nil {
		return model.ValidationFailure(model.MsgSetup, err.Error())
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := ri.httpClient.Do(req)
	if err != nil {
		return model.TransportFailed(fmt.Sprintf("relay unreachable (%v); %s", err, unreachableHint))
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.TransportFailed(fmt.Sprintf("read relay response: %v", err))
	}

	res, err := model.DecodeResult(resp.StatusCode, body)
	if err != nil {
		return model.TransportFailed(err.Error())
	}
	return res
}
