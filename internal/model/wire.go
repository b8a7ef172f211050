package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
)

// WireRequest is the JSON envelope a composer POSTs to the relay.
// Body is either a JSON string holding the raw text or any structured value.
type WireRequest struct {
	Method  string            `json:"method"`
	URL     string            `json:"url"`
	Headers map[string]string `json:"headers,omitempty"`
	Body    json.RawMessage   `json:"body,omitempty"`
}

// NewWireRequest encodes spec for the wire. The body travels as a string.
func NewWireRequest(spec RequestSpec) (WireRequest, error) {
	wr := WireRequest{
		Method:  spec.Method,
		URL:     spec.URL,
		Headers: spec.Headers,
	}
	if spec.Body != "" {
		b, err := json.Marshal(spec.Body)
		if err != nil {
			return WireRequest{}, fmt.Errorf("encode body: %w", err)
		}
		wr.Body = b
	}
	return wr, nil
}

// Spec converts the envelope into a RequestSpec. A structured body is
// carried as its JSON text.
func (w WireRequest) Spec() (RequestSpec, error) {
	spec := RequestSpec{
		Method:  w.Method,
		URL:     w.URL,
		Headers: w.Headers,
	}
	body := bytes.TrimSpace(w.Body)
	switch {
	case len(body) == 0 || bytes.Equal(body, []byte("null")):
	case body[0] == '"':
		if err := json.Unmarshal(body, &spec.Body); err != nil {
			return RequestSpec{}, fmt.Errorf("decode body: %w", err)
		}
	default:
		spec.Body = string(body)
	}
	return spec, nil
}

// WireResponse is the JSON envelope the relay answers with. Data is kept
// raw so that a present null body stays distinct from an absent one.
type WireResponse struct {
	Status  int             `json:"status,omitempty"`
	Headers Headers         `json:"headers,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
	Kind    FailureKind `json:"kind,omitempty"`
	Details string      `json:"details,omitempty"`
}

// EncodeResult maps a Result to the relay's HTTP status and response body.
// Successes answer 200; target errors answer with the target's 4xx/5xx
// status (502 otherwise); transport failures 502 and local validation
// errors 400.
func EncodeResult(r Result) (int, WireResponse) {
	switch v := r.(type) {
	case *Success:
		return http.StatusOK, WireResponse{
			Status:  v.Status,
			Headers: Headers(v.Headers),
			Data:    encodeData(v.Data),
		}
	case *Failure:
		resp := WireResponse{
			Error:   v.Message,
			Kind:    v.Kind,
			Details: v.Details,
		}
		switch v.Kind {
		case TargetError:
			resp.Status = v.Status
			resp.Headers = Headers(v.Headers)
			if v.Data != nil {
				resp.Data = encodeData(*v.Data)
			}
			// 1xx/2xx/3xx statuses cannot always carry a body.
			if v.Status < 400 || v.Status > 599 {
				return http.StatusBadGateway, resp
			}
			return v.Status, resp
		case TransportFailure:
			return http.StatusBadGateway, resp
		default:
			return http.StatusBadRequest, resp
		}
	}
	return http.StatusInternalServerError, WireResponse{
		Error: MsgSetup,
		Kind:  LocalValidationError,
	}
}

// DecodeResult parses a relay response back into a Result.
func DecodeResult(httpStatus int, body []byte) (Result, error) {
	var wr WireResponse
	if err := json.Unmarshal(body, &wr); err != nil {
		return nil, fmt.Errorf("decode relay response (HTTP %d): %w", httpStatus, err)
	}

	if wr.Error == "" && wr.Kind == "" {
		s := &Success{
			Status:  wr.Status,
			Headers: http.Header(wr.Headers),
		}
		data, err := decodeData(wr.Data)
		if err != nil {
			return nil, err
		}
		if data != nil {
			s.Data = *data
		}
		return s, nil
	}

	kind := wr.Kind
	if kind == "" {
		kind = inferKind(httpStatus, wr.Status)
	}
	f := &Failure{
		Kind:    kind,
		Message: wr.Error,
		Details: wr.Details,
	}
	if kind == TargetError {
		f.Status = wr.Status
		if f.Status == 0 {
			f.Status = httpStatus
		}
		f.Headers = http.Header(wr.Headers)
		data, err := decodeData(wr.Data)
		if err != nil {
			return nil, err
		}
		f.Data = data
	}
	return f, nil
}

// encodeData renders d for the wire. Data.MarshalJSON cannot fail: the JSON
// branch is returned as is and text is a plain string.
func encodeData(d Data) json.RawMessage {
	b, _ := d.MarshalJSON()
	return b
}

// decodeData reads a wire data value, nil when the field was absent.
func decodeData(raw json.RawMessage) (*Data, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var d Data
	if err := d.UnmarshalJSON(raw); err != nil {
		return nil, fmt.Errorf("decode data: %w", err)
	}
	return &d, nil
}

// inferKind classifies envelopes from relays that omit the kind field.
func inferKind(httpStatus, targetStatus int) FailureKind {
	switch {
	case targetStatus != 0:
		return TargetError
	case httpStatus == http.StatusBadRequest:
		return LocalValidationError
	default:
		return TransportFailure
	}
}
