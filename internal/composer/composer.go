// Package composer builds RequestSpecs from user input, submits them to a
// relay and keeps the presentation state of one composition.
package composer

import (
	"context"
	"encoding/json"
	"strings"
	"sync"

	"http-relay-go/internal/model"
)

// HeaderRow is one key/value row of the header editor.
type HeaderRow struct {
	Key   string
	Value string
}

// Form is the raw user input of a composition.
type Form struct {
	Method  string
	URL     string
	Headers []HeaderRow
	Body    string
}

// State is the presentation state of a Composer.
type State struct {
	Loading bool
	Last    model.Result
	// Local is true when Last failed before reaching the relay.
	Local bool
}

// Composer owns one composition. Instances are independent of each other.
type Composer struct {
	invoker model.Invoker

	mu    sync.Mutex
	state State
}

// New creates a Composer that submits through inv.
func New(inv model.Invoker) *Composer {
	return &Composer{invoker: inv}
}

// Build turns form into a RequestSpec. Blank header keys are dropped, the
// body is kept only for POST, PUT and PATCH, and a kept body must be JSON.
func Build(form Form) (model.RequestSpec, *model.Failure) {
	method := strings.ToUpper(strings.TrimSpace(form.Method))

	headers := make(map[string]string, len(form.Headers))
	for _, row := range form.Headers {
		if strings.TrimSpace(row.Key) == "" {
			continue
		}
		headers[row.Key] = row.Value
	}

	spec := model.RequestSpec{
		Method:  method,
		URL:     form.URL,
		Headers: headers,
	}

	if model.Method(method).HasBody() && strings.TrimSpace(form.Body) != "" {
		var v any
		if err := json.Unmarshal([]byte(form.Body), &v); err != nil {
			return model.RequestSpec{}, model.ValidationFailure(model.MsgInvalidJSONBody, err.Error())
		}
		spec.Body = form.Body
	}
	return spec, nil
}

// Submit builds form and sends it through the invoker. The relay is not
// called when the form fails local validation. It returns the new state.
func (c *Composer) Submit(ctx context.Context, form Form) State {
	c.mu.Lock()
	c.state = State{Loading: true}
	c.mu.Unlock()

	spec, failure := Build(form)
	var res model.Result
	local := failure != nil
	if local {
		res = failure
	} else {
		res = c.invoker.Invoke(ctx, spec)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{Last: res, Local: local}
	return c.state
}

// State returns the current state.
func (c *Composer) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Reset clears the last result.
func (c *Composer) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state = State{}
}
