package composer

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"http-relay-go/internal/model"
)

// recordingInvoker captures submitted specs and answers with result.
type recordingInvoker struct {
	mu     sync.Mutex
	specs  []model.RequestSpec
	result model.Result
}

func (r *recordingInvoker) Invoke(_ context.Context, spec model.RequestSpec) model.Result {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs = append(r.specs, spec)
	if r.result == nil {
		return &model.Success{Status: 200}
	}
	return r.result
}

func (r *recordingInvoker) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.specs)
}

func TestBuild_DropsBlankHeaderKeys(t *testing.T) {
	spec, failure := Build(Form{
		Method: "get",
		URL:    "https://example.com",
		Headers: []HeaderRow{
			{Key: "X-Keep", Value: "1"},
			{Key: "", Value: "gone"},
			{Key: "  \t", Value: "gone"},
			{Key: "x-lower", Value: " spaced "},
		},
	})

	require.Nil(t, failure)
	assert.Equal(t, "GET", spec.Method)
	assert.Equal(t, map[string]string{"X-Keep": "1", "x-lower": " spaced "}, spec.Headers)
}

func TestBuild_BodyOnlyForBodyMethods(t *testing.T) {
	tests := []struct {
		method   string
		wantBody bool
	}{
		{"GET", false},
		{"DELETE", false},
		{"HEAD", false},
		{"OPTIONS", false},
		{"POST", true},
		{"put", true},
		{"Patch", true},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			spec, failure := Build(Form{Method: tt.method, URL: "https://example.com", Body: `{"a":1}`})
			require.Nil(t, failure)
			if tt.wantBody {
				assert.Equal(t, `{"a":1}`, spec.Body)
			} else {
				assert.Empty(t, spec.Body)
			}
		})
	}
}

func TestBuild_InvalidJSONIgnoredForGet(t *testing.T) {
	_, failure := Build(Form{Method: "GET", URL: "https://example.com", Body: "{not json"})
	assert.Nil(t, failure)
}

func TestBuild_InvalidJSONFailsLocally(t *testing.T) {
	_, failure := Build(Form{Method: "POST", URL: "https://example.com", Body: "{not json"})

	require.NotNil(t, failure)
	assert.Equal(t, model.LocalValidationError, failure.Kind)
	assert.Equal(t, model.MsgInvalidJSONBody, failure.Message)
	assert.NotEmpty(t, failure.Details)
}

func TestSubmit_InvalidBodyNeverInvokes(t *testing.T) {
	inv := &recordingInvoker{}
	c := New(inv)

	st := c.Submit(context.Background(), Form{Method: "POST", URL: "http://stub", Body: "{not json"})

	assert.Zero(t, inv.calls())
	assert.False(t, st.Loading)
	assert.True(t, st.Local)
	f, ok := st.Last.(*model.Failure)
	require.True(t, ok)
	assert.Equal(t, model.LocalValidationError, f.Kind)
}

func TestSubmit_PassesRelayResultUnmodified(t *testing.T) {
	data := model.JSONData([]byte(`{"error":"not found"}`))
	want := &model.Failure{
		Kind:    model.TargetError,
		Message: "request failed with status code 404",
		Status:  404,
		Data:    &data,
	}
	inv := &recordingInvoker{result: want}
	c := New(inv)

	st := c.Submit(context.Background(), Form{
		Method:  "post",
		URL:     "http://stub/echo",
		Headers: []HeaderRow{{Key: "X-Test", Value: "1"}},
		Body:    `{"a":1}`,
	})

	require.Equal(t, 1, inv.calls())
	assert.Equal(t, model.RequestSpec{
		Method:  "POST",
		URL:     "http://stub/echo",
		Headers: map[string]string{"X-Test": "1"},
		Body:    `{"a":1}`,
	}, inv.specs[0])
	assert.False(t, st.Local)
	assert.Same(t, want, st.Last)
	assert.Equal(t, st, c.State())
}

func TestComposers_AreIndependent(t *testing.T) {
	a := New(&recordingInvoker{result: &model.Success{Status: 201}})
	b := New(&recordingInvoker{})

	a.Submit(context.Background(), Form{Method: "GET", URL: "http://a"})
	b.Submit(context.Background(), Form{Method: "POST", URL: "http://b", Body: "nope"})

	sa, ok := a.State().Last.(*model.Success)
	require.True(t, ok)
	assert.Equal(t, 201, sa.Status)
	_, ok = b.State().Last.(*model.Failure)
	assert.True(t, ok)

	b.Reset()
	assert.Nil(t, b.State().Last)
	assert.NotNil(t, a.State().Last)
}
