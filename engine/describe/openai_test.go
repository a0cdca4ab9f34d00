package describe

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/compozy/testproject/engine/cmakedoc"
	"github.com/compozy/testproject/engine/core"
	pkgerrors "github.com/compozy/testproject/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCallable() *cmakedoc.Callable {
	return &cmakedoc.Callable{
		Kind: cmakedoc.KindFunction,
		Name: "tp_add_library",
		Args: []string{"target"},
		Doc:  "Adds a library.",
		Specs: []cmakedoc.ParseArgsSpec{{
			Prefix:         "ARG",
			Options:        []string{"SHARED"},
			OneValueArgs:   []string{"VERSION", "target"},
			MultiValueArgs: []string{"SOURCES"},
		}},
	}
}

func fastRetry() *pkgerrors.RetryConfig {
	return &pkgerrors.RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		RetryableErrors: []core.ErrorCode{core.ErrorCodeDescriberFailed},
	}
}

func completionServer(t *testing.T, status []int, content string) (*httptest.Server, *int32) {
	t.Helper()
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		if int(n) <= len(status) {
			w.WriteHeader(status[n-1])
			_, _ = w.Write([]byte(`{"error":{"message":"unavailable","type":"server_error"}}`))
			return
		}
		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-test",
			Object: "chat.completion",
			Model:  openai.GPT4oMini,
			Choices: []openai.ChatCompletionChoice{{
				Index:        0,
				Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: content},
				FinishReason: openai.FinishReasonStop,
			}},
		}
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

func newTestDescriber(t *testing.T, url string) *OpenAIDescriber {
	t.Helper()
	d, err := NewOpenAIDescriber(Config{APIKey: "test-key", BaseURL: url + "/v1", Retry: fastRetry()})
	require.NoError(t, err)
	return d
}

func TestNewOpenAIDescriber(t *testing.T) {
	t.Run("Should require an api key", func(t *testing.T) {
		_, err := NewOpenAIDescriber(Config{})
		require.Error(t, err)
		assert.Equal(t, core.ErrorCodeInvalidInput, core.CodeOf(err))
	})

	t.Run("Should default the model", func(t *testing.T) {
		d, err := NewOpenAIDescriber(Config{APIKey: "k"})
		require.NoError(t, err)
		assert.Equal(t, openai.GPT4oMini, d.model)
	})
}

func TestNames(t *testing.T) {
	t.Run("Should list parameters then keywords without duplicates", func(t *testing.T) {
		assert.Equal(t, []string{"target", "SHARED", "VERSION", "SOURCES"}, Names(sampleCallable()))
	})
}

func TestDescribe(t *testing.T) {
	t.Run("Should map drafted sentences to description keys", func(t *testing.T) {
		srv, calls := completionServer(t, nil,
			`{"target":"Name of the library target.","VERSION":"Library version.","BOGUS":"ignored","SOURCES":"  "}`)
		d := newTestDescriber(t, srv.URL)

		out, err := d.Describe(context.Background(), sampleCallable())
		require.NoError(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
		assert.Equal(t, cmakedoc.Descriptions{
			"tp_add_library/target":  "Name of the library target.",
			"tp_add_library/VERSION": "Library version.",
		}, out)
	})

	t.Run("Should accept fenced json", func(t *testing.T) {
		srv, _ := completionServer(t, nil, "```json\n{\"SHARED\":\"Build a shared library.\"}\n```")
		d := newTestDescriber(t, srv.URL)

		out, err := d.Describe(context.Background(), sampleCallable())
		require.NoError(t, err)
		assert.Equal(t, "Build a shared library.", out["tp_add_library/SHARED"])
	})

	t.Run("Should retry server errors", func(t *testing.T) {
		srv, calls := completionServer(t, []int{http.StatusServiceUnavailable}, `{"target":"The target."}`)
		d := newTestDescriber(t, srv.URL)

		out, err := d.Describe(context.Background(), sampleCallable())
		require.NoError(t, err)
		assert.Equal(t, int32(2), atomic.LoadInt32(calls))
		assert.Len(t, out, 1)
	})

	t.Run("Should not retry client errors", func(t *testing.T) {
		srv, calls := completionServer(t, []int{http.StatusUnauthorized}, `{}`)
		d := newTestDescriber(t, srv.URL)

		_, err := d.Describe(context.Background(), sampleCallable())
		require.Error(t, err)
		assert.Equal(t, int32(1), atomic.LoadInt32(calls))
		assert.Equal(t, core.ErrorCodeInvalidInput, core.CodeOf(err))
	})

	t.Run("Should reject invalid json", func(t *testing.T) {
		srv, _ := completionServer(t, nil, "not json")
		d := newTestDescriber(t, srv.URL)

		_, err := d.Describe(context.Background(), sampleCallable())
		require.Error(t, err)
	})

	t.Run("Should skip callables without names", func(t *testing.T) {
		srv, calls := completionServer(t, nil, `{}`)
		d := newTestDescriber(t, srv.URL)

		out, err := d.Describe(context.Background(), &cmakedoc.Callable{Name: "empty"})
		require.NoError(t, err)
		assert.Nil(t, out)
		assert.Equal(t, int32(0), atomic.LoadInt32(calls))
	})
}

func TestGeneratorWithDescriber(t *testing.T) {
	t.Run("Should satisfy the generator describer interface", func(t *testing.T) {
		var _ cmakedoc.Describer = (*OpenAIDescriber)(nil)
	})
}
