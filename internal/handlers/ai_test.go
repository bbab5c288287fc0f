package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr-yash/CoBuilderr/internal/ai"
)

type fakeCompleter struct {
	raw string
	err error
}

func (f fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	return f.raw, f.err
}

func newAIHandler(c fakeCompleter) *Handler {
	svc := ai.NewService(c, time.Second, zerolog.Nop())
	return NewHandler(nil, nil, nil, svc)
}

func getResult(t *testing.T, h *Handler, prompt string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/ai/get-result?prompt="+url.QueryEscape(prompt), nil)
	rec := httptest.NewRecorder()
	h.GetResult(rec, req)
	return rec
}

func TestGetResultReturnsStructuredPayload(t *testing.T) {
	h := newAIHandler(fakeCompleter{
		raw: `{"text":"Here you go","fileTree":{"main.go":{"file":{"contents":"package main"}}},"buildCommand":{"mainItem":"go","commands":["build"]}}`,
	})

	rec := getResult(t, h, "write main")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "Here you go", resp.Text)
	require.Contains(t, resp.FileTree, "main.go")
	require.NotNil(t, resp.BuildCommand)
	assert.Equal(t, "go", resp.BuildCommand.MainItem)
	assert.Nil(t, resp.StartCommand)
}

func TestGetResultPlainTextAnswer(t *testing.T) {
	h := newAIHandler(fakeCompleter{raw: "just words, no JSON"})

	rec := getResult(t, h, "say something")

	require.Equal(t, http.StatusOK, rec.Code)
	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "just words, no JSON", resp.Text)
	assert.Empty(t, resp.FileTree)
}

func TestGetResultRejectsEmptyPrompt(t *testing.T) {
	h := newAIHandler(fakeCompleter{raw: "unused"})

	for _, prompt := range []string{"", "   ", "\n\t"} {
		rec := getResult(t, h, prompt)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	}
}

func TestGetResultUpstreamFailure(t *testing.T) {
	h := newAIHandler(fakeCompleter{err: errors.New("quota exceeded")})

	rec := getResult(t, h, "anything")

	require.Equal(t, http.StatusBadGateway, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "generation backend unavailable", body["error"])
}
