package ai

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeCompleter returns a canned response and records the context it saw.
type fakeCompleter struct {
	raw    string
	err    error
	calls  int
	gotCtx context.Context
}

func (f *fakeCompleter) Complete(ctx context.Context, prompt string) (string, error) {
	f.calls++
	f.gotCtx = ctx
	return f.raw, f.err
}

func newTestService(c Completer) *Service {
	return NewService(c, 5*time.Second, zerolog.Nop())
}

func TestGenerateEmptyPrompt(t *testing.T) {
	completer := &fakeCompleter{}
	svc := newTestService(completer)

	for _, prompt := range []string{"", "   ", "\n\t"} {
		_, err := svc.Generate(context.Background(), prompt)
		assert.ErrorIs(t, err, ErrEmptyPrompt, "prompt %q", prompt)
	}
	assert.Zero(t, completer.calls, "backend must not be invoked for empty prompts")
}

func TestGenerateWrapsUpstreamError(t *testing.T) {
	completer := &fakeCompleter{err: errors.New("503 overloaded")}
	svc := newTestService(completer)

	_, err := svc.Generate(context.Background(), "make a thing")

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstream)
	assert.Contains(t, err.Error(), "503 overloaded")
}

func TestGenerateNormalizesThroughExtraction(t *testing.T) {
	completer := &fakeCompleter{raw: "```json\n{\"text\":\"hi there\"}\n```"}
	svc := newTestService(completer)

	res, err := svc.Generate(context.Background(), "say hi")

	require.NoError(t, err)
	assert.Equal(t, "hi there", res.Text)
	assert.Nil(t, res.FileTree)
}

func TestGeneratePlainTextResponseDegrades(t *testing.T) {
	completer := &fakeCompleter{raw: "I cannot answer that in JSON."}
	svc := newTestService(completer)

	res, err := svc.Generate(context.Background(), "question")

	require.NoError(t, err)
	assert.Equal(t, "I cannot answer that in JSON.", res.Text)
}

func TestGenerateBoundsCallWithDeadline(t *testing.T) {
	completer := &fakeCompleter{raw: "{\"text\":\"ok\"}"}
	svc := newTestService(completer)

	_, err := svc.Generate(context.Background(), "anything")

	require.NoError(t, err)
	deadline, ok := completer.gotCtx.Deadline()
	require.True(t, ok, "backend context must carry a deadline")
	assert.WithinDuration(t, time.Now().Add(5*time.Second), deadline, time.Second)
}
