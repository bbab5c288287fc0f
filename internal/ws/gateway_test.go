package ws

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fr-yash/CoBuilderr/internal/auth"
	"github.com/fr-yash/CoBuilderr/internal/extract"
	"github.com/fr-yash/CoBuilderr/internal/models"
	"github.com/fr-yash/CoBuilderr/internal/relay"
)

// fakeStore serves a single known project; every other lookup misses.
type fakeStore struct {
	project *models.Project
}

func (s *fakeStore) Close()                         {}
func (s *fakeStore) Ping(ctx context.Context) error { return nil }

func (s *fakeStore) CreateUser(ctx context.Context, email, passwordHash string) (*models.User, error) {
	return nil, nil
}
func (s *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}
func (s *fakeStore) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return nil, nil
}
func (s *fakeStore) ListUsers(ctx context.Context, exclude uuid.UUID) ([]models.User, error) {
	return nil, nil
}
func (s *fakeStore) CreateProject(ctx context.Context, name string, owner uuid.UUID) (*models.Project, error) {
	return nil, nil
}
func (s *fakeStore) GetProject(ctx context.Context, id uuid.UUID) (*models.Project, error) {
	if s.project != nil && s.project.ID == id {
		return s.project, nil
	}
	return nil, nil
}
func (s *fakeStore) ListProjectsForUser(ctx context.Context, userID uuid.UUID) ([]models.Project, error) {
	return nil, nil
}
func (s *fakeStore) AddProjectMembers(ctx context.Context, projectID uuid.UUID, userIDs []uuid.UUID) (*models.Project, error) {
	return nil, nil
}
func (s *fakeStore) IsProjectMember(ctx context.Context, projectID, userID uuid.UUID) (bool, error) {
	return true, nil
}

// echoGenerator answers every prompt with a fixed text.
type echoGenerator struct{}

func (echoGenerator) Generate(ctx context.Context, prompt string) (extract.Result, error) {
	return extract.Result{Text: "answer: " + prompt}, nil
}

type testEnv struct {
	server   *httptest.Server
	verifier *auth.Verifier
	project  *models.Project
	relay    *relay.Relay
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	project := &models.Project{ID: uuid.New(), Name: "demo"}
	db := &fakeStore{project: project}
	verifier := auth.NewVerifier("test-secret", nil)

	logger := zerolog.Nop()
	registry := relay.NewRegistry(logger)
	rl := relay.New(context.Background(), registry, echoGenerator{}, nil, logger)
	gw := NewGateway(registry, rl, verifier, db, nil, logger)

	srv := httptest.NewServer(http.HandlerFunc(gw.Handle))
	t.Cleanup(srv.Close)

	return &testEnv{server: srv, verifier: verifier, project: project, relay: rl}
}

func (e *testEnv) wsURL(projectID, token string) string {
	url := "ws" + strings.TrimPrefix(e.server.URL, "http") + "?projectId=" + projectID
	if token != "" {
		url += "&token=" + token
	}
	return url
}

func (e *testEnv) issueToken(t *testing.T, email string) string {
	t.Helper()
	token, err := e.verifier.Issue(&models.User{ID: uuid.New(), Email: email})
	require.NoError(t, err)
	return token
}

func dial(t *testing.T, url string) *websocket.Conn {
	t.Helper()
	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	if resp != nil {
		resp.Body.Close()
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var f frame
	require.NoError(t, conn.ReadJSON(&f))
	return f
}

func TestHandshakeRejectsMissingToken(t *testing.T) {
	env := newTestEnv(t)

	_, resp, err := websocket.DefaultDialer.Dial(env.wsURL(env.project.ID.String(), ""), nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestHandshakeRejectsMalformedProjectID(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t, "dev@example.com")

	_, resp, err := websocket.DefaultDialer.Dial(env.wsURL("not-a-uuid", token), nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHandshakeRejectsUnknownProject(t *testing.T) {
	env := newTestEnv(t)
	token := env.issueToken(t, "dev@example.com")

	_, resp, err := websocket.DefaultDialer.Dial(env.wsURL(uuid.NewString(), token), nil)

	require.Error(t, err)
	require.NotNil(t, resp)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMessageFansOutToRoomMembers(t *testing.T) {
	env := newTestEnv(t)
	alice := dial(t, env.wsURL(env.project.ID.String(), env.issueToken(t, "alice@example.com")))
	bob := dial(t, env.wsURL(env.project.ID.String(), env.issueToken(t, "bob@example.com")))

	// Give the server a moment to register both read loops.
	time.Sleep(50 * time.Millisecond)

	require.NoError(t, alice.WriteJSON(frame{
		Event: MessageEvent,
		Data:  models.MessageEnvelope{ID: "m1", Text: "hello room", Sender: "alice@example.com", Timestamp: "10:00"},
	}))

	for _, conn := range []*websocket.Conn{alice, bob} {
		f := readFrame(t, conn)
		assert.Equal(t, MessageEvent, f.Event)
		assert.Equal(t, "hello room", f.Data.Text)
		assert.Equal(t, "m1", f.Data.ID)
	}
}

func TestTriggeredMessageProducesAIReplyAfterOriginal(t *testing.T) {
	env := newTestEnv(t)
	conn := dial(t, env.wsURL(env.project.ID.String(), env.issueToken(t, "dev@example.com")))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, conn.WriteJSON(frame{
		Event: MessageEvent,
		Data:  models.MessageEnvelope{ID: "m1", Text: "@ai say hi", Sender: "dev@example.com", Timestamp: "10:00"},
	}))

	first := readFrame(t, conn)
	assert.Equal(t, "m1", first.Data.ID, "original message arrives before the AI reply")

	second := readFrame(t, conn)
	assert.Equal(t, models.SenderAI, second.Data.Sender)
	assert.Equal(t, "answer: say hi", second.Data.Text)
	assert.NotEmpty(t, second.Data.ID)
	assert.NotEmpty(t, second.Data.Timestamp)
}

func TestUnknownEventsAreIgnored(t *testing.T) {
	env := newTestEnv(t)
	conn := dial(t, env.wsURL(env.project.ID.String(), env.issueToken(t, "dev@example.com")))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, conn.WriteJSON(frame{Event: "something-else", Data: models.MessageEnvelope{Text: "ignored"}}))
	require.NoError(t, conn.WriteJSON(frame{
		Event: MessageEvent,
		Data:  models.MessageEnvelope{Text: "real one", Sender: "dev@example.com"},
	}))

	f := readFrame(t, conn)
	assert.Equal(t, "real one", f.Data.Text)
	assert.NotEmpty(t, f.Data.ID, "server assigns ids when the client omits them")
	assert.NotEmpty(t, f.Data.Timestamp)
}
