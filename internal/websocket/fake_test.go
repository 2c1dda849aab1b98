package websocket

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"teamchat-service/internal/client"
)

// fakeSink records frames instead of writing to a socket.
type fakeSink struct {
	id       string
	capacity int

	mu     sync.Mutex
	frames [][]byte
	closed bool
}

func newFakeSink(id string) *fakeSink { return &fakeSink{id: id} }

func (s *fakeSink) ID() string { return s.id }

func (s *fakeSink) Deliver(frame []byte) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	if s.capacity > 0 && len(s.frames) >= s.capacity {
		return false
	}
	s.frames = append(s.frames, frame)
	return true
}

func (s *fakeSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

func (s *fakeSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *fakeSink) envelopes(t *testing.T) []Envelope {
	t.Helper()
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Envelope, 0, len(s.frames))
	for _, f := range s.frames {
		env, err := DecodeEnvelope(f)
		require.NoError(t, err)
		out = append(out, env)
	}
	return out
}

func (s *fakeSink) named(t *testing.T, event string) []Envelope {
	t.Helper()
	var out []Envelope
	for _, env := range s.envelopes(t) {
		if env.Event == event {
			out = append(out, env)
		}
	}
	return out
}

func (s *fakeSink) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frames = nil
}

func payloadOf[T any](t *testing.T, env Envelope) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(env.Data, &v))
	return v
}

func frame(t *testing.T, event string, data any) []byte {
	t.Helper()
	b, err := Encode(event, data)
	require.NoError(t, err)
	return b
}

// MockTokenVerifier maps tokens to user ids unless VerifyTokenFunc is set.
type MockTokenVerifier struct {
	Tokens          map[string]string
	VerifyTokenFunc func(ctx context.Context, token string) (string, error)
}

func (m *MockTokenVerifier) VerifyToken(ctx context.Context, token string) (string, error) {
	if m.VerifyTokenFunc != nil {
		return m.VerifyTokenFunc(ctx, token)
	}
	if id, ok := m.Tokens[token]; ok {
		return id, nil
	}
	return "", errInvalidTestToken
}

type testError string

func (e testError) Error() string { return string(e) }

const errInvalidTestToken = testError("invalid token")

type MockProfileLookup struct {
	Profiles map[string]string
}

func (m *MockProfileLookup) GetProfile(ctx context.Context, userID string) (*client.UserProfile, error) {
	name, ok := m.Profiles[userID]
	if !ok {
		return nil, client.ErrUserNotFound
	}
	return &client.UserProfile{UserID: userID, Username: name}, nil
}

type MockAccessChecker struct {
	CanAccessFunc func(ctx context.Context, userID, conversationID string) error
}

func (m *MockAccessChecker) CanAccess(ctx context.Context, userID, conversationID string) error {
	return m.CanAccessFunc(ctx, userID, conversationID)
}

type testEnv struct {
	hub        *Hub
	controller *Controller
	verifier   *MockTokenVerifier
	profiles   *MockProfileLookup
}

func newTestEnv() *testEnv {
	logger := zap.NewNop()
	hub := NewHub(logger, nil)
	verifier := &MockTokenVerifier{Tokens: map[string]string{
		"token-a": "user-a",
		"token-b": "user-b",
		"token-c": "user-c",
	}}
	profiles := &MockProfileLookup{Profiles: map[string]string{
		"user-a": "alice",
		"user-b": "bob",
		"user-c": "carol",
	}}
	return &testEnv{
		hub:        hub,
		controller: NewController(hub, verifier, profiles, nil, nil, logger),
		verifier:   verifier,
		profiles:   profiles,
	}
}

// connect opens a connection and authenticates it with token when non-empty.
func (e *testEnv) connect(t *testing.T, id, token string) *fakeSink {
	t.Helper()
	s := newFakeSink(id)
	e.controller.Connect(s)
	if token != "" {
		require.NoError(t, e.controller.Authenticate(context.Background(), id, token))
	}
	return s
}
