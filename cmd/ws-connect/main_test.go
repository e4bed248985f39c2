package main

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"versegraph/infrastructure/realtime"
	"versegraph/pkg/auth"

	"github.com/aws/aws-lambda-go/events"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type mockRegistry struct{ mock.Mock }

func (m *mockRegistry) Save(ctx context.Context, conn realtime.Connection) error {
	return m.Called(ctx, conn).Error(0)
}

func (m *mockRegistry) Delete(ctx context.Context, connectionID string) error {
	return m.Called(ctx, connectionID).Error(0)
}

func newHandler(t *testing.T, registry *mockRegistry) (*Handler, string) {
	t.Helper()
	validator, err := auth.NewJWTValidator(auth.JWTConfig{SecretKey: "ws-secret"})
	require.NoError(t, err)
	generator, err := auth.NewJWTGenerator("ws-secret", "", nil, time.Hour)
	require.NoError(t, err)
	token, err := generator.GenerateToken("user-7", "", nil)
	require.NoError(t, err)

	clock := time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)
	return &Handler{
		validator:   validator,
		connections: registry,
		logger:      zap.NewNop(),
		now:         func() time.Time { return clock },
	}, token
}

func connectRequest(query map[string]string, headers map[string]string) events.APIGatewayWebsocketProxyRequest {
	return events.APIGatewayWebsocketProxyRequest{
		Headers:               headers,
		QueryStringParameters: query,
		RequestContext: events.APIGatewayWebsocketProxyRequestContext{
			RouteKey:     "$connect",
			ConnectionID: "conn-1",
			DomainName:   "abc.execute-api.us-west-2.amazonaws.com",
			Stage:        "prod",
		},
	}
}

func TestConnect(t *testing.T) {
	ctx := context.Background()

	t.Run("valid token in query", func(t *testing.T) {
		registry := new(mockRegistry)
		h, token := newHandler(t, registry)
		registry.On("Save", ctx, realtime.Connection{
			ConnectionID: "conn-1",
			UserID:       "user-7",
			Endpoint:     "abc.execute-api.us-west-2.amazonaws.com/prod",
			ConnectedAt:  time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC),
		}).Return(nil)

		resp, err := h.Handle(ctx, connectRequest(map[string]string{"token": token}, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Body, "user-7")
		registry.AssertExpectations(t)
	})

	t.Run("bearer header", func(t *testing.T) {
		registry := new(mockRegistry)
		h, token := newHandler(t, registry)
		registry.On("Save", ctx, mock.Anything).Return(nil)

		resp, err := h.Handle(ctx, connectRequest(nil, map[string]string{"authorization": "Bearer " + token}))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("rejected tokens", func(t *testing.T) {
		for name, query := range map[string]map[string]string{
			"missing": nil,
			"forged":  {"token": "eyJhbGciOiJIUzI1NiJ9.e30.bad"},
		} {
			registry := new(mockRegistry)
			h, _ := newHandler(t, registry)
			resp, err := h.Handle(ctx, connectRequest(query, nil))
			require.NoError(t, err, name)
			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, name)
			registry.AssertNotCalled(t, "Save", mock.Anything, mock.Anything)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		registry := new(mockRegistry)
		h, token := newHandler(t, registry)
		registry.On("Save", ctx, mock.Anything).Return(errors.New("throttled"))

		resp, err := h.Handle(ctx, connectRequest(map[string]string{"token": token}, nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestDisconnect(t *testing.T) {
	ctx := context.Background()
	registry := new(mockRegistry)
	h, _ := newHandler(t, registry)
	registry.On("Delete", ctx, "conn-1").Return(errors.New("gone already"))

	req := connectRequest(nil, nil)
	req.RequestContext.RouteKey = "$disconnect"
	resp, err := h.Handle(ctx, req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	registry.AssertExpectations(t)
}
