package websocket

import (
	"context"
	"fmt"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var wsTestSecret = []byte("ws-test-secret")

type fakeUserFetcher struct {
	users map[string]*model.User
}

func (f *fakeUserFetcher) GetByID(_ context.Context, id string) (*model.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, fmt.Errorf("user %s not found", id)
	}
	return user, nil
}

func (f *fakeUserFetcher) add(role string, active bool) *model.User {
	user := &model.User{
		ID:       uuid.New(),
		Username: "staff",
		Role:     role,
		IsActive: active,
	}
	f.users[user.ID.String()] = user
	return user
}

func newFakeUserFetcher() *fakeUserFetcher {
	return &fakeUserFetcher{users: make(map[string]*model.User)}
}

func signToken(t *testing.T, sub, role string, secret []byte) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  sub,
		"role": role,
		"exp":  time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString(secret)
	require.NoError(t, err)
	return signed
}

func TestAuthorizeClientStaffRoles(t *testing.T) {
	users := newFakeUserFetcher()

	admin := users.add(model.RoleAdmin, true)
	manager := users.add(model.RoleFleetManager, true)

	for _, user := range []*model.User{admin, manager} {
		token := signToken(t, user.ID.String(), user.Role, wsTestSecret)
		assert.NoError(t, authorizeClient(context.Background(), token, wsTestSecret, users))
	}
}

func TestAuthorizeClientDemotedUser(t *testing.T) {
	users := newFakeUserFetcher()
	user := users.add(model.RoleCustomer, true)

	// The token still claims fleet-manager, but the DB record rules.
	token := signToken(t, user.ID.String(), model.RoleFleetManager, wsTestSecret)

	err := authorizeClient(context.Background(), token, wsTestSecret, users)
	assert.ErrorIs(t, err, errForbidden)
}

func TestAuthorizeClientDeactivatedUser(t *testing.T) {
	users := newFakeUserFetcher()
	user := users.add(model.RoleAdmin, false)

	token := signToken(t, user.ID.String(), model.RoleAdmin, wsTestSecret)

	err := authorizeClient(context.Background(), token, wsTestSecret, users)
	assert.ErrorIs(t, err, errUnauthorized)
	assert.NotErrorIs(t, err, errForbidden)
}

func TestAuthorizeClientDeletedUser(t *testing.T) {
	users := newFakeUserFetcher()

	token := signToken(t, uuid.NewString(), model.RoleAdmin, wsTestSecret)

	err := authorizeClient(context.Background(), token, wsTestSecret, users)
	assert.ErrorIs(t, err, errUnauthorized)
}

func TestAuthorizeClientBadTokens(t *testing.T) {
	users := newFakeUserFetcher()
	user := users.add(model.RoleAdmin, true)

	cases := map[string]string{
		"empty":        "",
		"garbage":      "not-a-jwt",
		"wrong secret": signToken(t, user.ID.String(), model.RoleAdmin, []byte("other-secret")),
		"missing sub":  signToken(t, "", model.RoleAdmin, wsTestSecret),
	}
	for name, token := range cases {
		t.Run(name, func(t *testing.T) {
			err := authorizeClient(context.Background(), token, wsTestSecret, users)
			assert.ErrorIs(t, err, errUnauthorized)
		})
	}
}

func TestBroadcastEventDropsWhenHubIdle(t *testing.T) {
	hub := NewHub()

	// No Run loop draining the channel; the send must not block.
	done := make(chan struct{})
	go func() {
		hub.BroadcastEvent("rental.created", map[string]string{"id": "x"})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("BroadcastEvent blocked with no hub loop running")
	}
}

func TestBroadcastEventUnmarshalablePayload(t *testing.T) {
	hub := NewHub()

	received := make(chan []byte, 1)
	go func() {
		received <- <-hub.Broadcast
	}()

	// Channels cannot be marshalled; the event is dropped without panicking.
	hub.BroadcastEvent("rental.created", make(chan int))

	select {
	case msg := <-received:
		t.Fatalf("expected no broadcast, got %s", msg)
	case <-time.After(50 * time.Millisecond):
	}
}
