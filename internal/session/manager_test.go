package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/apperr"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/models"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/testutil"
)

func TestManager_LoginGetLogout(t *testing.T) {
	store := newMemStore()
	up := &fakeUpstream{loginPair: models.TokenPair{
		AccessToken:  testutil.UpstreamToken(t, "u-7", "admin", time.Hour),
		RefreshToken: "rt",
	}}
	m := NewManager(store, up, nil, time.Hour)
	ctx := context.Background()

	s, err := m.Login(ctx, "ana@acme.co", "secret", ClientInfo{IPAddress: "10.0.0.1", UserAgent: "test"})
	require.NoError(t, err)
	require.NotEmpty(t, s.ID())
	assert.Equal(t, "10.0.0.1", store.sessions[s.ID()].IPAddress)

	got, err := m.Get(ctx, s.ID())
	require.NoError(t, err)
	assert.Same(t, s, got)

	require.NoError(t, m.Logout(ctx, s.ID()))
	assert.Zero(t, m.Len())
	_, err = m.Get(ctx, s.ID())
	assert.True(t, apperr.IsAuthExpired(err))
}

func TestManager_LoginValidation(t *testing.T) {
	m := NewManager(newMemStore(), &fakeUpstream{}, nil, time.Hour)
	_, err := m.Login(context.Background(), "", "x", ClientInfo{})
	assert.True(t, apperr.IsValidation(err))
}

func TestManager_LoginPropagatesUpstreamError(t *testing.T) {
	up := &fakeUpstream{loginErr: apperr.AuthExpired(nil)}
	m := NewManager(newMemStore(), up, nil, time.Hour)
	_, err := m.Login(context.Background(), "a@b.co", "bad", ClientInfo{})
	assert.True(t, apperr.IsAuthExpired(err))
	assert.Zero(t, m.Len())
}

func TestManager_GetRestoresFromStore(t *testing.T) {
	store := newMemStore()
	up := &fakeUpstream{loginPair: models.TokenPair{AccessToken: testutil.UpstreamToken(t, "u-7", "admin", time.Hour)}}
	first := NewManager(store, up, nil, time.Hour)
	s, err := first.Login(context.Background(), "a@b.co", "pw", ClientInfo{})
	require.NoError(t, err)

	// a second process sharing the store
	second := NewManager(store, up, nil, time.Hour)
	restored, err := second.Get(context.Background(), s.ID())
	require.NoError(t, err)
	assert.Equal(t, "u-7", restored.Profile().UserID)
	assert.Equal(t, 1, second.Len())
}

func TestManager_ExpiredSession(t *testing.T) {
	store := newMemStore()
	up := &fakeUpstream{loginPair: models.TokenPair{AccessToken: testutil.UpstreamToken(t, "u-7", "admin", time.Hour)}}
	m := NewManager(store, up, nil, time.Hour)
	s, err := m.Login(context.Background(), "a@b.co", "pw", ClientInfo{})
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = m.Get(context.Background(), s.ID())
	assert.True(t, apperr.IsAuthExpired(err))
	assert.Zero(t, m.Len())

	_, err = m.Get(context.Background(), "")
	assert.True(t, apperr.IsAuthExpired(err))
}
