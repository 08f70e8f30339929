package session

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/dataportal/internal/portal"
	"github.com/runnerr0/dataportal/internal/storage"
)

func openTestStore(t *testing.T) *storage.SQLiteStore {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db).Run())
	store, err := storage.NewSQLiteStore(db)
	require.NoError(t, err)
	return store
}

var admin = portal.User{ID: 1, Email: "dean@uni.edu", Username: "dean", DisplayName: "Dean", RoleID: RoleAdmin}

func TestManager_BeginPersistsBothKeys(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	m := NewManager(store, nil)

	require.NoError(t, m.Begin(ctx, "tok-1", admin))

	tok, err := store.GetState(ctx, TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", tok)

	user, err := store.GetState(ctx, UserKey)
	require.NoError(t, err)
	assert.Contains(t, user, `"role_id":3`)

	assert.True(t, m.Authenticated())
	assert.Equal(t, admin, m.Current().User)
}

func TestManager_RestoreAfterRestart(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, NewManager(store, nil).Begin(ctx, "tok-1", admin))

	restarted := NewManager(store, nil)
	require.NoError(t, restarted.Restore(ctx))

	assert.Equal(t, "tok-1", restarted.Token())
	assert.Equal(t, admin, restarted.Current().User)
}

func TestManager_LogoutClearsBothKeys(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	m := NewManager(store, nil)
	require.NoError(t, m.Begin(ctx, "tok-1", admin))

	require.NoError(t, m.Logout(ctx))

	_, err := store.GetState(ctx, TokenKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = store.GetState(ctx, UserKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	assert.Empty(t, m.Token())
	assert.Nil(t, m.Current())
}

func TestManager_RestartAfterLogoutResolvesToLogin(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	m := NewManager(store, nil)
	require.NoError(t, m.Begin(ctx, "tok-1", admin))
	require.NoError(t, m.Logout(ctx))

	restarted := NewManager(store, nil)
	require.NoError(t, restarted.Restore(ctx))

	assert.Nil(t, restarted.Current())
	assert.Equal(t, RouteLogin, Resolve(RouteSections, restarted.Current()))
	assert.Equal(t, RouteLogin, Resolve(RouteHome, restarted.Current()))
}

func TestManager_RestoreDiscardsBadProfile(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	require.NoError(t, store.SetStates(ctx, map[string]string{
		TokenKey: "tok-1",
		UserKey:  "{not json",
	}))

	m := NewManager(store, nil)
	require.NoError(t, m.Restore(ctx))

	assert.Equal(t, "tok-1", m.Token())
	assert.Equal(t, portal.User{}, m.Current().User)
	_, err := store.GetState(ctx, UserKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestManager_BeginRejectsEmptyToken(t *testing.T) {
	m := NewManager(openTestStore(t), nil)
	assert.Error(t, m.Begin(context.Background(), "", admin))
	assert.False(t, m.Authenticated())
}

func TestManager_CurrentIsACopy(t *testing.T) {
	m := NewManager(openTestStore(t), nil)
	require.NoError(t, m.Begin(context.Background(), "tok-1", admin))

	s := m.Current()
	s.Token = "tampered"
	assert.Equal(t, "tok-1", m.Token())
}

func TestResolve(t *testing.T) {
	withRole := func(role int) *Session {
		return &Session{Token: "t", User: portal.User{RoleID: role}}
	}

	tests := []struct {
		name  string
		route Route
		sess  *Session
		want  Route
	}{
		{"no session goes to login", RouteCreateUser, nil, RouteLogin},
		{"empty token goes to login", RouteSections, &Session{}, RouteLogin},
		{"login is public", RouteLogin, nil, RouteLogin},
		{"signup is public", RouteSignup, nil, RouteSignup},
		{"admin sees create-user", RouteCreateUser, withRole(RoleAdmin), RouteCreateUser},
		{"data manager redirected from create-user", RouteCreateUser, withRole(RoleDataManager), RouteHome},
		{"viewer redirected from create-user", RouteCreateUser, withRole(1), RouteHome},
		{"data manager may upload", RouteUpload, withRole(RoleDataManager), RouteUpload},
		{"admin may upload", RouteUpload, withRole(RoleAdmin), RouteUpload},
		{"viewer redirected from upload", RouteUpload, withRole(1), RouteHome},
		{"any role sees sections", RouteSections, withRole(1), RouteSections},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Resolve(tt.route, tt.sess))
		})
	}
}

func TestGuard(t *testing.T) {
	assert.ErrorIs(t, Guard(RouteUpload, nil), ErrNoSession)
	assert.ErrorIs(t, Guard(RouteUpload, &Session{Token: "t", User: portal.User{RoleID: 1}}), ErrForbiddenRoute)
	assert.NoError(t, Guard(RouteUpload, &Session{Token: "t", User: portal.User{RoleID: RoleAdmin}}))
}

func TestInspect(t *testing.T) {
	iat := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)
	exp := iat.Add(24 * time.Hour)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "42",
		"iat": iat.Unix(),
		"exp": exp.Unix(),
	}).SignedString([]byte("secret"))
	require.NoError(t, err)

	info := Inspect(token)
	assert.False(t, info.Opaque)
	assert.Equal(t, "42", info.Subject)
	assert.True(t, info.IssuedAt.Equal(iat))
	assert.True(t, info.ExpiresAt.Equal(exp))
}

func TestInspect_NumericSubject(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": 7}).SignedString([]byte("k"))
	require.NoError(t, err)
	assert.Equal(t, "7", Inspect(token).Subject)
}

func TestInspect_Opaque(t *testing.T) {
	assert.True(t, Inspect("not-a-jwt").Opaque)
}
