package cli

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/dataportal/internal/session"
	"github.com/runnerr0/dataportal/internal/storage"
)

func authBackend(t *testing.T, token string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login", "/auth/signup":
			var body map[string]interface{}
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			if body["password"] != "secret" {
				writeJSONResponse(w, http.StatusUnauthorized, map[string]string{"message": "Invalid email or password"})
				return
			}
			writeJSONResponse(w, http.StatusOK, map[string]interface{}{
				"token": token,
				"user": map[string]interface{}{
					"id": 7, "email": body["email"], "username": "asha",
					"display_name": "Asha Rao", "role_id": 2, "role_name": "Data Manager",
				},
			})
		case "/auth/roles":
			writeJSONResponse(w, http.StatusOK, map[string]interface{}{"roles": []map[string]interface{}{
				{"id": 1, "name": "Viewer"},
				{"id": 2, "name": "Data Manager"},
				{"id": 3, "name": "Admin"},
			}})
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestLogin_StoresSession(t *testing.T) {
	env, out := newTestEnv(t, authBackend(t, "tok-abc"))

	cmd := &LoginCommand{Email: "asha@uni.edu", Password: "secret", env: env}
	require.NoError(t, cmd.Execute(nil))

	assert.Contains(t, out.String(), "Logged in as Asha Rao, Data Manager (role 2).")
	tok, err := env.store.GetState(context.Background(), session.TokenKey)
	require.NoError(t, err)
	assert.Equal(t, "tok-abc", tok)
	assert.Equal(t, 2, env.session.Current().User.RoleID)
}

func TestLogin_PromptsForPassword(t *testing.T) {
	env, out := newTestEnv(t, authBackend(t, "tok-abc"))
	withInput(env, "secret\n")

	cmd := &LoginCommand{Email: "asha@uni.edu", env: env}
	require.NoError(t, cmd.Execute(nil))

	assert.Contains(t, out.String(), "Password: ")
	assert.True(t, env.session.Authenticated())
}

func TestLogin_RequiresEmail(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	err := (&LoginCommand{env: env}).Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--email is required")
}

func TestLogin_BadCredentialsShowBackendMessage(t *testing.T) {
	env, _ := newTestEnv(t, authBackend(t, "tok-abc"))

	err := (&LoginCommand{Email: "asha@uni.edu", Password: "wrong", env: env}).Execute(nil)
	require.Error(t, err)
	assert.Equal(t, "Invalid email or password", err.Error())
	assert.False(t, env.session.Authenticated())
}

func TestLogin_JSON(t *testing.T) {
	env, out := newTestEnv(t, authBackend(t, "tok-abc"))
	env.json = true

	require.NoError(t, (&LoginCommand{Email: "asha@uni.edu", Password: "secret", env: env}).Execute(nil))

	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, true, got["logged_in"])
	assert.Equal(t, "asha", got["user"].(map[string]interface{})["username"])
}

func TestSignup_RejectsUnknownRole(t *testing.T) {
	env, _ := newTestEnv(t, authBackend(t, "tok-abc"))

	cmd := &SignupCommand{
		Email: "new@uni.edu", Password: "secret", Username: "new",
		DisplayName: "New Person", RoleID: 9, env: env,
	}
	err := cmd.Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown role id 9")
	assert.False(t, env.session.Authenticated())
}

func TestSignup_LogsIn(t *testing.T) {
	env, out := newTestEnv(t, authBackend(t, "tok-new"))

	cmd := &SignupCommand{
		Email: "new@uni.edu", Password: "secret", Username: "new",
		DisplayName: "New Person", RoleID: 1, env: env,
	}
	require.NoError(t, cmd.Execute(nil))
	assert.Equal(t, "tok-new", env.session.Token())
	assert.Contains(t, out.String(), "Logged in as")
}

func TestSignup_ValidationBeforeRequest(t *testing.T) {
	env, _ := newTestEnv(t, nil)
	err := (&SignupCommand{Email: "not-an-email", Password: "x", Username: "u", DisplayName: "U", RoleID: 1, env: env}).Execute(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "email")
}

func TestLogout_ClearsBothKeysAndShowsLoginView(t *testing.T) {
	env, out := newTestEnv(t, nil)
	loginAs(t, env, 1)
	ctx := context.Background()

	require.NoError(t, (&LogoutCommand{env: env}).Execute(nil))
	assert.Contains(t, out.String(), "Logged out.")

	_, err := env.store.GetState(ctx, session.TokenKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = env.store.GetState(ctx, session.UserKey)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	// A fresh start against the same store has no session.
	restarted := session.NewManager(env.store, nil)
	require.NoError(t, restarted.Restore(ctx))
	env.session = restarted

	out.Reset()
	require.NoError(t, (&SectionsCommand{env: env}).Execute(nil))
	assert.Contains(t, out.String(), "You are not logged in.")
}

func TestLogout_WithoutSession(t *testing.T) {
	env, out := newTestEnv(t, nil)
	require.NoError(t, (&LogoutCommand{env: env}).Execute(nil))
	assert.Contains(t, out.String(), "No session was stored.")
}

func TestWhoami_NoSessionShowsLoginView(t *testing.T) {
	env, out := newTestEnv(t, nil)
	require.NoError(t, (&WhoamiCommand{env: env}).Execute(nil))
	assert.Contains(t, out.String(), "You are not logged in.")
}

func TestWhoami_ShowsProfileAndClaims(t *testing.T) {
	env, out := newTestEnv(t, nil)
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "7",
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
		"exp": time.Now().Add(22 * time.Hour).Unix(),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	loginAs(t, env, session.RoleAdmin)
	require.NoError(t, env.session.Begin(context.Background(), token, env.session.Current().User))

	require.NoError(t, (&WhoamiCommand{env: env}).Execute(nil))
	s := out.String()
	assert.Contains(t, s, "Asha Rao")
	assert.Contains(t, s, "role 3")
	assert.Contains(t, s, "Subject:   7")
	assert.Contains(t, s, "hours ago")
	assert.Contains(t, s, "from now")
}

func TestWhoami_OpaqueToken(t *testing.T) {
	env, out := newTestEnv(t, nil)
	loginAs(t, env, 1)
	require.NoError(t, (&WhoamiCommand{env: env}).Execute(nil))
	assert.Contains(t, out.String(), "Token:     opaque")
}

func TestRoles_Table(t *testing.T) {
	env, out := newTestEnv(t, authBackend(t, ""))
	require.NoError(t, (&RolesCommand{env: env}).Execute(nil))

	s := out.String()
	assert.Contains(t, s, "ROLE")
	assert.Contains(t, s, "Data Manager")
	assert.Contains(t, s, "3   Admin")
}
