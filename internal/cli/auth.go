package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/runnerr0/dataportal/internal/api"
	"github.com/runnerr0/dataportal/internal/portal"
	"github.com/runnerr0/dataportal/internal/session"
)

func roleLabel(u portal.User) string {
	if u.RoleName != "" {
		return fmt.Sprintf("%s (role %d)", u.RoleName, u.RoleID)
	}
	return fmt.Sprintf("role %d", u.RoleID)
}

// Execute implements the go-flags Commander interface for LoginCommand.
func (c *LoginCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *LoginCommand) run(ctx context.Context, env *appEnv) error {
	if c.Email == "" {
		return fmt.Errorf("--email is required for login")
	}
	password := c.Password
	if password == "" {
		var err error
		if password, err = env.prompt("Password: "); err != nil {
			return err
		}
	}

	resp, err := env.client.Login(ctx, api.LoginRequest{Email: c.Email, Password: password})
	if err != nil {
		return err
	}
	return beginSession(ctx, env, resp)
}

// beginSession stores a fresh session and reports who is logged in.
func beginSession(ctx context.Context, env *appEnv, resp *api.AuthResponse) error {
	if err := env.session.Begin(ctx, resp.Token, resp.User); err != nil {
		return err
	}
	if env.json {
		return writeJSON(env.out, map[string]interface{}{"logged_in": true, "user": resp.User})
	}
	name := resp.User.DisplayName
	if name == "" {
		name = resp.User.Email
	}
	fmt.Fprintln(env.out, okStyle.Sprintf("Logged in as %s, %s.", name, roleLabel(resp.User)))
	return nil
}

// Execute implements the go-flags Commander interface for SignupCommand.
func (c *SignupCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *SignupCommand) run(ctx context.Context, env *appEnv) error {
	password := c.Password
	if password == "" && c.Email != "" {
		var err error
		if password, err = env.prompt("Password: "); err != nil {
			return err
		}
	}

	req := api.SignupRequest{
		Email:       c.Email,
		Password:    password,
		Username:    c.Username,
		DisplayName: c.DisplayName,
		RoleID:      c.RoleID,
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if err := checkRole(ctx, env, req.RoleID); err != nil {
		return err
	}

	resp, err := env.client.Signup(ctx, req)
	if err != nil {
		return err
	}
	return beginSession(ctx, env, resp)
}

// checkRole rejects a role id the backend does not list. When the list
// cannot be fetched the backend is left to decide.
func checkRole(ctx context.Context, env *appEnv, roleID int) error {
	roles, err := env.client.Roles(ctx)
	if err != nil || len(roles) == 0 {
		env.log.Debug("cli", "role list unavailable, skipping role check", map[string]interface{}{"error": err})
		return nil
	}
	for _, r := range roles {
		if r.ID == roleID {
			return nil
		}
	}
	return fmt.Errorf("unknown role id %d; run 'dataportal roles' to list them", roleID)
}

// Execute implements the go-flags Commander interface for LogoutCommand.
func (c *LogoutCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *LogoutCommand) run(ctx context.Context, env *appEnv) error {
	wasLoggedIn := env.session.Authenticated()
	if err := env.session.Logout(ctx); err != nil {
		return err
	}
	if env.json {
		return writeJSON(env.out, map[string]interface{}{"logged_out": true})
	}
	if wasLoggedIn {
		fmt.Fprintln(env.out, "Logged out.")
	} else {
		fmt.Fprintln(env.out, "No session was stored.")
	}
	return nil
}

type whoamiJSON struct {
	User      portal.User `json:"user"`
	Subject   string      `json:"token_subject,omitempty"`
	IssuedAt  string      `json:"token_issued_at,omitempty"`
	ExpiresAt string      `json:"token_expires_at,omitempty"`
	Opaque    bool        `json:"token_opaque"`
}

// Execute implements the go-flags Commander interface for WhoamiCommand.
func (c *WhoamiCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *WhoamiCommand) run(ctx context.Context, env *appEnv) error {
	sess := env.session.Current()
	if sess == nil {
		renderLoginView(env)
		return nil
	}
	info := session.Inspect(sess.Token)

	if env.json {
		out := whoamiJSON{User: sess.User, Subject: info.Subject, Opaque: info.Opaque}
		if !info.IssuedAt.IsZero() {
			out.IssuedAt = info.IssuedAt.UTC().Format(time.RFC3339)
		}
		if !info.ExpiresAt.IsZero() {
			out.ExpiresAt = info.ExpiresAt.UTC().Format(time.RFC3339)
		}
		return writeJSON(env.out, out)
	}

	u := sess.User
	fmt.Fprintf(env.out, "Name:      %s\n", u.DisplayName)
	fmt.Fprintf(env.out, "Username:  %s\n", u.Username)
	fmt.Fprintf(env.out, "Email:     %s\n", u.Email)
	fmt.Fprintf(env.out, "Role:      %s\n", roleLabel(u))

	if info.Opaque {
		fmt.Fprintln(env.out, "Token:     opaque")
		return nil
	}
	if info.Subject != "" {
		fmt.Fprintf(env.out, "Subject:   %s\n", info.Subject)
	}
	if !info.IssuedAt.IsZero() {
		fmt.Fprintf(env.out, "Issued:    %s\n", humanize.Time(info.IssuedAt))
	}
	if !info.ExpiresAt.IsZero() {
		fmt.Fprintf(env.out, "Expires:   %s\n", humanize.Time(info.ExpiresAt))
	}
	return nil
}

// Execute implements the go-flags Commander interface for RolesCommand.
func (c *RolesCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *RolesCommand) run(ctx context.Context, env *appEnv) error {
	roles, err := env.client.Roles(ctx)
	if err != nil {
		return err
	}
	if env.json {
		return writeJSON(env.out, map[string]interface{}{"roles": roles})
	}

	rows := make([][]string, len(roles))
	for i, r := range roles {
		rows[i] = []string{fmt.Sprint(r.ID), r.Name}
	}
	renderTable(env.out, []string{"ID", "ROLE"}, rows)
	return nil
}
