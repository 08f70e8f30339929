package cli

import (
	"context"
	"fmt"

	"github.com/runnerr0/dataportal/internal/api"
	"github.com/runnerr0/dataportal/internal/session"
)

// Execute implements the go-flags Commander interface for CreateUserCommand.
func (c *CreateUserCommand) Execute(args []string) error {
	return withEnv(c.globals, c.env, c.run)
}

func (c *CreateUserCommand) run(ctx context.Context, env *appEnv) error {
	ok, err := requireRoute(env, session.RouteCreateUser)
	if !ok {
		return err
	}

	password := c.Password
	if password == "" && c.Email != "" {
		if password, err = env.prompt("Initial password: "); err != nil {
			return err
		}
	}

	req := api.CreateUserRequest{
		Email:       c.Email,
		Username:    c.Username,
		DisplayName: c.DisplayName,
		Password:    password,
		RoleID:      c.RoleID,
	}
	if err := req.Validate(); err != nil {
		return err
	}
	if err := checkRole(ctx, env, req.RoleID); err != nil {
		return err
	}

	resp, err := env.client.CreateUser(ctx, env.session.Token(), req)
	if err != nil {
		return userFacing(err)
	}

	if env.json {
		return writeJSON(env.out, map[string]interface{}{"created": true, "message": resp.Message, "user": resp.User})
	}

	msg := resp.Message
	if msg == "" {
		msg = fmt.Sprintf("User %s created", req.Username)
	}
	fmt.Fprintln(env.out, okStyle.Sprint(msg))
	fmt.Fprintln(env.out)
	renderHome(env)
	return nil
}
