package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"

	"github.com/runnerr0/dataportal/internal/portal"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
	)
}

// SignupRequest is the body of POST /auth/signup.
type SignupRequest struct {
	Email       string `json:"email"`
	Password    string `json:"password"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	RoleID      int    `json:"role_id"`
}

func (r SignupRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.RoleID, validation.Required, validation.Min(1)),
	)
}

// CreateUserRequest is the body of POST /auth/create-user.
type CreateUserRequest struct {
	Email       string `json:"email"`
	Username    string `json:"username"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	RoleID      int    `json:"role_id"`
}

func (r CreateUserRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, is.Email),
		validation.Field(&r.Username, validation.Required, validation.Length(1, 64)),
		validation.Field(&r.DisplayName, validation.Required, validation.Length(1, 128)),
		validation.Field(&r.Password, validation.Required),
		validation.Field(&r.RoleID, validation.Required, validation.Min(1)),
	)
}

// AuthResponse is returned by login and signup.
type AuthResponse struct {
	Token string      `json:"token"`
	User  portal.User `json:"user"`
}

// Role is one entry of GET /auth/roles.
type Role struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CreateUserResponse is returned by POST /auth/create-user.
type CreateUserResponse struct {
	Message string      `json:"message"`
	User    portal.User `json:"user"`
}

func jsonBody(v interface{}) (*bytes.Reader, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// Login exchanges credentials for a token and profile.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/login", req, "Login failed")
}

// Signup registers an account and returns its token and profile.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	return c.authenticate(ctx, "/auth/signup", req, "Signup failed")
}

func (c *Client) authenticate(ctx context.Context, path string, payload interface{}, defaultMsg string) (*AuthResponse, error) {
	body, err := jsonBody(payload)
	if err != nil {
		return nil, err
	}

	var out AuthResponse
	err = c.do(ctx, request{
		method:      http.MethodPost,
		path:        path,
		body:        body,
		contentType: "application/json",
		defaultMsg:  defaultMsg,
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Token == "" {
		return nil, &FetchError{Status: http.StatusOK, Message: defaultMsg + ": response carried no token"}
	}
	return &out, nil
}

// Roles lists the roles an account can be given.
func (c *Client) Roles(ctx context.Context) ([]Role, error) {
	var out struct {
		Roles []Role `json:"roles"`
	}
	err := c.do(ctx, request{
		method:     http.MethodGet,
		path:       "/auth/roles",
		defaultMsg: "Failed to load roles",
	}, &out)
	if err != nil {
		return nil, err
	}
	if out.Roles == nil {
		out.Roles = []Role{}
	}
	return out.Roles, nil
}

// CreateUser provisions an account. The caller's token must belong to an
// administrator; the backend enforces that.
func (c *Client) CreateUser(ctx context.Context, token string, req CreateUserRequest) (*CreateUserResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	body, err := jsonBody(req)
	if err != nil {
		return nil, err
	}

	var out CreateUserResponse
	err = c.do(ctx, request{
		method:       http.MethodPost,
		path:         "/auth/create-user",
		token:        token,
		body:         body,
		contentType:  "application/json",
		defaultMsg:   "Failed to create user",
		authRequired: true,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}
