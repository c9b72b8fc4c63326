package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"firebase.google.com/go/v4/auth"
)

// Account is the identity returned by the platform
type Account struct {
	UID   string `json:"uid"`
	Email string `json:"email"`
}

// Client talks to Firebase Authentication. Password flows go through the
// Identity Toolkit REST API; token verification and user creation use the
// Admin SDK when it is configured.
type Client struct {
	admin   *auth.Client
	apiKey  string
	baseURL string
	http    *http.Client
}

// NewClient creates an identity client. admin may be nil.
func NewClient(admin *auth.Client, apiKey, baseURL string) *Client {
	return &Client{
		admin:   admin,
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
	}
}

// SignInWithPassword verifies an email and password
func (c *Client) SignInWithPassword(ctx context.Context, email, password string) (*Account, error) {
	var resp struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	}
	err := c.post(ctx, "accounts:signInWithPassword", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &Account{UID: resp.LocalID, Email: resp.Email}, nil
}

// CreateUser registers a new email/password account
func (c *Client) CreateUser(ctx context.Context, email, password string) (*Account, error) {
	if c.admin != nil {
		params := (&auth.UserToCreate{}).Email(email).Password(password)
		record, err := c.admin.CreateUser(ctx, params)
		if err != nil {
			return nil, adminError(err)
		}
		return &Account{UID: record.UID, Email: record.Email}, nil
	}

	var resp struct {
		LocalID string `json:"localId"`
		Email   string `json:"email"`
	}
	err := c.post(ctx, "accounts:signUp", map[string]interface{}{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}, &resp)
	if err != nil {
		return nil, err
	}
	return &Account{UID: resp.LocalID, Email: resp.Email}, nil
}

// SendPasswordReset asks the platform to email a reset link
func (c *Client) SendPasswordReset(ctx context.Context, email string) error {
	return c.post(ctx, "accounts:sendOobCode", map[string]interface{}{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}, nil)
}

// VerifyIDToken checks a Firebase ID token issued to a client app
func (c *Client) VerifyIDToken(ctx context.Context, idToken string) (*Account, error) {
	if c.admin == nil {
		return nil, ErrAdminUnavailable
	}
	token, err := c.admin.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, &Error{Code: CodeInvalidCredential, Err: err}
	}
	email, _ := token.Claims["email"].(string)
	return &Account{UID: token.UID, Email: email}, nil
}

func (c *Client) post(ctx context.Context, method string, payload interface{}, out interface{}) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, method, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Code: CodeNetwork, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Code: CodeNetwork, Err: err}
	}

	if resp.StatusCode != http.StatusOK {
		return restError(respBody)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

// restError decodes {"error":{"message":"CODE : detail"}}
func restError(body []byte) error {
	var payload struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Error.Message == "" {
		return &Error{Code: CodeUnknown, Err: errors.New(string(body))}
	}
	code, _, _ := strings.Cut(payload.Error.Message, " ")
	return &Error{Code: Code(code), Err: errors.New(payload.Error.Message)}
}

func adminError(err error) error {
	switch {
	case auth.IsEmailAlreadyExists(err):
		return &Error{Code: CodeEmailExists, Err: err}
	case auth.IsUserNotFound(err):
		return &Error{Code: CodeEmailNotFound, Err: err}
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "email"):
		return &Error{Code: CodeInvalidEmail, Err: err}
	case strings.Contains(msg, "password"):
		return &Error{Code: CodeWeakPassword, Err: err}
	}
	return &Error{Code: CodeUnknown, Err: err}
}
