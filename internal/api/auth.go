package api

import (
	"context"
	"errors"
	"net/http"
	neturl "net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"taskdeck/internal/logging"
	"taskdeck/internal/model"
)

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type SignupRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login exchanges credentials for a bearer token using the OAuth2 password grant against
// /auth/token. Rejected credentials come back as KindInvalidCredentials with the server detail.
func (c *Client) Login(ctx context.Context, username, password string) (TokenResponse, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return TokenResponse{}, ValidationError("username and password are required")
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	url, path := c.backend("/auth/token")
	ctx, span := c.tracer.Start(ctx, "Login",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodPost),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	cfg := &oauth2.Config{
		Endpoint: oauth2.Endpoint{
			TokenURL:  url,
			AuthStyle: oauth2.AuthStyleInParams,
		},
	}
	start := time.Now()
	tok, err := cfg.PasswordCredentialsToken(context.WithValue(ctx, oauth2.HTTPClient, c.http), username, password)
	fields := []zap.Field{
		zap.String("op", "Login"),
		zap.String("path", path),
		zap.String("username", logging.SanitizeString(username, 100)),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		ae := loginError(ctx, err)
		span.RecordError(ae)
		span.SetStatus(codes.Error, string(ae.Kind))
		c.log.Warn("login failed", append(fields, zap.String("kind", string(ae.Kind)), zap.Int("status", ae.Status))...)
		return TokenResponse{}, ae
	}
	c.log.Info("login succeeded", append(fields, zap.String("token", logging.MaskToken(tok.AccessToken)))...)
	return TokenResponse{AccessToken: tok.AccessToken, TokenType: tok.TokenType}, nil
}

func loginError(ctx context.Context, err error) *Error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) && re.Response != nil {
		status := re.Response.StatusCode
		detail := extractDetail(re.Body, status)
		if status == http.StatusBadRequest || status == http.StatusUnauthorized {
			return &Error{Kind: KindInvalidCredentials, Status: status, Detail: detail, Err: err}
		}
		return &Error{Kind: KindHTTP, Status: status, Detail: detail, Err: err}
	}
	var ue *neturl.Error
	if ctx.Err() != nil || errors.As(err, &ue) {
		return transportError(ctx, err)
	}
	// Anything else is a token body the oauth2 package could not use.
	return &Error{Kind: KindDecode, Detail: "unexpected token response from server", Err: err}
}

// Signup registers a user. It does not log in.
func (c *Client) Signup(ctx context.Context, req SignupRequest) (model.User, error) {
	var out model.User
	url, path := c.backend("/auth/signup")
	if err := c.do(ctx, call{op: "Signup", method: http.MethodPost, url: url, path: path, body: req, out: &out}); err != nil {
		return model.User{}, err
	}
	return out, nil
}

func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var out model.User
	url, path := c.backend("/auth/me")
	if err := c.do(ctx, call{op: "CurrentUser", method: http.MethodGet, url: url, path: path, auth: authRequired, out: &out}); err != nil {
		return model.User{}, err
	}
	return out, nil
}
