package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kursadbilgin/auth-gate/internal/domain"
	"github.com/kursadbilgin/auth-gate/internal/service"
	"github.com/kursadbilgin/auth-gate/internal/transport"
)

type fakeAuthVerifier struct {
	verifyFn func(ctx context.Context, email, secret string) (*service.VerifyResult, error)
}

func (f *fakeAuthVerifier) Verify(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
	return f.verifyFn(ctx, email, secret)
}

func newLoginTestApp(t *testing.T, verifier AuthVerifier, middleware ...fiber.Handler) *fiber.App {
	t.Helper()

	app := fiber.New(fiber.Config{
		ErrorHandler: transport.ErrorHandler(zap.NewNop()),
	})
	if err := RegisterAuthRoutes(app.Group("/v1"), verifier, middleware...); err != nil {
		t.Fatalf("RegisterAuthRoutes() error = %v", err)
	}
	return app
}

func postLogin(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()

	req := httptest.NewRequest("POST", "/v1/auth/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test() error = %v", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read body error = %v", err)
	}

	var decoded map[string]any
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &decoded); err != nil {
			t.Fatalf("unmarshal body %q error = %v", raw, err)
		}
	}
	return resp.StatusCode, decoded
}

func TestLoginReturnsToken(t *testing.T) {
	t.Parallel()

	verifier := &fakeAuthVerifier{verifyFn: func(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
		if email != "user@example.com" || secret != "correct-pw" {
			t.Fatalf("Verify(%q, %q) unexpected arguments", email, secret)
		}
		return &service.VerifyResult{
			Token:     "signed-token",
			ExpiresAt: time.Now().Add(8 * time.Hour),
			ExpiresIn: 8 * time.Hour,
			AccountID: "acc-1",
			Role:      domain.RoleCustomer,
		}, nil
	}}

	app := newLoginTestApp(t, verifier)

	status, body := postLogin(t, app, `{"email":"user@example.com","password":"correct-pw"}`)
	if status != fiber.StatusOK {
		t.Fatalf("status = %d, want 200", status)
	}
	if body["token"] != "signed-token" {
		t.Fatalf("token = %v, want signed-token", body["token"])
	}
	if body["expiresIn"] != float64(8*60*60) {
		t.Fatalf("expiresIn = %v, want 28800", body["expiresIn"])
	}
	user, ok := body["user"].(map[string]any)
	if !ok {
		t.Fatalf("user = %v, want object", body["user"])
	}
	if user["id"] != "acc-1" || user["role"] != "CUSTOMER" {
		t.Fatalf("user = %v, want acc-1/CUSTOMER", user)
	}
}

func TestLoginInvalidCredentialIsBadRequest(t *testing.T) {
	t.Parallel()

	verifier := &fakeAuthVerifier{verifyFn: func(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
		return nil, &domain.InvalidCredentialError{RemainingAttempts: 2}
	}}

	app := newLoginTestApp(t, verifier)

	status, body := postLogin(t, app, `{"email":"user@example.com","password":"wrong"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	message, _ := body["error"].(string)
	if !strings.Contains(message, "invalid email or password") {
		t.Fatalf("error = %q, want the generic credential message", message)
	}
	if !strings.Contains(message, "2 attempt(s) remaining") {
		t.Fatalf("error = %q, want the remaining attempts hint", message)
	}
}

func TestLoginUnknownEmailMatchesWrongPassword(t *testing.T) {
	t.Parallel()

	verifier := &fakeAuthVerifier{verifyFn: func(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
		return nil, domain.ErrInvalidCredential
	}}

	app := newLoginTestApp(t, verifier)

	status, body := postLogin(t, app, `{"email":"nobody@example.com","password":"whatever"}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
	if body["error"] != "invalid email or password" {
		t.Fatalf("error = %v, want the generic credential message", body["error"])
	}
}

func TestLoginLockoutIsTooManyRequests(t *testing.T) {
	t.Parallel()

	verifier := &fakeAuthVerifier{verifyFn: func(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
		return nil, &domain.LockoutError{RetryAfterMinutes: 7}
	}}

	app := newLoginTestApp(t, verifier)

	status, body := postLogin(t, app, `{"email":"user@example.com","password":"pw"}`)
	if status != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", status)
	}
	if body["error"] != "locked, retry in 7 minute(s)" {
		t.Fatalf("error = %v, want the lockout message", body["error"])
	}
}

func TestLoginMissingFieldsIsBadRequest(t *testing.T) {
	t.Parallel()

	verifier := &fakeAuthVerifier{verifyFn: func(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
		return nil, domain.ErrValidation
	}}

	app := newLoginTestApp(t, verifier)

	status, _ := postLogin(t, app, `{"email":"","password":""}`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestLoginMalformedBodyIsBadRequest(t *testing.T) {
	t.Parallel()

	verifier := &fakeAuthVerifier{verifyFn: func(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
		t.Fatal("Verify must not run for a malformed body")
		return nil, nil
	}}

	app := newLoginTestApp(t, verifier)

	status, _ := postLogin(t, app, `{not-json`)
	if status != fiber.StatusBadRequest {
		t.Fatalf("status = %d, want 400", status)
	}
}

func TestLoginSystemErrorBodyIsGeneric(t *testing.T) {
	t.Parallel()

	verifier := &fakeAuthVerifier{verifyFn: func(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
		return nil, errors.New("pq: connection reset")
	}}

	app := newLoginTestApp(t, verifier)

	status, body := postLogin(t, app, `{"email":"user@example.com","password":"pw"}`)
	if status != fiber.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", status)
	}
	if body["error"] != "internal server error" {
		t.Fatalf("error = %v, internal detail must not leak", body["error"])
	}
}

func TestLoginThrottleMiddlewareShortCircuits(t *testing.T) {
	t.Parallel()

	verifier := &fakeAuthVerifier{verifyFn: func(ctx context.Context, email, secret string) (*service.VerifyResult, error) {
		t.Fatal("Verify must not run when throttled")
		return nil, nil
	}}

	deny := func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusTooManyRequests, "too many login requests, slow down")
	}

	app := newLoginTestApp(t, verifier, deny)

	status, body := postLogin(t, app, `{"email":"user@example.com","password":"pw"}`)
	if status != fiber.StatusTooManyRequests {
		t.Fatalf("status = %d, want 429", status)
	}
	if body["error"] != "too many login requests, slow down" {
		t.Fatalf("error = %v, want the throttle message", body["error"])
	}
}
