// Copyright (c) 2026 Picboard. All rights reserved.
// Author: y.minagawa.pb@gmail.com

package auth

import (
	"context"
	"crypto/subtle"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/minagawa/picboard/internal/platform/apperr"
	"github.com/minagawa/picboard/internal/platform/constants"
	"github.com/minagawa/picboard/internal/platform/sec"
	"github.com/minagawa/picboard/internal/platform/validate"
	"github.com/minagawa/picboard/internal/session"
)

// # Service

// Service implements the authenticated-access use cases.
//
// # Review Process
//
// This service is critical for security. Any changes to hashing, registration,
// or login logic must be reviewed before merging.
type Service struct {
	userRepository UserRepository
	sessions       session.Store
	hasher         *sec.Hasher
	logger         *slog.Logger
}

// NewService constructs a new [Service] with its dependencies.
func NewService(userRepo UserRepository, sessions session.Store, hasher *sec.Hasher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		userRepository: userRepo,
		sessions:       sessions,
		hasher:         hasher,
		logger:         logger,
	}
}

// # Registration Flow

// RegisterInput holds the credentials for a new account.
type RegisterInput struct {
	AccountName string
	Password    string
}

/*
Register validates, hashes, and persists a brand new account, then binds it
to the caller's session.

Description: Registering while already logged in is a no-op that returns the
current identity — the second submit of a double-posted form must not create
a second account or detach the first.

Parameters:
  - ctx: context.Context
  - sessionID: string (opaque id from the session cookie)
  - input: RegisterInput

Returns:
  - *User: The created (or already bound) account
  - error: Validation, Conflict, or storage errors
*/
func (service *Service) Register(ctx context.Context, sessionID string, input RegisterInput) (*User, error) {

	// Already authenticated: return the bound identity untouched.
	if current, err := service.CurrentUser(ctx, sessionID); err != nil {
		return nil, err
	} else if current != nil {
		return current, nil
	}

	// Both rules share one message so the response does not teach an attacker
	// which half of a probe was malformed. Empty values fail their pattern, so
	// no separate Required rule is needed.
	validator := &validate.Validator{}
	validator.Pattern(FieldAccountName, input.AccountName, accountNamePattern, MessageInvalidCredentialFormat).
		Pattern(FieldPassword, input.Password, passwordPattern, MessageInvalidCredentialFormat)

	if err := validator.Err(); err != nil {
		// Mirror the failure into the flash slot like the other failure paths.
		// Best effort.
		_ = service.sessions.SetNotice(ctx, sessionID, MessageInvalidCredentialFormat)
		return nil, err
	}

	// Derive the stored digest. The account name seeds the salt, so it must be
	// final before this point.
	passhash, err := service.hasher.Passhash(input.AccountName, input.Password)
	if err != nil {
		return nil, err
	}

	// Persist. A concurrent registration racing on the same name loses here
	// with a Conflict from the unique constraint.
	id, err := service.userRepository.Create(ctx, input.AccountName, passhash)
	if err != nil {
		if apperr.IsCode(err, "CONFLICT") {
			// Mirror the failure into the flash slot for clients that render
			// notices out of the next feed response. Best effort.
			_ = service.sessions.SetNotice(ctx, sessionID, MessageAccountTaken)
		}
		return nil, err
	}

	user, err := service.userRepository.FindByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("auth_service_register_reload_failed: %w", err)
	}

	// Bind the fresh identity to the session and rotate the CSRF token.
	if err := service.bindSession(ctx, sessionID, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// # Authentication Flow

// LoginInput defines credentials for an authentication attempt.
type LoginInput struct {
	AccountName string
	Password    string
}

/*
Login validates credentials and binds the account to the caller's session.

Description: Missing account, banned account, and wrong password all produce
the identical Unauthorized error. The stored digest is recomputed from the
submitted credentials and compared in constant time.

Parameters:
  - ctx: context.Context
  - sessionID: string
  - input: LoginInput

Returns:
  - *User: The authenticated account
  - error: Unauthorized, Hashing, or session errors
*/
func (service *Service) Login(ctx context.Context, sessionID string, input LoginInput) (*User, error) {

	// Already authenticated: keep the existing binding.
	if current, err := service.CurrentUser(ctx, sessionID); err != nil {
		return nil, err
	} else if current != nil {
		return current, nil
	}

	// Look up the account. The del_flg filter lives in the query, so a banned
	// account takes this same branch as a missing one.
	user, err := service.userRepository.FindActiveByAccountName(ctx, input.AccountName)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			return nil, service.loginFailed(ctx, sessionID)
		}
		return nil, err
	}

	// Recompute the digest from the submitted credentials.
	candidate, err := service.hasher.Passhash(input.AccountName, input.Password)
	if err != nil {
		return nil, err
	}

	// Constant-time comparison of the two hex digests.
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(user.Passhash)) != 1 {
		return nil, service.loginFailed(ctx, sessionID)
	}

	if err := service.bindSession(ctx, sessionID, user.ID); err != nil {
		return nil, err
	}

	return user, nil
}

// loginFailed records the flash notice and returns the one generic error.
func (service *Service) loginFailed(ctx context.Context, sessionID string) error {
	_ = service.sessions.SetNotice(ctx, sessionID, MessageLoginFailed)
	return apperr.Unauthorized(MessageLoginFailed)
}

/*
CurrentUser resolves the session's bound identity.

Description: Returns (nil, nil) for anonymous visitors. A session-store read
failure also degrades to anonymous — the board stays browsable while Redis is
down — but the failure is logged. A binding that points at a deleted user row
is cleared and treated as anonymous.

Parameters:
  - ctx: context.Context
  - sessionID: string ("" for cookieless requests)

Returns:
  - *User: The bound account, or nil when anonymous
  - error: Storage errors other than a missing user row
*/
func (service *Service) CurrentUser(ctx context.Context, sessionID string) (*User, error) {
	if sessionID == "" {
		return nil, nil
	}

	rawUserID, err := service.sessions.Get(ctx, sessionID, session.KeyUserID)
	if err != nil {
		// Degrade to anonymous: identity is a read-path nicety here, and the
		// write paths that must not proceed without the store surface their
		// own session errors.
		service.logger.ErrorContext(ctx, "session_read_degraded_to_anonymous",
			slog.String("error", err.Error()),
		)
		return nil, nil
	}

	if rawUserID == "" {
		return nil, nil
	}

	userID, err := strconv.ParseInt(rawUserID, 10, 64)
	if err != nil {
		// A non-numeric binding is corrupt; clear it rather than erroring on
		// every subsequent request.
		_ = service.sessions.Delete(ctx, sessionID, session.KeyUserID)
		return nil, nil
	}

	user, err := service.userRepository.FindByID(ctx, userID)
	if err != nil {
		if apperr.IsCode(err, "NOT_FOUND") {
			_ = service.sessions.Delete(ctx, sessionID, session.KeyUserID)
			return nil, nil
		}
		return nil, err
	}

	return user, nil
}

/*
RequireUser resolves the session's identity and fails for anonymous visitors.

Returns:
  - *User: The bound account
  - error: apperr.Unauthorized when no identity is bound
*/
func (service *Service) RequireUser(ctx context.Context, sessionID string) (*User, error) {
	user, err := service.CurrentUser(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, apperr.Unauthorized("Authentication required")
	}
	return user, nil
}

/*
Logout unbinds the identity from the session.

Description: Only the user binding is removed; the session id, its CSRF token,
and any pending notice survive. Logging out an already-anonymous session is a
successful no-op.

Parameters:
  - ctx: context.Context
  - sessionID: string

Returns:
  - error: Session-store failures
*/
func (service *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return nil
	}
	return service.sessions.Delete(ctx, sessionID, session.KeyUserID)
}

// # CSRF Tokens

/*
CSRFToken returns the session's token, minting one on first use.

Parameters:
  - ctx: context.Context
  - sessionID: string

Returns:
  - string: 32-char [a-z0-9] token
  - error: Entropy or session-store failures
*/
func (service *Service) CSRFToken(ctx context.Context, sessionID string) (string, error) {
	token, err := service.sessions.Get(ctx, sessionID, session.KeyCSRFToken)
	if err != nil {
		return "", err
	}
	if token != "" {
		return token, nil
	}

	return service.rotateCSRFToken(ctx, sessionID)
}

/*
VerifyCSRF checks a submitted token against the session's stored token.

Description: State-changing submissions must echo the token issued to the
same session. A missing stored token fails too — a fresh session that never
rendered a form has nothing to legitimately echo.

Parameters:
  - ctx: context.Context
  - sessionID: string
  - submitted: string

Returns:
  - error: apperr.Forbidden on mismatch, session-store failures otherwise
*/
func (service *Service) VerifyCSRF(ctx context.Context, sessionID, submitted string) error {
	stored, err := service.sessions.Get(ctx, sessionID, session.KeyCSRFToken)
	if err != nil {
		return err
	}

	if stored == "" || subtle.ConstantTimeCompare([]byte(stored), []byte(submitted)) != 1 {
		return apperr.Forbidden("Invalid CSRF token")
	}

	return nil
}

// rotateCSRFToken mints and stores a fresh token, replacing any existing one.
func (service *Service) rotateCSRFToken(ctx context.Context, sessionID string) (string, error) {
	token, err := sec.NewCSRFToken(constants.CSRFTokenLength)
	if err != nil {
		return "", apperr.Internal(fmt.Errorf("auth_service_csrf_generation_failed: %w", err))
	}

	if err := service.sessions.Set(ctx, sessionID, session.KeyCSRFToken, token); err != nil {
		return "", err
	}

	return token, nil
}

// bindSession writes the identity into the session and rotates the CSRF token
// so a token captured pre-authentication is worthless afterwards.
func (service *Service) bindSession(ctx context.Context, sessionID string, userID int64) error {
	if err := service.sessions.Set(ctx, sessionID, session.KeyUserID, strconv.FormatInt(userID, 10)); err != nil {
		return err
	}

	if _, err := service.rotateCSRFToken(ctx, sessionID); err != nil {
		return err
	}

	return nil
}

// # Flash Notices

// SetNotice stores the one-shot notice for the session. Best effort in most
// call sites; callers that must know pass the error up.
func (service *Service) SetNotice(ctx context.Context, sessionID, message string) error {
	return service.sessions.SetNotice(ctx, sessionID, message)
}

// ConsumeNotice reads and deletes the pending notice, if any.
func (service *Service) ConsumeNotice(ctx context.Context, sessionID string) (string, error) {
	if sessionID == "" {
		return "", nil
	}
	return service.sessions.ConsumeNotice(ctx, sessionID)
}
