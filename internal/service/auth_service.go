package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/kursadbilgin/auth-gate/internal/credential"
	"github.com/kursadbilgin/auth-gate/internal/domain"
	"github.com/kursadbilgin/auth-gate/internal/observability"
	"github.com/kursadbilgin/auth-gate/internal/queue"
	"github.com/kursadbilgin/auth-gate/internal/repository"
	"github.com/kursadbilgin/auth-gate/internal/token"
	"go.uber.org/zap"
)

// AuthService runs the credential verification flow. Each call to Verify is one
// transaction serialized per account by the row lock taken on lookup; token
// issuance happens after commit, never inside the transaction.
type AuthService struct {
	uow       repository.UnitOfWork
	verifier  credential.Verifier
	signer    token.Signer
	publisher queue.Publisher
	policy    domain.Policy
	logger    *zap.Logger
	metrics   *observability.Metrics
	now       func() time.Time
	newID     func() string
}

// VerifyResult is the accept-path outcome of a verification.
type VerifyResult struct {
	Token     string
	ExpiresAt time.Time
	ExpiresIn time.Duration
	AccountID string
	Role      domain.Role
}

func NewAuthService(
	uow repository.UnitOfWork,
	verifier credential.Verifier,
	signer token.Signer,
	publisher queue.Publisher,
	policy domain.Policy,
	logger *zap.Logger,
	metrics *observability.Metrics,
) (*AuthService, error) {
	if uow == nil {
		return nil, fmt.Errorf("unit of work is required")
	}
	if verifier == nil {
		return nil, fmt.Errorf("credential verifier is required")
	}
	if signer == nil {
		return nil, fmt.Errorf("token signer is required")
	}
	if err := policy.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &AuthService{
		uow:       uow,
		verifier:  verifier,
		signer:    signer,
		publisher: publisher,
		policy:    policy,
		logger:    logger,
		metrics:   metrics,
		now:       time.Now,
		newID:     uuid.NewString,
	}, nil
}

// Verify authenticates one email/password pair.
//
// Flow inside a single transaction: lock the account row, clear expired lockout
// markers, reject if a lockout is still active, count recent failures, lock the
// account if this attempt reaches the threshold (without evaluating the
// credential), otherwise check the credential and record the outcome. Rejections
// that recorded a row commit; rejections that recorded nothing roll back.
func (s *AuthService) Verify(ctx context.Context, email, secret string) (*VerifyResult, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || secret == "" {
		return nil, fmt.Errorf("%w: email and password are required", domain.ErrValidation)
	}

	var (
		account *domain.Account
		reject  error
		events  []queue.SecurityEventMessage
	)

	err := s.uow.Do(ctx, func(r repository.Repos) error {
		now := s.now().UTC()

		acc, err := r.Accounts.GetByEmailForUpdate(ctx, email)
		if errors.Is(err, domain.ErrNotFound) {
			// Unknown email exits with the same error as a wrong password.
			return domain.ErrInvalidCredential
		}
		if err != nil {
			return err
		}

		lockCutoff := now.Add(-s.policy.LockoutWindow)
		if err := r.Attempts.ClearExpiredLocks(ctx, acc.ID, lockCutoff); err != nil {
			return err
		}

		lock, err := r.Attempts.FindActiveLock(ctx, acc.ID, lockCutoff)
		if err != nil {
			return err
		}
		if lock != nil {
			return &domain.LockoutError{
				RetryAfterMinutes: domain.RemainingMinutes(lock.OccurredAt, s.policy.LockoutWindow, now),
			}
		}

		failures, err := r.Attempts.CountRecentFailures(ctx, acc.ID, now.Add(-s.policy.AttemptWindow))
		if err != nil {
			return err
		}

		if domain.WillLockNow(failures, s.policy.MaxAttempts) {
			// This attempt becomes the locking failure; the credential is
			// never evaluated on this path.
			if err := r.Attempts.Create(ctx, &domain.LoginAttempt{
				ID:         s.newID(),
				AccountID:  acc.ID,
				Succeeded:  false,
				Locked:     true,
				OccurredAt: now,
			}); err != nil {
				return err
			}

			minutes := domain.RemainingMinutes(now, s.policy.LockoutWindow, now)
			reject = &domain.LockoutError{RetryAfterMinutes: minutes}
			events = append(events, queue.SecurityEventMessage{
				EventID:           s.newID(),
				EventType:         queue.EventAccountLocked,
				AccountID:         acc.ID,
				RetryAfterMinutes: minutes,
				OccurredAt:        now,
			})
			return nil
		}

		if !s.verifier.Verify(secret, acc.CredentialHash) {
			if err := r.Attempts.Create(ctx, &domain.LoginAttempt{
				ID:         s.newID(),
				AccountID:  acc.ID,
				Succeeded:  false,
				OccurredAt: now,
			}); err != nil {
				return err
			}

			reject = &domain.InvalidCredentialError{
				RemainingAttempts: max(0, s.policy.MaxAttempts-(failures+1)),
			}
			return nil
		}

		if err := r.Attempts.Create(ctx, &domain.LoginAttempt{
			ID:         s.newID(),
			AccountID:  acc.ID,
			Succeeded:  true,
			OccurredAt: now,
		}); err != nil {
			return err
		}
		if err := r.Attempts.PruneOlderThan(ctx, acc.ID, now.Add(-s.policy.Retention)); err != nil {
			return err
		}

		account = acc
		events = append(events, queue.SecurityEventMessage{
			EventID:    s.newID(),
			EventType:  queue.EventLoginSucceeded,
			AccountID:  acc.ID,
			OccurredAt: now,
		})
		return nil
	})
	if err != nil {
		if isRejection(err) {
			s.metrics.IncLoginRejected(rejectionReason(err))
			return nil, err
		}

		observability.WithContextLogger(s.logger, ctx).Error("verification transaction aborted",
			zap.String("email", email),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to verify credentials: %w", err)
	}

	s.publishEvents(ctx, events)

	if reject != nil {
		if errors.Is(reject, domain.ErrLockedOut) {
			s.metrics.IncLockoutCreated()
			observability.WithContextLogger(s.logger, ctx).Warn("account locked after repeated failures",
				zap.String("accountId", eventAccountID(events)),
			)
		}
		s.metrics.IncLoginRejected(rejectionReason(reject))
		return nil, reject
	}

	// Accept path: the transaction is committed, sign outside any held lock.
	signed, expiresAt, err := s.signer.Issue(account.ID, account.Role.String())
	if err != nil {
		observability.WithContextLogger(s.logger, ctx).Error("token issuance failed",
			zap.String("accountId", account.ID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to issue session token: %w", err)
	}

	s.metrics.IncLoginSucceeded()

	return &VerifyResult{
		Token:     signed,
		ExpiresAt: expiresAt,
		ExpiresIn: s.signer.Expiry(),
		AccountID: account.ID,
		Role:      account.Role,
	}, nil
}

func (s *AuthService) publishEvents(ctx context.Context, events []queue.SecurityEventMessage) {
	if s.publisher == nil {
		return
	}

	// Best effort: the verification outcome is already durable, a broker
	// outage must not fail the request.
	for _, event := range events {
		if correlationID, ok := observability.CorrelationIDFromContext(ctx); ok {
			event.CorrelationID = correlationID
		}
		if err := s.publisher.Publish(ctx, event); err != nil {
			observability.WithContextLogger(s.logger, ctx).Error("failed to publish security event",
				zap.String("eventType", event.EventType.String()),
				zap.String("accountId", event.AccountID),
				zap.Error(err),
			)
		}
	}
}

func isRejection(err error) bool {
	return errors.Is(err, domain.ErrValidation) ||
		errors.Is(err, domain.ErrInvalidCredential) ||
		errors.Is(err, domain.ErrLockedOut)
}

func rejectionReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrLockedOut):
		return "locked_out"
	case errors.Is(err, domain.ErrInvalidCredential):
		return "invalid_credential"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	default:
		return "unknown"
	}
}

func eventAccountID(events []queue.SecurityEventMessage) string {
	if len(events) == 0 {
		return ""
	}
	return events[len(events)-1].AccountID
}
