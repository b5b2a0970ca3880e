package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/apizfit/racekit/internal/profile"
)

// ErrInvalidCredentials is returned when the email/password pair does not
// match an account.
var ErrInvalidCredentials = errors.New("invalid email or password")

// ErrInvalidSession is returned when the provided token does not match any
// live session.
var ErrInvalidSession = errors.New("invalid or expired session")

// ErrAccountInactive is returned when the account's profile has been
// deactivated by an administrator.
var ErrAccountInactive = errors.New("account is deactivated")

// ErrInvalidResetToken is returned when a password reset token fails
// validation or has expired.
var ErrInvalidResetToken = errors.New("invalid or expired reset token")

// ErrPasswordTooShort is returned when a new password is under 6 characters.
var ErrPasswordTooShort = errors.New("password must be at least 6 characters")

const minPasswordLength = 6

// Service provides authentication operations: signup, signin, session
// resolution, and password management.
type Service struct {
	accountRepo AccountRepository
	sessionRepo SessionRepository
	profileRepo profile.Repository
	bcryptCost  int
	sessionTTL  time.Duration
	resetSecret []byte
	resetTTL    time.Duration
}

// NewService creates a new auth Service.
func NewService(accountRepo AccountRepository, sessionRepo SessionRepository, profileRepo profile.Repository,
	bcryptCost int, sessionTTL time.Duration, resetSecret string, resetTTL time.Duration) *Service {
	return &Service{
		accountRepo: accountRepo,
		sessionRepo: sessionRepo,
		profileRepo: profileRepo,
		bcryptCost:  bcryptCost,
		sessionTTL:  sessionTTL,
		resetSecret: []byte(resetSecret),
		resetTTL:    resetTTL,
	}
}

// GenerateToken creates a new session token. Returns the raw token, its
// prefix (first 8 chars), and the bcrypt hash. The raw token is: 32 random
// bytes -> base64url -> prepend "rk_".
func (s *Service) GenerateToken() (rawToken, prefix, hash string, err error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", "", "", fmt.Errorf("generating random bytes: %w", err)
	}

	rawToken = "rk_" + base64.RawURLEncoding.EncodeToString(b)
	prefix = rawToken[:8]

	hashBytes, err := bcrypt.GenerateFromPassword([]byte(rawToken), s.bcryptCost)
	if err != nil {
		return "", "", "", fmt.Errorf("hashing token: %w", err)
	}
	hash = string(hashBytes)

	return rawToken, prefix, hash, nil
}

// SignUp registers a new account with a default-role profile and opens a
// session for it. Returns the identity and the raw session token.
func (s *Service) SignUp(ctx context.Context, email, password, fullName string, phone *string) (*Identity, string, error) {
	if len(password) < minPasswordLength {
		return nil, "", ErrPasswordTooShort
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hashing password: %w", err)
	}

	account := &Account{
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
	}

	if err := s.accountRepo.CreateWithProfile(ctx, account, fullName, phone, profile.RoleUser); err != nil {
		return nil, "", err
	}

	return s.openSession(ctx, account)
}

// SignIn authenticates an email/password pair and opens a session.
// Deactivated accounts are rejected.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Identity, string, error) {
	account, err := s.accountRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("fetching account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(password)) != nil {
		return nil, "", ErrInvalidCredentials
	}

	return s.openSession(ctx, account)
}

// Authenticate resolves a raw session token to an Identity. It extracts the
// prefix, looks up live candidates, and bcrypt-compares each one.
func (s *Service) Authenticate(ctx context.Context, rawToken string) (*Identity, error) {
	if len(rawToken) < 8 {
		return nil, ErrInvalidSession
	}

	prefix := rawToken[:8]

	candidates, err := s.sessionRepo.FindByPrefix(ctx, prefix)
	if err != nil {
		return nil, fmt.Errorf("finding sessions by prefix: %w", err)
	}

	for i := range candidates {
		sess := &candidates[i]
		if bcrypt.CompareHashAndPassword([]byte(sess.TokenHash), []byte(rawToken)) == nil {
			account, err := s.accountRepo.GetByID(ctx, sess.AccountID)
			if err != nil {
				if errors.Is(err, ErrAccountNotFound) {
					return nil, ErrInvalidSession
				}
				return nil, fmt.Errorf("fetching account for session: %w", err)
			}
			return s.buildIdentity(ctx, account, sess.ID)
		}
	}

	return nil, ErrInvalidSession
}

// SignOut revokes the session behind the identity.
func (s *Service) SignOut(ctx context.Context, identity *Identity) error {
	if err := s.sessionRepo.Revoke(ctx, identity.SessionID); err != nil {
		if errors.Is(err, ErrSessionNotFound) {
			return nil
		}
		return fmt.Errorf("revoking session: %w", err)
	}
	return nil
}

// UpdatePassword changes the password of the authenticated account after
// verifying the current one, then revokes every other session.
func (s *Service) UpdatePassword(ctx context.Context, identity *Identity, currentPassword, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	account, err := s.accountRepo.GetByID(ctx, identity.AccountID)
	if err != nil {
		return fmt.Errorf("fetching account: %w", err)
	}

	if bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(currentPassword)) != nil {
		return ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.accountRepo.UpdatePasswordHash(ctx, account.ID, string(hash)); err != nil {
		return fmt.Errorf("updating password: %w", err)
	}

	if err := s.sessionRepo.RevokeAllForAccount(ctx, account.ID, identity.SessionID); err != nil {
		return fmt.Errorf("revoking other sessions: %w", err)
	}

	return nil
}

// RequestPasswordReset issues a signed, expiring reset token for the given
// email. Mail delivery is an external collaborator; the token is logged so
// an operator can relay it. Unknown emails succeed silently so account
// existence is not leaked.
func (s *Service) RequestPasswordReset(ctx context.Context, email string) (string, error) {
	account, err := s.accountRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("fetching account: %w", err)
	}

	claims := jwt.MapClaims{
		"sub":  account.ID.String(),
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(s.resetTTL).Unix(),
		"type": "reset",
	}

	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.resetSecret)
	if err != nil {
		return "", fmt.Errorf("signing reset token: %w", err)
	}

	slog.Info("password reset token issued", "email", account.Email, "token", token)

	return token, nil
}

// ConfirmPasswordReset validates a reset token, sets the new password, and
// revokes every session of the account.
func (s *Service) ConfirmPasswordReset(ctx context.Context, tokenString, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}

	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.resetSecret, nil
	})
	if err != nil || !token.Valid {
		return ErrInvalidResetToken
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || claims["type"] != "reset" {
		return ErrInvalidResetToken
	}

	sub, err := claims.GetSubject()
	if err != nil {
		return ErrInvalidResetToken
	}

	accountID, err := uuid.Parse(sub)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}

	if err := s.accountRepo.UpdatePasswordHash(ctx, accountID, string(hash)); err != nil {
		if errors.Is(err, ErrAccountNotFound) {
			return ErrInvalidResetToken
		}
		return fmt.Errorf("updating password: %w", err)
	}

	if err := s.sessionRepo.RevokeAllForAccount(ctx, accountID, uuid.Nil); err != nil {
		return fmt.Errorf("revoking sessions: %w", err)
	}

	return nil
}

// BootstrapAdmin creates the initial admin account if the accounts table is
// empty. The one-time password is logged once and never stored in the clear.
func (s *Service) BootstrapAdmin(ctx context.Context, email string) error {
	count, err := s.accountRepo.CountAll(ctx)
	if err != nil {
		return fmt.Errorf("counting accounts: %w", err)
	}

	if count > 0 {
		return nil
	}

	b := make([]byte, 18)
	if _, err := rand.Read(b); err != nil {
		return fmt.Errorf("generating admin password: %w", err)
	}
	password := base64.RawURLEncoding.EncodeToString(b)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hashing admin password: %w", err)
	}

	account := &Account{
		Email:        normalizeEmail(email),
		PasswordHash: string(hash),
	}

	if err := s.accountRepo.CreateWithProfile(ctx, account, "Administrator", nil, profile.RoleAdmin); err != nil {
		return fmt.Errorf("creating admin account: %w", err)
	}

	slog.Info("Initial admin account created", "email", account.Email, "password", password)

	return nil
}

// openSession verifies the account is active, creates a session, and
// returns the identity plus the raw token.
func (s *Service) openSession(ctx context.Context, account *Account) (*Identity, string, error) {
	identity, err := s.buildIdentity(ctx, account, uuid.Nil)
	if err != nil {
		return nil, "", err
	}

	rawToken, prefix, hash, err := s.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("generating session token: %w", err)
	}

	sess := &Session{
		AccountID:   account.ID,
		TokenPrefix: prefix,
		TokenHash:   hash,
		ExpiresAt:   time.Now().Add(s.sessionTTL),
	}

	if err := s.sessionRepo.Create(ctx, sess); err != nil {
		return nil, "", fmt.Errorf("creating session: %w", err)
	}

	identity.SessionID = sess.ID
	return identity, rawToken, nil
}

// buildIdentity constructs an Identity from an account, resolving role and
// status from the profile. A failed profile lookup degrades to the default
// role rather than failing the request; a deactivated profile rejects it.
func (s *Service) buildIdentity(ctx context.Context, account *Account, sessionID uuid.UUID) (*Identity, error) {
	role := profile.RoleUser
	status := profile.StatusActive

	p, err := s.profileRepo.GetByUserID(ctx, account.ID)
	if err != nil {
		slog.Error("failed to resolve profile role, treating as user", "accountId", account.ID, "error", err)
	} else {
		role = p.EffectiveRole()
		status = p.EffectiveStatus()
	}

	if status == profile.StatusInactive {
		return nil, ErrAccountInactive
	}

	return &Identity{
		AccountID: account.ID,
		SessionID: sessionID,
		Email:     account.Email,
		Role:      role,
		Status:    status,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
