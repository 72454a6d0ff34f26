package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const sessionIssuer = "hr-dashboard"

// CredentialStore exposes operator lookup by email.
type CredentialStore interface {
	GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error)
}

// PasswordVerifier compares a stored hash with a candidate password.
type PasswordVerifier func(hashedPassword, password string) error

// AuthService issues and validates signed session tokens.
type AuthService struct {
	credentials    CredentialStore
	verifyPassword PasswordVerifier
	secret         []byte
	tokenID        func() string
	now            func() time.Time
	sessionTTL     time.Duration
	logger         *slog.Logger

	mu      sync.Mutex
	revoked map[string]time.Time
}

// NewAuthService constructs an AuthService with the provided dependencies.
func NewAuthService(credentials CredentialStore, secret []byte, tokenID func() string, now func() time.Time, sessionTTL time.Duration) *AuthService {
	return NewAuthServiceWithLogger(credentials, nil, secret, tokenID, now, sessionTTL, nil)
}

// NewAuthServiceWithLogger constructs an AuthService with a password verifier and logger.
func NewAuthServiceWithLogger(credentials CredentialStore, verify PasswordVerifier, secret []byte, tokenID func() string, now func() time.Time, sessionTTL time.Duration, logger *slog.Logger) *AuthService {
	if verify == nil {
		verify = VerifyPassword
	}
	if tokenID == nil {
		tokenID = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	if sessionTTL <= 0 {
		sessionTTL = 24 * time.Hour
	}
	return &AuthService{
		credentials:    credentials,
		verifyPassword: verify,
		secret:         append([]byte(nil), secret...),
		tokenID:        tokenID,
		now:            now,
		sessionTTL:     sessionTTL,
		logger:         defaultLogger(logger),
		revoked:        make(map[string]time.Time),
	}
}

func (s *AuthService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "AuthService", operation, attrs...)
}

type sessionClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  Role   `json:"role"`
	jwt.RegisteredClaims
}

// Authenticate checks credentials and issues a signed session token.
func (s *AuthService) Authenticate(ctx context.Context, params AuthenticateParams) (session Session, err error) {
	if s == nil {
		return Session{}, fmt.Errorf("AuthService is nil")
	}
	if s.credentials == nil {
		return Session{}, fmt.Errorf("credential store not configured")
	}
	if len(s.secret) == 0 {
		return Session{}, fmt.Errorf("session secret not configured")
	}

	email := strings.ToLower(strings.TrimSpace(params.Email))
	logger := s.loggerWith(ctx, "Authenticate", "email", email)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "authentication failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("user_id", session.Principal.UserID, "session_id", session.ID).InfoContext(ctx, "authentication succeeded")
	}()

	if email == "" || params.Password == "" {
		return Session{}, ErrInvalidCredentials
	}

	creds, err := s.credentials.GetUserCredentialsByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Session{}, ErrInvalidCredentials
		}
		return Session{}, err
	}
	if err := s.verifyPassword(creds.PasswordHash, params.Password); err != nil {
		return Session{}, ErrInvalidCredentials
	}

	now := s.now()
	principal := Principal{
		UserID: creds.User.ID,
		Email:  creds.User.Email,
		Name:   creds.User.Name,
		Role:   creds.User.Role,
	}
	session = Session{
		ID:        s.tokenID(),
		Principal: principal,
		IssuedAt:  now,
		ExpiresAt: now.Add(s.sessionTTL),
	}

	claims := sessionClaims{
		Email: principal.Email,
		Name:  principal.Name,
		Role:  principal.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    sessionIssuer,
			Subject:   principal.UserID,
			ID:        session.ID,
			IssuedAt:  jwt.NewNumericDate(session.IssuedAt),
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
		},
	}
	session.Token, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return Session{}, fmt.Errorf("sign session token: %w", err)
	}
	return session, nil
}

func (s *AuthService) parse(token string, verifyExpiry bool) (sessionClaims, error) {
	var claims sessionClaims
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(sessionIssuer),
		jwt.WithTimeFunc(s.now),
	}
	if !verifyExpiry {
		opts = append(opts, jwt.WithoutClaimsValidation())
	}
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return claims, ErrSessionExpired
		}
		return claims, fmt.Errorf("%w: %v", ErrUnauthorized, err)
	}
	return claims, nil
}

// ValidateSession verifies token and returns the principal it carries.
func (s *AuthService) ValidateSession(ctx context.Context, token string) (principal Principal, err error) {
	if s == nil {
		return Principal{}, fmt.Errorf("AuthService is nil")
	}

	trimmed := strings.TrimSpace(token)
	logger := s.loggerWith(ctx, "ValidateSession", "token_provided", trimmed != "")
	defer func() {
		if err != nil {
			logger.WarnContext(ctx, "session validation failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("principal_id", principal.UserID).DebugContext(ctx, "session validated")
	}()

	if trimmed == "" {
		return Principal{}, ErrUnauthorized
	}

	claims, err := s.parse(trimmed, true)
	if err != nil {
		return Principal{}, err
	}
	if s.isRevoked(claims.ID) {
		return Principal{}, fmt.Errorf("%w: session revoked", ErrUnauthorized)
	}

	return Principal{
		UserID: claims.Subject,
		Email:  claims.Email,
		Name:   claims.Name,
		Role:   claims.Role,
	}, nil
}

// RevokeSession invalidates token until its natural expiry.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	if s == nil {
		return fmt.Errorf("AuthService is nil")
	}

	logger := s.loggerWith(ctx, "RevokeSession")
	claims, err := s.parse(strings.TrimSpace(token), false)
	if err != nil {
		logger.WarnContext(ctx, "failed to revoke session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	expires := s.now().Add(s.sessionTTL)
	if claims.ExpiresAt != nil {
		expires = claims.ExpiresAt.Time
	}

	s.mu.Lock()
	s.pruneRevokedLocked()
	if claims.ID != "" {
		s.revoked[claims.ID] = expires
	}
	s.mu.Unlock()

	logger.With("session_id", claims.ID).InfoContext(ctx, "session revoked")
	return nil
}

func (s *AuthService) isRevoked(id string) bool {
	if id == "" {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.revoked[id]
	return ok
}

func (s *AuthService) pruneRevokedLocked() {
	now := s.now()
	for id, expires := range s.revoked {
		if !expires.After(now) {
			delete(s.revoked, id)
		}
	}
}

// StaticCredentialStore serves a fixed set of operators.
type StaticCredentialStore struct {
	byEmail map[string]UserCredentials
}

// NewStaticCredentialStore indexes creds by lower-cased email.
func NewStaticCredentialStore(creds ...UserCredentials) *StaticCredentialStore {
	store := &StaticCredentialStore{byEmail: make(map[string]UserCredentials, len(creds))}
	for _, c := range creds {
		store.byEmail[strings.ToLower(strings.TrimSpace(c.User.Email))] = c
	}
	return store
}

// GetUserCredentialsByEmail implements CredentialStore.
func (s *StaticCredentialStore) GetUserCredentialsByEmail(ctx context.Context, email string) (UserCredentials, error) {
	if err := ctx.Err(); err != nil {
		return UserCredentials{}, err
	}
	creds, ok := s.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return UserCredentials{}, ErrNotFound
	}
	return creds, nil
}

// DemoOperators returns the two built-in dashboard accounts with hashed passwords.
func DemoOperators(params Argon2idParams) ([]UserCredentials, error) {
	accounts := []struct {
		user     User
		password string
	}{
		{User{ID: "1", Email: "admin@hr.com", Name: "Admin User", Role: RoleAdmin}, "admin123"},
		{User{ID: "2", Email: "hr@hr.com", Name: "HR Manager", Role: RoleHR}, "hr123"},
	}

	out := make([]UserCredentials, 0, len(accounts))
	for _, a := range accounts {
		hash, err := HashPassword(a.password, params)
		if err != nil {
			return nil, fmt.Errorf("hash password for %s: %w", a.user.Email, err)
		}
		out = append(out, UserCredentials{User: a.user, PasswordHash: hash})
	}
	return out, nil
}
