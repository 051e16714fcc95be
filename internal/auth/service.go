package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"leadsyncflow.app/internal/imagestore"
)

// User-facing messages shared between operations. Invalid credentials and
// unknown account deliberately read the same so login does not leak which
// emails are registered.
const (
	msgInvalidCredentials = "Invalid credentials"
	msgNotApproved        = "Account not approved yet"
	msgNotAuthenticated   = "Not authenticated"
	msgSessionExpired     = "Session expired, please login again"
	msgEmailTaken         = "Email already registered"
	msgPendingNotFound    = "Pending request not found"
)

// Service drives the registration and approval lifecycle on top of a Store
// and the session token service. It holds no locks: cross-request
// invariants live in the storage layer's atomic primitives, so concurrent
// calls are safe.
type Service struct {
	store  Store
	tokens *TokenService
	images imagestore.Store

	domain     string
	bcryptCost int
	now        func() time.Time
}

// ServiceOption configures Service behavior.
type ServiceOption func(*Service)

// WithImageStore wires the profile-image collaborator. Without it,
// registrations carrying an image are rejected.
func WithImageStore(images imagestore.Store) ServiceOption {
	return func(s *Service) { s.images = images }
}

// WithAllowedDomain overrides the corporate email domain gate.
func WithAllowedDomain(domain string) ServiceOption {
	return func(s *Service) {
		domain = strings.ToLower(strings.TrimSpace(domain))
		if domain != "" {
			s.domain = domain
		}
	}
}

// WithBcryptCost sets the hashing cost; values outside safe bounds are
// clamped, not trusted.
func WithBcryptCost(cost int) ServiceOption {
	return func(s *Service) { s.bcryptCost = ClampBcryptCost(cost) }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) ServiceOption {
	return func(s *Service) {
		if fn != nil {
			s.now = fn
		}
	}
}

// NewService constructs the lifecycle service.
func NewService(store Store, tokens *TokenService, opts ...ServiceOption) *Service {
	s := &Service{
		store:      store,
		tokens:     tokens,
		domain:     "globaldigitsolutions.com",
		bcryptCost: defaultBcryptCost,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Tokens exposes the session token service.
func (s *Service) Tokens() *TokenService { return s.tokens }

// Register validates a signup, hashes the credential, uploads the optional
// profile image, and persists a PENDING account. The email pre-check gives
// a friendly error, but the store's unique constraint is the authority:
// a concurrent duplicate still comes back as a Conflict.
func (s *Service) Register(ctx context.Context, in SignupInput) (*Account, error) {
	in, err := validateSignup(in, s.domain)
	if err != nil {
		return nil, err
	}

	accounts := s.store.Accounts(ctx)
	if _, err := accounts.FindByEmail(ctx, in.Email); err == nil {
		return nil, conflict(msgEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	hash, err := HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	var image ProfileImage
	if len(in.Image) > 0 {
		if s.images == nil {
			return nil, badRequest("Image uploads are not enabled")
		}
		stored, err := s.images.Upload(ctx, in.Image)
		if err != nil {
			// Image upload is not best-effort: registration aborts before
			// any record is written.
			switch {
			case errors.Is(err, imagestore.ErrNotImage), errors.Is(err, imagestore.ErrTooLarge):
				return nil, badRequest(err.Error())
			default:
				return nil, err
			}
		}
		image = ProfileImage{URL: stored.URL, PublicID: stored.PublicID}
	}

	account := &Account{
		Name:         in.Name,
		Email:        in.Email,
		Sex:          in.Sex,
		Department:   in.Department,
		PasswordHash: hash,
		Status:       StatusPending,
		ProfileImage: image,
	}
	if err := accounts.Create(ctx, account); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			return nil, conflict(msgEmailTaken)
		}
		return nil, err
	}
	return account, nil
}

// Login verifies credentials and issues a session token. Unapproved
// accounts are rejected with a distinct message regardless of password
// correctness; unknown email and wrong password are indistinguishable.
func (s *Service) Login(ctx context.Context, in LoginInput) (token string, expiresAt time.Time, account *Account, err error) {
	in, err = validateLogin(in, s.domain)
	if err != nil {
		return "", time.Time{}, nil, err
	}

	account, err = s.store.Accounts(ctx).FindByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return "", time.Time{}, nil, unauthorized(msgInvalidCredentials)
		}
		return "", time.Time{}, nil, err
	}
	if account.Status != StatusApproved {
		return "", time.Time{}, nil, forbidden(msgNotApproved)
	}
	if err := VerifyPassword(account.PasswordHash, in.Password); err != nil {
		return "", time.Time{}, nil, unauthorized(msgInvalidCredentials)
	}

	token, expiresAt, err = s.tokens.Issue(account.ID)
	if err != nil {
		return "", time.Time{}, nil, err
	}
	return token, expiresAt, account, nil
}

// Authenticate verifies a bearer token for a protected request and returns
// the account id it asserts. Revocation is consulted before the signature
// claims are trusted. Revoked, malformed and expired tokens all map to the
// same message.
func (s *Service) Authenticate(ctx context.Context, token string) (string, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", unauthorized(msgNotAuthenticated)
	}
	revoked, err := s.store.RevokedTokens(ctx).IsRevoked(ctx, token)
	if err != nil {
		return "", err
	}
	if revoked {
		return "", unauthorized(msgSessionExpired)
	}
	claims, err := s.tokens.Verify(token)
	if err != nil {
		return "", unauthorized(msgSessionExpired)
	}
	return claims.Subject, nil
}

// Logout revokes a session token immediately, keyed by the expiry claim
// recovered via unverified decode. An absent or undecodable token is a
// BadRequest; revoking the same token twice is not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return badRequest("Token is required")
	}
	claims, err := s.tokens.Decode(token)
	if err != nil {
		return badRequest("Invalid token")
	}
	return s.store.RevokedTokens(ctx).Record(ctx, token, claims.ExpiresAt.Time)
}

// RequireSuperAdmin re-fetches the caller's current role and status rather
// than trusting stale token claims.
func (s *Service) RequireSuperAdmin(ctx context.Context, accountID string) (*Account, error) {
	account, err := s.store.Accounts(ctx).Find(ctx, accountID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, unauthorized(msgNotAuthenticated)
		}
		return nil, err
	}
	if account.Status != StatusApproved {
		return nil, forbidden("Account not approved")
	}
	if account.Role != RoleSuperAdmin {
		return nil, forbidden("Super admin only")
	}
	return account, nil
}

// ListPending returns the approval queue, newest first, without credential
// hashes.
func (s *Service) ListPending(ctx context.Context) ([]*Account, error) {
	return s.store.Accounts(ctx).ListPending(ctx)
}

// Approve transitions a PENDING account to APPROVED with the given role.
// Approval is not idempotent: a second approval of the same id fails
// NotFound, so racing administrators cannot re-trigger side effects.
func (s *Service) Approve(ctx context.Context, id, role, approverID string) (*Account, error) {
	role = strings.TrimSpace(role)
	if role == "" {
		return nil, badRequest("Role is required")
	}
	if !isInList(role, Roles) {
		return nil, badRequest("Invalid role")
	}
	account, err := s.store.Accounts(ctx).Approve(ctx, id, role, approverID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound(msgPendingNotFound)
		}
		return nil, err
	}
	return account, nil
}

// Reject deletes a PENDING record outright. Destructive and irreversible;
// nothing "rejected" is retained.
func (s *Service) Reject(ctx context.Context, id string) error {
	if err := s.store.Accounts(ctx).DeletePending(ctx, id); err != nil {
		if errors.Is(err, ErrNotFound) {
			return notFound(msgPendingNotFound)
		}
		return err
	}
	return nil
}

// Promote grants the super-admin role to an APPROVED account.
func (s *Service) Promote(ctx context.Context, id string) (*Account, error) {
	account, err := s.store.Accounts(ctx).Promote(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, notFound("User not found")
		}
		return nil, err
	}
	return account, nil
}

// Sweep physically purges expired PENDING accounts and stale revocation
// rows. Reads already filter both, so correctness never depends on when
// this runs.
func (s *Service) Sweep(ctx context.Context) (pending, revoked int64, err error) {
	now := s.now().UTC()
	pending, err = s.store.Accounts(ctx).PurgeExpiredPending(ctx, now.Add(-PendingRetention))
	if err != nil {
		return 0, 0, err
	}
	revoked, err = s.store.RevokedTokens(ctx).PurgeExpired(ctx, now)
	if err != nil {
		return pending, 0, err
	}
	return pending, revoked, nil
}
