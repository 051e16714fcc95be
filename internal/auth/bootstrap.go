package auth

import (
	"context"
	"errors"
)

// BootstrapConfig holds the credentials for the initial privileged account.
type BootstrapConfig struct {
	Name     string
	Email    string
	Password string
}

// EnsureSuperAdmin guarantees exactly one APPROVED super admin exists at
// startup. If one already exists it does nothing; if the configured email
// belongs to an existing account that account is promoted; otherwise a
// fresh APPROVED super admin is created. With no credentials configured the
// bootstrap is skipped entirely.
//
// Returns the action taken: "skipped", "exists", "promoted" or "created".
func (s *Service) EnsureSuperAdmin(ctx context.Context, cfg BootstrapConfig) (string, error) {
	if cfg.Email == "" || cfg.Password == "" {
		return "skipped", nil
	}
	email := normalizeEmail(cfg.Email)
	accounts := s.store.Accounts(ctx)

	// Idempotent startup guard: never run while any super admin exists.
	has, err := accounts.HasSuperAdmin(ctx)
	if err != nil {
		return "", err
	}
	if has {
		return "exists", nil
	}

	existing, err := accounts.FindByEmail(ctx, email)
	if err == nil {
		// Promote the matching account regardless of its current state;
		// a pending bootstrap account must not wait in the queue.
		if existing.Status == StatusPending {
			if _, err := accounts.Approve(ctx, existing.ID, RoleSuperAdmin, existing.ID); err != nil {
				return "", err
			}
			return "promoted", nil
		}
		if _, err := accounts.Promote(ctx, existing.ID); err != nil {
			return "", err
		}
		return "promoted", nil
	}
	if !errors.Is(err, ErrNotFound) {
		return "", err
	}

	hash, err := HashPassword(cfg.Password, s.bcryptCost)
	if err != nil {
		return "", err
	}
	name := cfg.Name
	if name == "" {
		name = "Initial Super Admin"
	}
	account := &Account{
		Name:         name,
		Email:        email,
		Sex:          "male",
		Department:   Departments[0],
		PasswordHash: hash,
		Role:         RoleSuperAdmin,
		Status:       StatusApproved,
	}
	if err := accounts.Create(ctx, account); err != nil {
		// A concurrent replica may have created it between the check and
		// the insert; the unique constraint makes that benign.
		if errors.Is(err, ErrEmailTaken) {
			return "exists", nil
		}
		return "", err
	}
	return "created", nil
}
