package auth

import (
	"strings"
	"time"
)

// Status is the approval state of an account.
type Status string

const (
	StatusPending  Status = "PENDING"
	StatusApproved Status = "APPROVED"
	// StatusRejected exists for completeness; rejection deletes the record
	// outright, so it is never persisted.
	StatusRejected Status = "REJECTED"
)

// RoleSuperAdmin is the distinguished privileged role.
const RoleSuperAdmin = "Super Admin"

// Closed catalogs validated at registration and approval time.
var (
	SexOptions  = []string{"male", "female"}
	Departments = []string{"Sales", "Marketing", "Engineering", "HR", "Finance"}
	Roles       = []string{RoleSuperAdmin, "Manager", "Sales", "Support"}
)

// PendingRetention is how long an undecided registration is kept before it
// expires passively.
const PendingRetention = 24 * time.Hour

// ProfileImage is an optional uploaded image. Both fields empty means unset.
type ProfileImage struct {
	URL      string `json:"url"`
	PublicID string `json:"publicId"`
}

func (p ProfileImage) IsZero() bool { return p.URL == "" && p.PublicID == "" }

// Account is a persisted user record. Role is empty exactly while the
// account is PENDING.
type Account struct {
	ID           string
	Name         string
	Email        string
	Sex          string
	Department   string
	PasswordHash string
	Role         string
	Status       Status
	ProfileImage ProfileImage
	ApprovedBy   string
	ApprovedAt   time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicAccount is the projection returned to clients. It never carries the
// credential hash.
type PublicAccount struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Sex          string    `json:"sex"`
	Department   string    `json:"department"`
	Role         string    `json:"role,omitempty"`
	ProfileImage string    `json:"profileImage,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public returns the client-safe projection of the account.
func (a *Account) Public() PublicAccount {
	return PublicAccount{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		Sex:          a.Sex,
		Department:   a.Department,
		Role:         a.Role,
		ProfileImage: a.ProfileImage.URL,
		CreatedAt:    a.CreatedAt,
	}
}

// RevokedToken records a session token invalidated before its natural
// expiry. Rows are meaningless once ExpiresAt passes.
type RevokedToken struct {
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

func isInList(value string, list []string) bool {
	for _, item := range list {
		if item == value {
			return true
		}
	}
	return false
}

func normalizeEmail(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
