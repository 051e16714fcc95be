package auth

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"

	"leadsyncflow.app/internal/ids"
)

var _ Store = (*PGStore)(nil)

const uniqueViolation = "23505"

// accountColumns is the full projection used by single-record reads.
const accountColumns = `id, name, email, sex, department, password_hash,
	coalesce(role,''), status, profile_image_url, profile_image_id,
	coalesce(approved_by,''), approved_at, created_at, updated_at`

// pendingLive filters out PENDING rows past the 24h retention window.
// Reads must never return them even before the sweep physically deletes
// them; the interval below matches PendingRetention.
const pendingLive = `not (status = 'PENDING' and created_at <= now() - interval '24 hours')`

// PGStore implements Store using PostgreSQL.
type PGStore struct {
	db *sql.DB
}

func NewPGStore(db *sql.DB) *PGStore {
	return &PGStore{db: db}
}

func (s *PGStore) Accounts(context.Context) AccountStore        { return &pgAccounts{db: s.db} }
func (s *PGStore) RevokedTokens(context.Context) RevocationStore { return &pgRevoked{db: s.db} }

// Account store --------------------------------------------------------

type pgAccounts struct{ db *sql.DB }

func (s *pgAccounts) Create(ctx context.Context, a *Account) error {
	if a.ID == "" {
		a.ID = ids.New()
	}
	row := s.db.QueryRowContext(ctx, `
		insert into accounts(id, name, email, sex, department, password_hash,
			role, status, profile_image_url, profile_image_id)
		values($1,$2,$3,$4,$5,$6,nullif($7,''),$8,$9,$10)
		returning created_at, updated_at`,
		a.ID, a.Name, a.Email, a.Sex, a.Department, a.PasswordHash,
		a.Role, a.Status, a.ProfileImage.URL, a.ProfileImage.PublicID,
	)
	if err := row.Scan(&a.CreatedAt, &a.UpdatedAt); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return ErrEmailTaken
		}
		return err
	}
	return nil
}

func (s *pgAccounts) Find(ctx context.Context, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+accountColumns+` from accounts where id=$1 and `+pendingLive, id)
	return scanAccount(row)
}

func (s *pgAccounts) FindByEmail(ctx context.Context, email string) (*Account, error) {
	row := s.db.QueryRowContext(ctx,
		`select `+accountColumns+` from accounts where email=$1 and `+pendingLive, email)
	return scanAccount(row)
}

func (s *pgAccounts) ListPending(ctx context.Context) ([]*Account, error) {
	rows, err := s.db.QueryContext(ctx, `
		select id, name, email, sex, department, created_at
		from accounts
		where status = 'PENDING' and created_at > now() - interval '24 hours'
		order by created_at desc`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var res []*Account
	for rows.Next() {
		a := &Account{Status: StatusPending}
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Sex, &a.Department, &a.CreatedAt); err != nil {
			return nil, err
		}
		res = append(res, a)
	}
	return res, rows.Err()
}

func (s *pgAccounts) Approve(ctx context.Context, id, role, approvedBy string) (*Account, error) {
	// Single conditional write: only a live PENDING row can transition, so
	// concurrent approvals of the same id cannot both succeed.
	row := s.db.QueryRowContext(ctx, `
		update accounts
		set role=$2, status='APPROVED', approved_by=$3, approved_at=now(), updated_at=now()
		where id=$1 and status='PENDING' and created_at > now() - interval '24 hours'
		returning `+accountColumns,
		id, role, approvedBy)
	return scanAccount(row)
}

func (s *pgAccounts) DeletePending(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		delete from accounts
		where id=$1 and status='PENDING' and created_at > now() - interval '24 hours'`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *pgAccounts) Promote(ctx context.Context, id string) (*Account, error) {
	row := s.db.QueryRowContext(ctx, `
		update accounts
		set role=$2, updated_at=now()
		where id=$1 and status='APPROVED'
		returning `+accountColumns,
		id, RoleSuperAdmin)
	return scanAccount(row)
}

func (s *pgAccounts) HasSuperAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		`select exists(select 1 from accounts where role=$1 and status='APPROVED')`,
		RoleSuperAdmin).Scan(&exists)
	if err != nil {
		return false, err
	}
	return exists, nil
}

func (s *pgAccounts) PurgeExpiredPending(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from accounts where status='PENDING' and created_at <= $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func scanAccount(row *sql.Row) (*Account, error) {
	var (
		a          Account
		approvedAt sql.NullTime
	)
	err := row.Scan(&a.ID, &a.Name, &a.Email, &a.Sex, &a.Department, &a.PasswordHash,
		&a.Role, &a.Status, &a.ProfileImage.URL, &a.ProfileImage.PublicID,
		&a.ApprovedBy, &approvedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if approvedAt.Valid {
		a.ApprovedAt = approvedAt.Time
	}
	return &a, nil
}

// Revocation store -----------------------------------------------------

type pgRevoked struct{ db *sql.DB }

func (s *pgRevoked) Record(ctx context.Context, token string, expiresAt time.Time) error {
	// Double logout inserts the same token twice; the conflict is ignored.
	_, err := s.db.ExecContext(ctx, `
		insert into revoked_tokens(token, expires_at) values($1,$2)
		on conflict (token) do nothing`, token, expiresAt)
	return err
}

func (s *pgRevoked) IsRevoked(ctx context.Context, token string) (bool, error) {
	var revoked bool
	err := s.db.QueryRowContext(ctx, `
		select exists(select 1 from revoked_tokens where token=$1 and expires_at > now())`,
		token).Scan(&revoked)
	if err != nil {
		return false, err
	}
	return revoked, nil
}

func (s *pgRevoked) PurgeExpired(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`delete from revoked_tokens where expires_at <= $1`, before)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
