package auth

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

var accountRowColumns = []string{
	"id", "name", "email", "sex", "department", "password_hash",
	"role", "status", "profile_image_url", "profile_image_id",
	"approved_by", "approved_at", "created_at", "updated_at",
}

func newMockStore(t *testing.T) (*PGStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPGStore(db), mock
}

func TestPGCreateAssignsIDAndTimestamps(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("insert into accounts").
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	account := &Account{
		Name:         "Alice",
		Email:        testEmail,
		Sex:          "female",
		Department:   "Sales",
		PasswordHash: "hash",
		Status:       StatusPending,
	}
	if err := store.Accounts(context.Background()).Create(context.Background(), account); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if account.ID == "" {
		t.Fatal("expected an assigned id")
	}
	if !account.CreatedAt.Equal(now) {
		t.Fatalf("unexpected created_at: %v", account.CreatedAt)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGCreateTranslatesUniqueViolation(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("insert into accounts").
		WillReturnError(&pgconn.PgError{Code: uniqueViolation})

	err := store.Accounts(context.Background()).Create(context.Background(), &Account{
		Name:         "Alice",
		Email:        testEmail,
		Sex:          "female",
		Department:   "Sales",
		PasswordHash: "hash",
		Status:       StatusPending,
	})
	if !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGApproveReturnsUpdatedRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("update accounts").
		WithArgs("acct-1", "Sales", "admin-1").
		WillReturnRows(sqlmock.NewRows(accountRowColumns).AddRow(
			"acct-1", "Alice", testEmail, "female", "Sales", "hash",
			"Sales", string(StatusApproved), "", "",
			"admin-1", now, now.Add(-time.Hour), now,
		))

	account, err := store.Accounts(context.Background()).Approve(context.Background(), "acct-1", "Sales", "admin-1")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if account.Status != StatusApproved || account.Role != "Sales" || account.ApprovedBy != "admin-1" {
		t.Fatalf("unexpected record: %+v", account)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGApproveMissesNonPendingRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("update accounts").
		WithArgs("acct-1", "Sales", "admin-1").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Accounts(context.Background()).Approve(context.Background(), "acct-1", "Sales", "admin-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGDeletePendingReportsMiss(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("delete from accounts").
		WithArgs("acct-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.Accounts(context.Background()).DeletePending(context.Background(), "acct-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGFindTranslatesNoRows(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("from accounts where id=").
		WithArgs("acct-1").
		WillReturnError(sql.ErrNoRows)

	_, err := store.Accounts(context.Background()).Find(context.Background(), "acct-1")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestPGRevocationRoundTrip(t *testing.T) {
	store, mock := newMockStore(t)
	ctx := context.Background()
	expiry := time.Now().Add(time.Hour)

	mock.ExpectExec("insert into revoked_tokens").
		WithArgs("tok-1", expiry).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("select exists\\(select 1 from revoked_tokens").
		WithArgs("tok-1").
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))

	if err := store.RevokedTokens(ctx).Record(ctx, "tok-1", expiry); err != nil {
		t.Fatalf("Record: %v", err)
	}
	revoked, err := store.RevokedTokens(ctx).IsRevoked(ctx, "tok-1")
	if err != nil {
		t.Fatalf("IsRevoked: %v", err)
	}
	if !revoked {
		t.Fatal("expected token to be revoked")
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
