package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/realtydesk/realtydesk/internal/domain/contract"
	"github.com/realtydesk/realtydesk/internal/domain/user"
	apperrors "github.com/realtydesk/realtydesk/internal/errors"
)

func newMock(t *testing.T) (*Store, sqlmock.Sqlmock, func()) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock new: %v", err)
	}
	return New(db), mock, func() { db.Close() }
}

func TestCreateUserDuplicateTranslatesToConflict(t *testing.T) {
	store, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("INSERT INTO users").
		WithArgs("alice", []byte("hash")).
		WillReturnError(&pq.Error{Code: "23505", Message: "duplicate key value violates unique constraint"})

	_, err := store.CreateUser(context.Background(), user.User{Username: "alice", PasswordHash: []byte("hash")})
	if se := apperrors.GetServiceError(err); se == nil || se.Code != apperrors.CodeConflict {
		t.Fatalf("expected conflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddContractDateViolationTranslatesToBadRequest(t *testing.T) {
	store, mock, done := newMock(t)
	defer done()

	mock.ExpectExec("CALL add_new_contract").
		WillReturnError(&pq.Error{Code: "P0001", Message: "contract end date must follow start date"})

	err := store.AddContract(context.Background(), contract.Contract{
		ClientID:  1,
		StartDate: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC),
		Amount:    decimal.NewFromInt(1000),
	})
	if se := apperrors.GetServiceError(err); se == nil || se.Code != apperrors.CodeBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteContractCascadeOrder(t *testing.T) {
	store, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM payment").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec("DELETE FROM property_contract").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM earns").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM contract").WithArgs(int64(9)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.DeleteContractCascade(context.Background(), 9); err != nil {
		t.Fatalf("DeleteContractCascade: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteContractCascadeRollsBackOnFailure(t *testing.T) {
	store, mock, done := newMock(t)
	defer done()

	boom := errors.New("connection reset")
	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM payment").WithArgs(int64(9)).WillReturnError(boom)
	mock.ExpectRollback()

	if err := store.DeleteContractCascade(context.Background(), 9); !errors.Is(err, boom) {
		t.Fatalf("expected underlying error, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestDeleteClientCascadeRemovesContractsFirst(t *testing.T) {
	store, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT contract_id FROM contract").
		WithArgs(int64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"contract_id"}).AddRow(int64(11)).AddRow(int64(12)))
	for _, cid := range []int64{11, 12} {
		mock.ExpectExec("DELETE FROM payment").WithArgs(cid).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM property_contract").WithArgs(cid).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM earns").WithArgs(cid).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectExec("DELETE FROM contract").WithArgs(cid).WillReturnResult(sqlmock.NewResult(0, 1))
	}
	mock.ExpectExec("DELETE FROM client_phone").WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("DELETE FROM client").WithArgs(int64(4)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := store.DeleteClientCascade(context.Background(), 4); err != nil {
		t.Fatalf("DeleteClientCascade: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddPaymentReportsCommissionChange(t *testing.T) {
	store, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM earns").
		WithArgs(int64(5)).
		WillReturnRows(sqlmock.NewRows([]string{"commission_id", "amount", "percentage"}).
			AddRow(int64(3), "50", "5"))
	mock.ExpectExec("INSERT INTO payment").
		WithArgs(int64(5), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("SELECT amount FROM commission").
		WithArgs(int64(3)).
		WillReturnRows(sqlmock.NewRows([]string{"amount"}).AddRow("200"))

	rep, err := store.AddPayment(context.Background(), 5, decimal.NewFromInt(3000))
	if err != nil {
		t.Fatalf("AddPayment: %v", err)
	}
	if rep.CommissionID != 3 {
		t.Fatalf("unexpected commission id %d", rep.CommissionID)
	}
	if !rep.PreAmount.Equal(decimal.NewFromInt(50)) || !rep.PostAmount.Equal(decimal.NewFromInt(200)) {
		t.Fatalf("expected 50 -> 200, got %s -> %s", rep.PreAmount, rep.PostAmount)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAddPaymentWithoutCommissionLink(t *testing.T) {
	store, mock, done := newMock(t)
	defer done()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM earns").WithArgs(int64(5)).WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := store.AddPayment(context.Background(), 5, decimal.NewFromInt(100))
	if se := apperrors.GetServiceError(err); se == nil || se.Code != apperrors.CodeBadRequest {
		t.Fatalf("expected bad request, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStats(t *testing.T) {
	store, mock, done := newMock(t)
	defer done()

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"clients", "contracts", "agents", "total"}).
			AddRow(int64(3), int64(2), int64(4), "1500.50"))

	stats, err := store.Stats(context.Background())
	if err != nil {
		t.Fatalf("Stats: %v", err)
	}
	if stats.Clients != 3 || stats.Contracts != 2 || stats.Agents != 4 {
		t.Fatalf("unexpected counts: %+v", stats)
	}
	if !stats.TotalPaid.Equal(decimal.RequireFromString("1500.50")) {
		t.Fatalf("unexpected total %s", stats.TotalPaid)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestStoreIntegration(t *testing.T) {
	dsn := os.Getenv("TEST_POSTGRES_DSN")
	if dsn == "" {
		t.Skip("TEST_POSTGRES_DSN not set; skipping postgres integration test")
	}

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	store := New(db)
	ctx := context.Background()

	clients, err := store.ListClients(ctx)
	if err != nil {
		t.Fatalf("list clients: %v", err)
	}
	t.Logf("clients: %d", len(clients))

	if _, err := store.Stats(ctx); err != nil {
		t.Fatalf("stats: %v", err)
	}
}
