package repository

import (
	"context"
	stderrors "errors"
	"fmt"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"

	apperrors "github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

var lineColumns = []string{
	"product_id", "sku", "name", "quantity", "base_price", "unit_price",
	"tier_min_quantity", "discount_percent", "discount_amount", "total_price",
}

func newMockDB(t *testing.T) (*PostgresOrderRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewPostgresOrderRepository(db, logging.Nop()), mock
}

func orderColumnNames() []string {
	return strings.Split(strings.Join(strings.Fields(orderColumns), ""), ",")
}

func orderRows(status models.OrderStatus) *sqlmock.Rows {
	created := time.Date(2024, 1, 15, 3, 30, 0, 0, time.UTC)
	return sqlmock.NewRows(orderColumnNames()).AddRow(
		"ord-1", "ORD20240115-A1B2C3", int64(1), "sales", string(status),
		time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), "IDR",
		0.0, 11.0, int64(1200000), int64(0), int64(1200000),
		int64(132000), int64(1332000), "transfer", nil, "Jane Sales",
		nil, nil, false, nil, created, created,
	)
}

func TestPostgresOrderRepository_Create(t *testing.T) {
	repo, mock := newMockDB(t)
	order := &models.Order{
		ID:          "ord-1",
		OrderNumber: "ORD20240115-A1B2C3",
		CustomerID:  1,
		Channel:     models.ChannelSales,
		Status:      models.OrderStatusDraft,
		Currency:    "IDR",
		Lines: []models.OrderLine{
			{ProductID: 1, Quantity: 2, BasePrice: 600000, UnitPrice: 600000, TierMinQuantity: 1, TotalPrice: 1200000},
		},
		TotalAmount: 1332000,
	}

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sales_orders")).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO order_items")).
		WithArgs("ord-1", 1, int64(1), 2, int64(600000), int64(600000), 1, 0.0, int64(0), int64(1200000)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Create(context.Background(), order); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresOrderRepository_Create_DuplicateNumber(t *testing.T) {
	repo, mock := newMockDB(t)

	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sales_orders")).
		WillReturnError(&pq.Error{Code: "23505"})
	mock.ExpectRollback()

	err := repo.Create(context.Background(), &models.Order{ID: "ord-2", OrderNumber: "ORD20240115-A1B2C3"})
	if !stderrors.Is(err, apperrors.ErrConflict) {
		t.Errorf("Expected ErrConflict, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresOrderRepository_UpdateStatus(t *testing.T) {
	change := &StatusChange{
		From:       models.OrderStatusPendingApproval,
		To:         models.OrderStatusApproved,
		ApprovedBy: "sari",
		At:         time.Date(2024, 1, 15, 4, 0, 0, 0, time.UTC),
	}
	update := regexp.QuoteMeta("UPDATE sales_orders")
	fetch := regexp.QuoteMeta("FROM sales_orders WHERE id = $1")
	items := regexp.QuoteMeta("FROM order_items")

	tests := []struct {
		name    string
		expect  func(mock sqlmock.Sqlmock)
		wantErr error
	}{
		{
			name: "applied",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).
					WithArgs("ord-1", "pending_approval", "approved", sqlmock.AnyArg(), "sari", change.At).
					WillReturnResult(sqlmock.NewResult(0, 1))
				mock.ExpectQuery(fetch).WithArgs("ord-1").WillReturnRows(orderRows(models.OrderStatusApproved))
				mock.ExpectQuery(items).WithArgs("ord-1").WillReturnRows(
					sqlmock.NewRows(lineColumns).AddRow(int64(1), "PRD001", "Laptop Pro", 2, int64(600000), int64(600000), 1, 0.0, int64(0), int64(1200000)),
				)
			},
		},
		{
			name: "status moved underneath",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(fetch).WithArgs("ord-1").WillReturnRows(orderRows(models.OrderStatusRejected))
				mock.ExpectQuery(items).WithArgs("ord-1").WillReturnRows(sqlmock.NewRows(lineColumns))
			},
			wantErr: apperrors.ErrConflict,
		},
		{
			name: "missing order",
			expect: func(mock sqlmock.Sqlmock) {
				mock.ExpectExec(update).WillReturnResult(sqlmock.NewResult(0, 0))
				mock.ExpectQuery(fetch).WithArgs("ord-1").WillReturnRows(sqlmock.NewRows(orderColumnNames()))
			},
			wantErr: apperrors.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock := newMockDB(t)
			tt.expect(mock)

			order, err := repo.UpdateStatus(context.Background(), "ord-1", change)
			if tt.wantErr != nil {
				if !stderrors.Is(err, tt.wantErr) {
					t.Errorf("Expected %v, got %v", tt.wantErr, err)
				}
			} else {
				if err != nil {
					t.Fatalf("UpdateStatus() error = %v", err)
				}
				if order.Status != models.OrderStatusApproved || len(order.Lines) != 1 {
					t.Errorf("Unexpected order %+v", order)
				}
				if order.PaymentTerms != "" || order.SalesRep != "Jane Sales" {
					t.Errorf("Unexpected nullable columns %q %q", order.PaymentTerms, order.SalesRep)
				}
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Error(err)
			}
		})
	}
}

func TestPostgresOrderRepository_List(t *testing.T) {
	repo, mock := newMockDB(t)
	status := models.OrderStatusApproved

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sales_orders WHERE status = $1")).
		WithArgs("approved").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("WHERE status = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3")).
		WithArgs("approved", 20, 0).
		WillReturnRows(orderRows(status))

	orders, total, err := repo.List(context.Background(), &models.OrderListFilter{Status: &status, Limit: 20})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 3 || len(orders) != 1 || orders[0].TotalAmount != 1332000 {
		t.Errorf("Unexpected page: total=%d orders=%v", total, orders)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestPostgresUserRepository(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	defer db.Close()
	repo := NewPostgresUserRepository(db, logging.Nop())
	ctx := context.Background()
	userColumns := []string{"id", "username", "email", "role", "last_login"}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1 AND password = $2")).
		WithArgs("budi", "wrong").
		WillReturnRows(sqlmock.NewRows(userColumns))
	if _, err := repo.FindByCredentials(ctx, "budi", "wrong"); !stderrors.Is(err, apperrors.ErrUnauthorized) {
		t.Errorf("Expected ErrUnauthorized, got %v", err)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("sari").
		WillReturnRows(sqlmock.NewRows(userColumns).AddRow(int64(2), "sari", "", "sales_manager", nil))
	user, err := repo.GetByUsername(ctx, "sari")
	if err != nil {
		t.Fatalf("GetByUsername() error = %v", err)
	}
	if user.Role != "sales_manager" || user.LastLogin != nil {
		t.Errorf("Unexpected user %+v", user)
	}

	mock.ExpectQuery(regexp.QuoteMeta("FROM users WHERE username = $1")).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(userColumns))
	if _, err := repo.GetByUsername(ctx, "ghost"); !stderrors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Error(err)
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	date := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		channel models.Channel
		prefix  string
	}{
		{models.ChannelSales, "ORD20240115-"},
		{models.ChannelMobile, "MO20240115-"},
		{"", "ORD20240115-"},
	}

	for _, tt := range tests {
		t.Run(string(tt.channel), func(t *testing.T) {
			n := GenerateOrderNumber(tt.channel, date)
			if !strings.HasPrefix(n, tt.prefix) {
				t.Errorf("Expected prefix %s, got %s", tt.prefix, n)
			}
			if len(n) != len(tt.prefix)+6 {
				t.Errorf("Expected 6 char suffix, got %s", n)
			}
		})
	}

	if GenerateOrderNumber(models.ChannelSales, date) == GenerateOrderNumber(models.ChannelSales, date) {
		t.Error("Expected distinct order numbers")
	}
}

func TestNewOrderID(t *testing.T) {
	id := NewOrderID()
	if len(id) != 36 {
		t.Errorf("Expected UUID, got %s", id)
	}
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"pq unique", &pq.Error{Code: "23505"}, true},
		{"pq wrapped", fmt.Errorf("insert: %w", &pq.Error{Code: "23505"}), true},
		{"pq foreign key", &pq.Error{Code: "23503"}, false},
		{"pgx unique", &pgconn.PgError{Code: "23505"}, true},
		{"pgx other", &pgconn.PgError{Code: "42P01"}, false},
		{"plain", fmt.Errorf("boom"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := isUniqueViolation(tt.err); got != tt.want {
				t.Errorf("isUniqueViolation() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildOrderFilter(t *testing.T) {
	where, args := buildOrderFilter(&models.OrderListFilter{})
	if where != "" || len(args) != 0 {
		t.Errorf("Expected empty filter, got %q %v", where, args)
	}

	status := models.OrderStatusApproved
	channel := models.ChannelMobile
	where, args = buildOrderFilter(&models.OrderListFilter{
		CustomerID: 4,
		Status:     &status,
		Channel:    &channel,
		SalesRep:   "Jane Sales",
	})

	want := " WHERE customer_id = $1 AND status = $2 AND channel = $3 AND sales_rep = $4"
	if where != want {
		t.Errorf("got %q, want %q", where, want)
	}
	if len(args) != 4 || args[1] != status {
		t.Errorf("Unexpected args %v", args)
	}
}

func TestOrderModel_CanCancel(t *testing.T) {
	tests := []struct {
		status   models.OrderStatus
		expected bool
	}{
		{models.OrderStatusDraft, true},
		{models.OrderStatusPendingApproval, true},
		{models.OrderStatusApproved, true},
		{models.OrderStatusProcessing, true},
		{models.OrderStatusShipped, false},
		{models.OrderStatusCompleted, false},
		{models.OrderStatusRejected, false},
		{models.OrderStatusCancelled, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			order := &models.Order{Status: tt.status}
			if order.CanCancel() != tt.expected {
				t.Errorf("CanCancel() = %v, want %v", order.CanCancel(), tt.expected)
			}
		})
	}
}
