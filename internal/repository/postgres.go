package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

const orderColumns = `
	id, order_number, customer_id, channel, status, order_date, currency,
	discount_percent, tax_percent, subtotal, discount_amount, taxable_amount,
	tax_amount, total_amount, payment_method, payment_terms, sales_rep,
	visit_ref, notes, requires_approval, approved_by, created_at, updated_at
`

// PostgresOrderRepository stores orders in sales_orders and order_items.
type PostgresOrderRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresOrderRepository(db *sql.DB, logger *logging.Logger) *PostgresOrderRepository {
	return &PostgresOrderRepository{
		db:     db,
		logger: logger,
	}
}

// Create inserts the header and all lines in one transaction. A duplicate
// order number returns errors.ErrConflict.
func (r *PostgresOrderRepository) Create(ctx context.Context, order *models.Order) error {
	r.logger.Debug("Creating order", logging.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"lines":        len(order.Lines),
	})

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO sales_orders (`+orderColumns+`) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12,
			$13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23
		)`,
		order.ID,
		order.OrderNumber,
		order.CustomerID,
		order.Channel,
		order.Status,
		order.OrderDate,
		order.Currency,
		order.DiscountPercent,
		order.TaxPercent,
		order.Subtotal,
		order.DiscountAmount,
		order.TaxableAmount,
		order.TaxAmount,
		order.TotalAmount,
		nullString(order.PaymentMethod),
		nullString(order.PaymentTerms),
		nullString(order.SalesRep),
		nullString(order.VisitRef),
		nullString(order.Notes),
		order.RequiresApproval,
		nullString(order.ApprovedBy),
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("order number %s: %w", order.OrderNumber, errors.ErrConflict)
		}
		r.logger.Error("Failed to insert order", logging.Fields{
			"order_id": order.ID,
			"error":    err.Error(),
		})
		return err
	}

	for i, line := range order.Lines {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (
				order_id, line_no, product_id, quantity, base_price, unit_price,
				tier_min_quantity, discount_percent, discount_amount, total_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			order.ID, i+1, line.ProductID, line.Quantity, line.BasePrice, line.UnitPrice,
			line.TierMinQuantity, line.DiscountPercent, line.DiscountAmount, line.TotalPrice,
		)
		if err != nil {
			r.logger.Error("Failed to insert order line", logging.Fields{
				"order_id": order.ID,
				"line":     i + 1,
				"error":    err.Error(),
			})
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}

	r.logger.Info("Order created", logging.Fields{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"total":        order.TotalAmount,
	})
	return nil
}

func (r *PostgresOrderRepository) GetByID(ctx context.Context, id string) (*models.Order, error) {
	return r.getOne(ctx, "id", id)
}

func (r *PostgresOrderRepository) GetByNumber(ctx context.Context, orderNumber string) (*models.Order, error) {
	return r.getOne(ctx, "order_number", orderNumber)
}

func (r *PostgresOrderRepository) getOne(ctx context.Context, column, value string) (*models.Order, error) {
	r.logger.Debug("Fetching order", logging.Fields{column: value})

	row := r.db.QueryRowContext(ctx, "SELECT "+orderColumns+" FROM sales_orders WHERE "+column+" = $1", value)
	order, err := scanOrder(row)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch order", logging.Fields{
			column:  value,
			"error": err.Error(),
		})
		return nil, err
	}

	lines, err := r.loadLines(ctx, order.ID)
	if err != nil {
		return nil, err
	}
	order.Lines = lines
	return order, nil
}

// UpdateStatus applies change only while the stored status still equals
// change.From. A missing order returns ErrNotFound; a status that moved
// underneath the caller returns ErrConflict.
func (r *PostgresOrderRepository) UpdateStatus(ctx context.Context, id string, change *StatusChange) (*models.Order, error) {
	r.logger.Debug("Updating order status", logging.Fields{
		"order_id": id,
		"from":     change.From,
		"to":       change.To,
	})

	result, err := r.db.ExecContext(ctx, `
		UPDATE sales_orders
		SET status = $3,
		    notes = COALESCE($4, notes),
		    approved_by = COALESCE($5, approved_by),
		    updated_at = $6
		WHERE id = $1 AND status = $2`,
		id, change.From, change.To, nullString(change.Notes), nullString(change.ApprovedBy), change.At,
	)
	if err != nil {
		r.logger.Error("Failed to update order status", logging.Fields{
			"order_id": id,
			"error":    err.Error(),
		})
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("order %s is no longer %s: %w", id, change.From, errors.ErrConflict)
	}

	r.logger.Info("Order status updated", logging.Fields{
		"order_id":   id,
		"new_status": change.To,
	})
	return r.GetByID(ctx, id)
}

// List returns one page of orders, newest first, with the total match count.
// Lines are not loaded.
func (r *PostgresOrderRepository) List(ctx context.Context, filter *models.OrderListFilter) ([]*models.Order, int, error) {
	r.logger.Debug("Listing orders", logging.Fields{
		"customer_id": filter.CustomerID,
		"limit":       filter.Limit,
		"offset":      filter.Offset,
	})

	where, args := buildOrderFilter(filter)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM sales_orders"+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := "SELECT " + orderColumns + " FROM sales_orders" + where +
		fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", len(args)+1, len(args)+2)
	args = append(args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	orders := make([]*models.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, 0, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

func buildOrderFilter(filter *models.OrderListFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}

	add := func(cond string, arg interface{}) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if filter.CustomerID != 0 {
		add("customer_id = $%d", filter.CustomerID)
	}
	if filter.Status != nil {
		add("status = $%d", *filter.Status)
	}
	if filter.Channel != nil {
		add("channel = $%d", *filter.Channel)
	}
	if filter.SalesRep != "" {
		add("sales_rep = $%d", filter.SalesRep)
	}
	if filter.StartDate != nil {
		add("order_date >= $%d", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("order_date <= $%d", *filter.EndDate)
	}

	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func (r *PostgresOrderRepository) loadLines(ctx context.Context, orderID string) ([]models.OrderLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.product_id, COALESCE(p.sku, ''), COALESCE(p.name, ''), i.quantity,
		       i.base_price, i.unit_price, i.tier_min_quantity, i.discount_percent,
		       i.discount_amount, i.total_price
		FROM order_items i
		LEFT JOIN products p ON p.id = i.product_id
		WHERE i.order_id = $1
		ORDER BY i.line_no`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make([]models.OrderLine, 0)
	for rows.Next() {
		var l models.OrderLine
		if err := rows.Scan(
			&l.ProductID, &l.SKU, &l.ProductName, &l.Quantity,
			&l.BasePrice, &l.UnitPrice, &l.TierMinQuantity, &l.DiscountPercent,
			&l.DiscountAmount, &l.TotalPrice,
		); err != nil {
			return nil, err
		}
		lines = append(lines, l)
	}
	return lines, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanOrder(row rowScanner) (*models.Order, error) {
	var order models.Order
	var paymentMethod, paymentTerms, salesRep, visitRef, notes, approvedBy sql.NullString

	err := row.Scan(
		&order.ID,
		&order.OrderNumber,
		&order.CustomerID,
		&order.Channel,
		&order.Status,
		&order.OrderDate,
		&order.Currency,
		&order.DiscountPercent,
		&order.TaxPercent,
		&order.Subtotal,
		&order.DiscountAmount,
		&order.TaxableAmount,
		&order.TaxAmount,
		&order.TotalAmount,
		&paymentMethod,
		&paymentTerms,
		&salesRep,
		&visitRef,
		&notes,
		&order.RequiresApproval,
		&approvedBy,
		&order.CreatedAt,
		&order.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	order.PaymentMethod = paymentMethod.String
	order.PaymentTerms = paymentTerms.String
	order.SalesRep = salesRep.String
	order.VisitRef = visitRef.String
	order.Notes = notes.String
	order.ApprovedBy = approvedBy.String
	return &order, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

// NewOrderID returns a random order identifier.
func NewOrderID() string {
	return uuid.NewString()
}

// GenerateOrderNumber builds a human-facing number: ORD for sales orders and
// MO for mobile orders, the order date, then six random hex digits.
func GenerateOrderNumber(channel models.Channel, date time.Time) string {
	prefix := "ORD"
	if channel == models.ChannelMobile {
		prefix = "MO"
	}
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:6])
	return prefix + date.Format("20060102") + "-" + suffix
}
