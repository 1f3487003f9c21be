package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/penzflow/penzflow-sales-service/internal/errors"
	"github.com/penzflow/penzflow-sales-service/internal/logging"
	"github.com/penzflow/penzflow-sales-service/internal/models"
)

type PostgresCustomerRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresCustomerRepository(db *sql.DB, logger *logging.Logger) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db, logger: logger}
}

func (r *PostgresCustomerRepository) GetByID(ctx context.Context, id int64) (*models.Customer, error) {
	var c models.Customer
	err := r.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''),
		       COALESCE(company, ''), COALESCE(address, ''), created_at
		FROM customers WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Address, &c.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to fetch customer", logging.Fields{
			"customer_id": id,
			"error":       err.Error(),
		})
		return nil, err
	}
	return &c, nil
}

// PostgresUserRepository looks up dashboard users.
type PostgresUserRepository struct {
	db     *sql.DB
	logger *logging.Logger
}

func NewPostgresUserRepository(db *sql.DB, logger *logging.Logger) *PostgresUserRepository {
	return &PostgresUserRepository{db: db, logger: logger}
}

// FindByCredentials matches username and password as stored. Passwords are
// kept in plaintext by the existing user table.
func (r *PostgresUserRepository) FindByCredentials(ctx context.Context, username, password string) (*models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, COALESCE(email, ''), role, last_login
		FROM users WHERE username = $1 AND password = $2`, username, password,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, errors.ErrUnauthorized
	}
	if err != nil {
		r.logger.Error("Failed to look up user", logging.Fields{
			"username": username,
			"error":    err.Error(),
		})
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

// GetByUsername returns errors.ErrNotFound for an unknown username.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var u models.User
	var lastLogin sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, username, COALESCE(email, ''), role, last_login
		FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Username, &u.Email, &u.Role, &lastLogin)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		r.logger.Error("Failed to look up user", logging.Fields{
			"username": username,
			"error":    err.Error(),
		})
		return nil, err
	}
	if lastLogin.Valid {
		u.LastLogin = &lastLogin.Time
	}
	return &u, nil
}

func (r *PostgresUserRepository) TouchLastLogin(ctx context.Context, id int64, at time.Time) error {
	result, err := r.db.ExecContext(ctx, "UPDATE users SET last_login = $2 WHERE id = $1", id, at)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.ErrNotFound
	}
	return nil
}
