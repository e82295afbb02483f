// Package postgresdb provides a PostgreSQL-based implementation of the
// storage interface for persisting accounts and the current session.
// The schema is managed with goose migrations.
package postgresdb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
	"github.com/pressly/goose/v3"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/patric-chuzhbe/internhub/internal/models"
)

const uniqueViolationCode = "23505"

// PostgresDB is a PostgreSQL-backed account and session store.
type PostgresDB struct {
	database          *sql.DB
	connectionTimeout time.Duration
}

// InitOption configures New.
type InitOption func(*initOptions)

type initOptions struct {
	DBPreReset bool
}

// WithDBPreReset drops the schema before migrating. Used by tests.
func WithDBPreReset(preReset bool) InitOption {
	return func(options *initOptions) {
		options.DBPreReset = preReset
	}
}

// New establishes a connection to the PostgreSQL database, runs schema
// migrations, and returns a configured PostgresDB instance.
func New(
	ctx context.Context,
	databaseDSN string,
	connectionTimeout time.Duration,
	migrationsDir string,
	optionsProto ...InitOption,
) (*PostgresDB, error) {
	options := &initOptions{
		DBPreReset: false,
	}
	for _, protoOption := range optionsProto {
		protoOption(options)
	}

	database, err := sql.Open("pgx", databaseDSN)
	if err != nil {
		return nil, err
	}

	result := &PostgresDB{
		database:          database,
		connectionTimeout: connectionTimeout,
	}

	if options.DBPreReset {
		if err := result.resetDB(ctx); err != nil {
			return nil, fmt.Errorf("error while `result.resetDB()` calling: %w", err)
		}
	}

	if err := goose.SetDialect("postgres"); err != nil {
		return nil, fmt.Errorf("error while `goose.SetDialect()` calling: %w", err)
	}

	if err := goose.Up(result.database, migrationsDir); err != nil {
		return nil, fmt.Errorf("error while `goose.Up()` calling: %w", err)
	}

	return result, nil
}

// CreateAccount inserts a new account record and returns it with the
// assigned id. A unique violation on the email column is reported as
// models.ErrDuplicateEmail.
func (db *PostgresDB) CreateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	row := db.database.QueryRowContext(
		ctx,
		`
			INSERT INTO accounts (email, secret_digest, role, applied_internships)
				VALUES ($1, $2, $3, $4)
				RETURNING id
		`,
		account.Email,
		account.SecretDigest,
		account.Role,
		pq.Array(account.AppliedInternships),
	)

	stored := account.Clone()
	if stored.AppliedInternships == nil {
		stored.AppliedInternships = []int64{}
	}

	err := row.Scan(&stored.ID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
			return nil, models.ErrDuplicateEmail
		}
		return nil, err
	}

	return stored, nil
}

func scanAccount(row *sql.Row) (*models.Account, error) {
	account := &models.Account{}
	var applied pq.Int64Array

	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.SecretDigest,
		&account.Role,
		&applied,
	)
	if err != nil {
		return nil, err
	}

	account.AppliedInternships = applied
	if account.AppliedInternships == nil {
		account.AppliedInternships = []int64{}
	}

	return account, nil
}

// FindAccountByEmail looks an account up by exact email match.
func (db *PostgresDB) FindAccountByEmail(ctx context.Context, email string) (*models.Account, bool, error) {
	account, err := scanAccount(db.database.QueryRowContext(
		ctx,
		`
			SELECT id, email, secret_digest, role, applied_internships
				FROM accounts
				WHERE email = $1
		`,
		email,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return account, true, nil
}

// FindAccountByID looks an account up by id.
func (db *PostgresDB) FindAccountByID(ctx context.Context, id int64) (*models.Account, bool, error) {
	account, err := scanAccount(db.database.QueryRowContext(
		ctx,
		`
			SELECT id, email, secret_digest, role, applied_internships
				FROM accounts
				WHERE id = $1
		`,
		id,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return account, true, nil
}

// UpdateAccount replaces the stored record with the matching id.
func (db *PostgresDB) UpdateAccount(ctx context.Context, account *models.Account) (*models.Account, error) {
	result, err := db.database.ExecContext(
		ctx,
		`
			UPDATE accounts
				SET email = $2,
					secret_digest = $3,
					role = $4,
					applied_internships = $5
				WHERE id = $1
		`,
		account.ID,
		account.Email,
		account.SecretDigest,
		account.Role,
		pq.Array(account.AppliedInternships),
	)
	if err != nil {
		return nil, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, models.ErrAccountNotFound
	}

	return account.Clone(), nil
}

// CountAccounts returns the number of registered accounts.
func (db *PostgresDB) CountAccounts(ctx context.Context) (int64, error) {
	var count int64
	err := db.database.QueryRowContext(ctx, `SELECT count(*) FROM accounts`).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// CountApplications returns the total number of applications across accounts.
func (db *PostgresDB) CountApplications(ctx context.Context) (int64, error) {
	var count int64
	err := db.database.QueryRowContext(
		ctx,
		`SELECT coalesce(sum(cardinality(applied_internships)), 0) FROM accounts`,
	).Scan(&count)
	if err != nil {
		return 0, err
	}

	return count, nil
}

// SaveSession stores the account id as the single current session row.
func (db *PostgresDB) SaveSession(ctx context.Context, account *models.Account) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			INSERT INTO current_session (id, account_id)
				VALUES (1, $1)
				ON CONFLICT (id) DO UPDATE
				SET account_id = EXCLUDED.account_id
		`,
		account.ID,
	)

	return err
}

// LoadSession returns the account referenced by the current session row.
func (db *PostgresDB) LoadSession(ctx context.Context) (*models.Account, bool, error) {
	account, err := scanAccount(db.database.QueryRowContext(
		ctx,
		`
			SELECT accounts.id, accounts.email, accounts.secret_digest,
					accounts.role, accounts.applied_internships
				FROM accounts
					JOIN current_session ON current_session.account_id = accounts.id
		`,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	return account, true, nil
}

// ClearSession removes the current session row.
func (db *PostgresDB) ClearSession(ctx context.Context) error {
	_, err := db.database.ExecContext(ctx, `DELETE FROM current_session`)
	return err
}

// Ping verifies the database connection within the configured timeout.
func (db *PostgresDB) Ping(ctx context.Context) error {
	pingCtx, cancel := context.WithTimeout(ctx, db.connectionTimeout)
	defer cancel()

	return db.database.PingContext(pingCtx)
}

// Close closes the underlying database connection.
func (db *PostgresDB) Close() error {
	return db.database.Close()
}

func (db *PostgresDB) resetDB(ctx context.Context) error {
	_, err := db.database.ExecContext(
		ctx,
		`
			DROP TABLE IF EXISTS current_session;
			DROP TABLE IF EXISTS accounts;
			DROP TABLE IF EXISTS goose_db_version;
		`,
	)

	return err
}
