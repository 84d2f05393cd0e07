package store

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/marofny/deckhand/internal/core/domain"
)

//go:embed migrations/*.sql
var migrationsFS embed.FS

// parseSQLiteTime parses a time string that may be RFC3339 (from Go code)
// or SQLite datetime format "2006-01-02 15:04:05" (from migrations).
func parseSQLiteTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}
	if t, err := time.Parse("2006-01-02 15:04:05", s); err == nil {
		return t
	}
	return time.Time{}
}

// isUniqueViolation reports whether err is a sqlite unique-constraint error.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// =============================================================================
// SQLiteStore
// =============================================================================

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sqlx.DB
}

// NewSQLiteStore creates a new SQLite store and runs migrations.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sqlx.Open("sqlite3", dsn+"?_foreign_keys=on")
	if err != nil {
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to open database", ErrConnectionFailed)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", "failed to ping database", ErrConnectionFailed)
	}

	if err := runMigrations(db.DB); err != nil {
		db.Close()
		return nil, NewStoreError("NewSQLiteStore", "", "", err.Error(), ErrMigrationFailed)
	}

	return &SQLiteStore{db: db}, nil
}

// runMigrations runs database migrations using embedded SQL files.
func runMigrations(db *sql.DB) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{NoTxWrap: true})
	if err != nil {
		return fmt.Errorf("failed to create migration driver: %w", err)
	}

	source, err := iofs.New(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("failed to create migration source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("failed to create migrator: %w", err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// =============================================================================
// Secret Operations
// =============================================================================

// secretRow represents a secret row in the database.
type secretRow struct {
	Key       string `db:"key"`
	Value     string `db:"value"`
	CreatedAt string `db:"created_at"`
}

func (r secretRow) toDomain() domain.Secret {
	return domain.Secret{
		Key:       r.Key,
		Value:     r.Value,
		CreatedAt: parseSQLiteTime(r.CreatedAt),
	}
}

func (s *SQLiteStore) CreateSecret(ctx context.Context, key, value string) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO secrets (key, value, created_at) VALUES (?, ?, ?)`,
		key, value, time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateSecret", "secret", key, "secret already exists", ErrDuplicateKey)
		}
		return NewStoreError("CreateSecret", "secret", key, err.Error(), err)
	}
	return nil
}

func (s *SQLiteStore) UpdateSecret(ctx context.Context, key, value string) error {
	res, err := s.db.ExecContext(ctx, `UPDATE secrets SET value = ? WHERE key = ?`, value, key)
	if err != nil {
		return NewStoreError("UpdateSecret", "secret", key, err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("UpdateSecret", "secret", key, "secret not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) DeleteSecret(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM secrets WHERE key = ?`, key)
	if err != nil {
		return NewStoreError("DeleteSecret", "secret", key, err.Error(), err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return NewStoreError("DeleteSecret", "secret", key, "secret not found", ErrNotFound)
	}
	return nil
}

func (s *SQLiteStore) GetSecret(ctx context.Context, key string) (*domain.Secret, error) {
	var row secretRow
	err := s.db.GetContext(ctx, &row, `SELECT key, value, created_at FROM secrets WHERE key = ?`, key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError("GetSecret", "secret", key, "secret not found", ErrNotFound)
		}
		return nil, NewStoreError("GetSecret", "secret", key, err.Error(), err)
	}
	secret := row.toDomain()
	return &secret, nil
}

func (s *SQLiteStore) ListSecrets(ctx context.Context) ([]domain.Secret, error) {
	var rows []secretRow
	err := s.db.SelectContext(ctx, &rows, `SELECT key, value, created_at FROM secrets ORDER BY key`)
	if err != nil {
		return nil, NewStoreError("ListSecrets", "secret", "", err.Error(), err)
	}
	secrets := make([]domain.Secret, 0, len(rows))
	for _, row := range rows {
		secrets = append(secrets, row.toDomain())
	}
	return secrets, nil
}

// =============================================================================
// User Operations
// =============================================================================

// userRow represents a user row in the database.
type userRow struct {
	ID           int    `db:"id"`
	Name         string `db:"name"`
	PasswordHash string `db:"password_hash"`
	Token        string `db:"token"`
	Role         string `db:"role"`
	CreatedAt    string `db:"created_at"`
}

func (r userRow) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Token:        r.Token,
		Role:         domain.Role(r.Role),
		CreatedAt:    parseSQLiteTime(r.CreatedAt),
	}
}

func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (name, password_hash, token, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.Name, user.PasswordHash, user.Token, string(user.Role),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		if isUniqueViolation(err) {
			return NewStoreError("CreateUser", "user", user.Name, "user already exists", ErrDuplicateKey)
		}
		return NewStoreError("CreateUser", "user", user.Name, err.Error(), err)
	}
	if id, err := res.LastInsertId(); err == nil {
		user.ID = int(id)
	}
	return nil
}

func (s *SQLiteStore) GetUserByName(ctx context.Context, name string) (*domain.User, error) {
	return s.getUser(ctx, "GetUserByName", `SELECT * FROM users WHERE name = ?`, name)
}

func (s *SQLiteStore) GetUserByToken(ctx context.Context, token string) (*domain.User, error) {
	return s.getUser(ctx, "GetUserByToken", `SELECT * FROM users WHERE token = ?`, token)
}

func (s *SQLiteStore) getUser(ctx context.Context, op, query, arg string) (*domain.User, error) {
	var row userRow
	err := s.db.GetContext(ctx, &row, query, arg)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, NewStoreError(op, "user", "", "user not found", ErrNotFound)
		}
		return nil, NewStoreError(op, "user", "", err.Error(), err)
	}
	return row.toDomain(), nil
}

func (s *SQLiteStore) CountUsers(ctx context.Context) (int, error) {
	var count int
	if err := s.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, NewStoreError("CountUsers", "user", "", err.Error(), err)
	}
	return count, nil
}

// =============================================================================
// Deploy Snapshot Operations
// =============================================================================

// snapshotRow represents a deploy snapshot row in the database.
type snapshotRow struct {
	ID          int    `db:"id"`
	ProjectName string `db:"project_name"`
	Payload     string `db:"payload"`
	CreatedAt   string `db:"created_at"`
}

func (r snapshotRow) toDomain() domain.Snapshot {
	return domain.Snapshot{
		ID:          r.ID,
		ProjectName: r.ProjectName,
		Payload:     []byte(r.Payload),
		CreatedAt:   parseSQLiteTime(r.CreatedAt),
	}
}

func (s *SQLiteStore) SaveSnapshot(ctx context.Context, projectName string, payload []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO deploys (project_name, payload, created_at) VALUES (?, ?, ?)`,
		projectName, string(payload), time.Now().UTC().Format(time.RFC3339Nano))
	if err != nil {
		return NewStoreError("SaveSnapshot", "snapshot", projectName, err.Error(), err)
	}
	return nil
}

func (s *SQLiteStore) ListSnapshots(ctx context.Context) ([]domain.Snapshot, error) {
	var rows []snapshotRow
	// id is monotonically increasing, so ordering by it yields newest first
	// even when two snapshots land within one clock tick.
	err := s.db.SelectContext(ctx, &rows,
		`SELECT id, project_name, payload, created_at FROM deploys ORDER BY id DESC`)
	if err != nil {
		return nil, NewStoreError("ListSnapshots", "snapshot", "", err.Error(), err)
	}
	snapshots := make([]domain.Snapshot, 0, len(rows))
	for _, row := range rows {
		snapshots = append(snapshots, row.toDomain())
	}
	return snapshots, nil
}
