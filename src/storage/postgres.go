package storage

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"drift-observer/src/logger"
	"drift-observer/src/models"

	_ "github.com/lib/pq"
)

// -----------------------------------------------------------------------------

type PostgresDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Schema string
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewPostgresDB(cfg *models.MConfig, log *logger.Logger) (*PostgresDB, error) {
	// Use the executable name as the schema so parallel deployments do not
	// collide in a shared database.
	exe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to get executable name: %w", err)
	}
	name := filepath.Base(exe)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	return &PostgresDB{
		Config: cfg,
		Schema: name,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Initialize() error {
	dsn := d.Config.Storage.DBConnectionString
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// Create Schema
	if _, err := d.DB.Exec(fmt.Sprintf(`CREATE SCHEMA IF NOT EXISTS "%s"`, d.Schema)); err != nil {
		return fmt.Errorf("failed to create schema %s: %w", d.Schema, err)
	}

	if err := d.createTables(); err != nil {
		return err
	}

	d.Logger.Info("PostgresDB initialized successfully (Schema: %s)", d.Schema)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) createTables() error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS "%s"."transactions" (
			signature TEXT,
			kind TEXT,
			authority TEXT,
			sub_account_id INTEGER,
			market_index INTEGER,
			amount TEXT,
			status TEXT,
			detail TEXT,
			created_at TIMESTAMPTZ
		);
	`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}

	query = fmt.Sprintf(`CREATE INDEX IF NOT EXISTS idx_transactions_authority ON "%s"."transactions" (authority, created_at)`, d.Schema)
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create transactions index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) SaveTransaction(tx models.MTransactionRecord) error {
	query := fmt.Sprintf(`
		INSERT INTO "%s"."transactions" (signature, kind, authority, sub_account_id, market_index, amount, status, detail, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`, d.Schema)
	_, err := d.DB.Exec(query, tx.Signature, tx.Kind, tx.Authority, tx.SubAccountID, tx.MarketIndex, tx.Amount, tx.Status, tx.Detail, tx.CreatedAt)
	return err
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) RecentTransactions(authority string, limit int) ([]models.MTransactionRecord, error) {
	query := fmt.Sprintf(`
		SELECT signature, kind, authority, sub_account_id, market_index, amount, status, detail, created_at
		FROM "%s"."transactions"
		WHERE authority = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, d.Schema)
	rows, err := d.DB.Query(query, authority, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	query := fmt.Sprintf(`DELETE FROM "%s"."transactions" WHERE created_at < $1`, d.Schema)
	if _, err := d.DB.Exec(query, cutoff); err != nil {
		d.Logger.Error("Cleanup transactions error: %v", err)
		return err
	}

	d.Logger.Info("Cleanup completed (retention %d days)", retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (d *PostgresDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}
