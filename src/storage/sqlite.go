package storage

import (
	"database/sql"
	"fmt"
	"time"

	"drift-observer/src/logger"
	"drift-observer/src/models"

	_ "modernc.org/sqlite"
)

// -----------------------------------------------------------------------------

type AsyncSQLiteDB struct {
	Config *models.MConfig
	DB     *sql.DB
	Logger *logger.Logger
}

// -----------------------------------------------------------------------------

func NewAsyncSQLiteDB(cfg *models.MConfig, log *logger.Logger) (*AsyncSQLiteDB, error) {
	return &AsyncSQLiteDB{
		Config: cfg,
		Logger: log,
	}, nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Initialize() error {
	dsn := d.Config.Storage.DBPath

	// Open DB
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return err
	}

	if err := db.Ping(); err != nil {
		return err
	}

	d.DB = db

	// PRAGMA optimizations
	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		d.Logger.Warning("Failed to set WAL mode: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL;"); err != nil {
		d.Logger.Warning("Failed to set synchronous mode: %v", err)
	}

	return d.createTables()
}

// -----------------------------------------------------------------------------

// createTables builds the transaction-history schema. The table persists
// across restarts; it is the audit trail, not a cache.
func (d *AsyncSQLiteDB) createTables() error {
	query := `
		CREATE TABLE IF NOT EXISTS transactions (
			signature TEXT,
			kind TEXT,
			authority TEXT,
			sub_account_id INTEGER,
			market_index INTEGER,
			amount TEXT,
			status TEXT,
			detail TEXT,
			created_at TIMESTAMP
		);
	`
	if _, err := d.DB.Exec(query); err != nil {
		return fmt.Errorf("failed to create transactions: %w", err)
	}

	if _, err := d.DB.Exec("CREATE INDEX IF NOT EXISTS idx_transactions_authority ON transactions (authority, created_at)"); err != nil {
		return fmt.Errorf("failed to create transactions index: %w", err)
	}

	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) SaveTransaction(tx models.MTransactionRecord) error {
	query := `
		INSERT INTO transactions (signature, kind, authority, sub_account_id, market_index, amount, status, detail, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := d.DB.Exec(query, tx.Signature, tx.Kind, tx.Authority, tx.SubAccountID, tx.MarketIndex, tx.Amount, tx.Status, tx.Detail, tx.CreatedAt)
	return err
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) RecentTransactions(authority string, limit int) ([]models.MTransactionRecord, error) {
	query := `
		SELECT signature, kind, authority, sub_account_id, market_index, amount, status, detail, created_at
		FROM transactions
		WHERE authority = ?
		ORDER BY created_at DESC
		LIMIT ?
	`
	rows, err := d.DB.Query(query, authority, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTransactions(rows)
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) CleanupOldData() error {
	retentionDays := d.Config.Storage.RetentionDays
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	if _, err := d.DB.Exec("DELETE FROM transactions WHERE created_at < ?", cutoff); err != nil {
		d.Logger.Error("Cleanup transactions error: %v", err)
		return err
	}

	d.Logger.Info("Cleanup completed (retention %d days)", retentionDays)
	return nil
}

// -----------------------------------------------------------------------------

func (d *AsyncSQLiteDB) Close() error {
	if d.DB != nil {
		return d.DB.Close()
	}
	return nil
}

// -----------------------------------------------------------------------------

// scanTransactions is shared with the postgres backend; both drivers return
// the same column layout.
func scanTransactions(rows *sql.Rows) ([]models.MTransactionRecord, error) {
	records := []models.MTransactionRecord{}

	for rows.Next() {
		var record models.MTransactionRecord
		if err := rows.Scan(
			&record.Signature,
			&record.Kind,
			&record.Authority,
			&record.SubAccountID,
			&record.MarketIndex,
			&record.Amount,
			&record.Status,
			&record.Detail,
			&record.CreatedAt,
		); err != nil {
			return nil, err
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
