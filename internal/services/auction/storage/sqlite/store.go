// Package sqlite provides a SQLite-backed auction storage implementation.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/gavel/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/gavel/internal/services/auction/domain"
	"github.com/louisbranch/gavel/internal/services/auction/storage"
	"github.com/louisbranch/gavel/internal/services/auction/storage/sqlite/migrations"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

// Store persists auction state in SQLite.
type Store struct {
	sqlDB *sql.DB
}

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// Open opens a SQLite auction store and applies embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := sqlitemigrate.ApplyMigrations(sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{sqlDB: sqlDB}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// CreateAuction inserts one record, claims the active-item guard, and points
// the item reverse index at the record, all in one transaction.
func (s *Store) CreateAuction(ctx context.Context, record domain.AuctionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}
	if strings.TrimSpace(record.ID) == "" {
		return fmt.Errorf("record id is required")
	}
	if strings.TrimSpace(record.ItemID) == "" {
		return fmt.Errorf("item id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin create auction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO active_items (item_id, seller) VALUES (?, ?)`,
		record.ItemID,
		record.Seller,
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("claim active item: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO auction_records (
		   record_id,
		   item_id,
		   seller,
		   begin_time,
		   end_time,
		   start_price,
		   current_price,
		   bid_range,
		   status,
		   receiver,
		   created_at,
		   updated_at
		 ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ID,
		record.ItemID,
		record.Seller,
		toMillis(record.BeginTime),
		endTimeToMillis(record.EndTime),
		record.StartPrice,
		record.CurrentPrice,
		record.BidRange,
		int32(record.Status),
		record.Receiver,
		toMillis(record.CreatedAt),
		toMillis(record.UpdatedAt),
	); err != nil {
		if isUniqueViolation(err) {
			return storage.ErrAlreadyExists
		}
		return fmt.Errorf("insert auction record: %w", err)
	}

	if _, err := tx.ExecContext(
		ctx,
		`INSERT INTO item_records (item_id, seller, record_id) VALUES (?, ?, ?)
		 ON CONFLICT (item_id) DO UPDATE SET seller = excluded.seller, record_id = excluded.record_id`,
		record.ItemID,
		record.Seller,
		record.ID,
	); err != nil {
		return fmt.Errorf("update item index: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit create auction: %w", err)
	}
	return nil
}

// UpdateAuction persists a mutated record. The active-item guard is released
// in the same transaction when the record reached a terminal status.
func (s *Store) UpdateAuction(ctx context.Context, record domain.AuctionRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return fmt.Errorf("storage is not configured")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin update auction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(
		ctx,
		`UPDATE auction_records
		    SET current_price = ?,
		        status = ?,
		        receiver = ?,
		        updated_at = ?
		  WHERE record_id = ?`,
		record.CurrentPrice,
		int32(record.Status),
		record.Receiver,
		toMillis(record.UpdatedAt),
		record.ID,
	)
	if err != nil {
		return fmt.Errorf("update auction record: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update auction record: %w", err)
	}
	if affected == 0 {
		return storage.ErrNotFound
	}

	if record.Status.Terminal() {
		if _, err := tx.ExecContext(
			ctx,
			`DELETE FROM active_items WHERE item_id = ?`,
			record.ItemID,
		); err != nil {
			return fmt.Errorf("release active item: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit update auction: %w", err)
	}
	return nil
}

// GetAuction returns one record by its identifier.
func (s *Store) GetAuction(ctx context.Context, recordID string) (domain.AuctionRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuctionRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.AuctionRecord{}, fmt.Errorf("storage is not configured")
	}
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return domain.AuctionRecord{}, fmt.Errorf("record id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		selectAuctionColumns+` FROM auction_records WHERE record_id = ?`,
		recordID,
	)
	return scanAuction(row)
}

// GetAuctionByItem resolves the most recent record for an item through the
// reverse index.
func (s *Store) GetAuctionByItem(ctx context.Context, itemID string) (domain.AuctionRecord, error) {
	if err := ctx.Err(); err != nil {
		return domain.AuctionRecord{}, err
	}
	if s == nil || s.sqlDB == nil {
		return domain.AuctionRecord{}, fmt.Errorf("storage is not configured")
	}
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return domain.AuctionRecord{}, fmt.Errorf("item id is required")
	}

	row := s.sqlDB.QueryRowContext(
		ctx,
		selectAuctionColumns+`
		   FROM auction_records
		  WHERE record_id = (SELECT record_id FROM item_records WHERE item_id = ?)`,
		itemID,
	)
	return scanAuction(row)
}

// ListAuctions returns one page of auction records ordered by record ID.
func (s *Store) ListAuctions(ctx context.Context, pageSize int, pageToken string) (storage.AuctionPage, error) {
	if err := ctx.Err(); err != nil {
		return storage.AuctionPage{}, err
	}
	if s == nil || s.sqlDB == nil {
		return storage.AuctionPage{}, fmt.Errorf("storage is not configured")
	}
	if pageSize <= 0 {
		return storage.AuctionPage{}, fmt.Errorf("page size must be greater than zero")
	}
	pageToken = strings.TrimSpace(pageToken)

	page := storage.AuctionPage{
		Auctions: make([]domain.AuctionRecord, 0, pageSize),
	}

	var (
		rows *sql.Rows
		err  error
	)
	if pageToken == "" {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			selectAuctionColumns+` FROM auction_records ORDER BY record_id ASC LIMIT ?`,
			pageSize+1,
		)
	} else {
		rows, err = s.sqlDB.QueryContext(
			ctx,
			selectAuctionColumns+` FROM auction_records WHERE record_id > ? ORDER BY record_id ASC LIMIT ?`,
			pageToken,
			pageSize+1,
		)
	}
	if err != nil {
		return storage.AuctionPage{}, fmt.Errorf("list auctions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanAuction(rows)
		if err != nil {
			return storage.AuctionPage{}, fmt.Errorf("list auctions: %w", err)
		}
		page.Auctions = append(page.Auctions, record)
	}
	if err := rows.Err(); err != nil {
		return storage.AuctionPage{}, fmt.Errorf("list auctions: %w", err)
	}
	if len(page.Auctions) > pageSize {
		page.NextPageToken = page.Auctions[pageSize-1].ID
		page.Auctions = page.Auctions[:pageSize]
	}

	return page, nil
}

const selectAuctionColumns = `SELECT record_id, item_id, seller,
        begin_time, end_time,
        start_price, current_price, bid_range,
        status, receiver,
        created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAuction(row rowScanner) (domain.AuctionRecord, error) {
	var record domain.AuctionRecord
	var beginTime int64
	var endTime sql.NullInt64
	var status int32
	var createdAt int64
	var updatedAt int64
	err := row.Scan(
		&record.ID,
		&record.ItemID,
		&record.Seller,
		&beginTime,
		&endTime,
		&record.StartPrice,
		&record.CurrentPrice,
		&record.BidRange,
		&status,
		&record.Receiver,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.AuctionRecord{}, storage.ErrNotFound
		}
		return domain.AuctionRecord{}, fmt.Errorf("scan auction record: %w", err)
	}

	record.BeginTime = fromMillis(beginTime)
	if endTime.Valid {
		end := fromMillis(endTime.Int64)
		record.EndTime = &end
	}
	record.Status = domain.Status(status)
	record.CreatedAt = fromMillis(createdAt)
	record.UpdatedAt = fromMillis(updatedAt)
	return record, nil
}

func endTimeToMillis(value *time.Time) any {
	if value == nil {
		return nil
	}
	return toMillis(*value)
}

func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) {
		switch sqliteErr.Code() {
		case sqlite3lib.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3lib.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}

var _ storage.AuctionStore = (*Store)(nil)
