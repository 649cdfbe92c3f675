package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"billtracker/internal/core"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

const billColumns = `id, bill_number, companion_bills, chamber, title, short_title, description,
	committee, committee_key, status, position, sponsor, subcommittee, fiscal_note,
	lsb, url, notes, is_pinned, created_at, updated_at`

const insertColumns = `bill_number, companion_bills, chamber, title, short_title, description,
	committee, committee_key, status, position, sponsor, subcommittee, fiscal_note,
	lsb, url, notes, is_pinned, created_at, updated_at`

const insertPlaceholders = `?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?`

// SQLiteRepository is the durable bill store.
type SQLiteRepository struct {
	db   *sql.DB
	urls core.URLBuilder
	now  func() time.Time
}

func NewSQLiteRepository(dbPath string, urls core.URLBuilder) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	if _, err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{
		db:   db,
		urls: urls,
		now:  func() time.Time { return time.Now().UTC() },
	}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func (r *SQLiteRepository) ListAll(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+billColumns+` FROM bills ORDER BY is_pinned DESC, bill_number ASC`)
	if err != nil {
		return nil, &core.StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var bills []core.Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, &core.StoreError{Op: "list", Err: err}
		}
		bills = append(bills, b)
	}
	if err := rows.Err(); err != nil {
		return nil, &core.StoreError{Op: "list", Err: err}
	}
	return bills, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (core.Bill, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+billColumns+` FROM bills WHERE id = ?`, id)
	return r.scanOne(row, "get")
}

func (r *SQLiteRepository) Create(ctx context.Context, d core.BillData) (core.Bill, error) {
	d = d.Normalized(r.urls)
	if err := d.Validate(); err != nil {
		return core.Bill{}, err
	}

	b := d.ToBill()
	now := r.timestamp()
	row := r.db.QueryRowContext(ctx,
		`INSERT INTO bills (`+insertColumns+`) VALUES (`+insertPlaceholders+`) RETURNING `+billColumns,
		insertArgs(b, now)...)
	created, err := r.scanOne(row, "create")
	if err != nil {
		return core.Bill{}, err
	}

	slog.InfoContext(ctx, "Bill saved to SQLite", "id", created.ID, "bill_number", created.BillNumber)
	return created, nil
}

func (r *SQLiteRepository) Upsert(ctx context.Context, d core.BillData) (core.Bill, error) {
	d = d.ForUpsert(r.urls)
	if err := d.Validate(); err != nil {
		return core.Bill{}, err
	}

	b := d.ToBill()
	now := r.timestamp()
	row := r.db.QueryRowContext(ctx, `INSERT INTO bills (`+insertColumns+`) VALUES (`+insertPlaceholders+`)
		ON CONFLICT(bill_number) DO UPDATE SET
			companion_bills = excluded.companion_bills,
			chamber = excluded.chamber,
			title = excluded.title,
			short_title = excluded.short_title,
			description = excluded.description,
			committee = excluded.committee,
			committee_key = excluded.committee_key,
			status = excluded.status,
			position = excluded.position,
			sponsor = excluded.sponsor,
			subcommittee = excluded.subcommittee,
			fiscal_note = CASE WHEN excluded.fiscal_note = 1 THEN 1 ELSE bills.fiscal_note END,
			lsb = excluded.lsb,
			url = excluded.url,
			notes = excluded.notes,
			is_pinned = CASE WHEN excluded.is_pinned = 1 THEN 1 ELSE bills.is_pinned END,
			updated_at = excluded.updated_at
		RETURNING `+billColumns,
		insertArgs(b, now)...)
	saved, err := r.scanOne(row, "upsert")
	if err != nil {
		return core.Bill{}, err
	}

	slog.InfoContext(ctx, "Bill upserted in SQLite", "id", saved.ID, "bill_number", saved.BillNumber)
	return saved, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, id int64, p core.BillPatch) (core.Bill, error) {
	if err := p.Validate(); err != nil {
		return core.Bill{}, err
	}

	cols := p.Columns()
	sets := make([]string, 0, len(cols)+1)
	args := make([]any, 0, len(cols)+2)
	for _, c := range cols {
		// Names come from the BillPatch allow-list, never from input.
		sets = append(sets, c.Name+" = ?")
		if v, ok := c.Value.(bool); ok {
			args = append(args, flag(v))
		} else {
			args = append(args, c.Value)
		}
	}
	sets = append(sets, "updated_at = ?")
	args = append(args, r.timestamp(), id)

	row := r.db.QueryRowContext(ctx,
		`UPDATE bills SET `+strings.Join(sets, ", ")+` WHERE id = ? RETURNING `+billColumns, args...)
	updated, err := r.scanOne(row, "update")
	if err != nil {
		return core.Bill{}, err
	}

	slog.InfoContext(ctx, "Bill updated in SQLite", "id", updated.ID, "fields", len(cols))
	return updated, nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, id int64) (core.Bill, error) {
	row := r.db.QueryRowContext(ctx, `DELETE FROM bills WHERE id = ? RETURNING `+billColumns, id)
	deleted, err := r.scanOne(row, "delete")
	if err != nil {
		return core.Bill{}, err
	}

	slog.InfoContext(ctx, "Bill deleted from SQLite", "id", deleted.ID, "bill_number", deleted.BillNumber)
	return deleted, nil
}

func (r *SQLiteRepository) timestamp() string {
	return r.now().Format(time.RFC3339Nano)
}

func (r *SQLiteRepository) scanOne(row *sql.Row, op string) (core.Bill, error) {
	b, err := scanBill(row)
	switch {
	case err == nil:
		return b, nil
	case errors.Is(err, sql.ErrNoRows):
		return core.Bill{}, core.ErrNotFound
	case isUniqueViolation(err):
		return core.Bill{}, core.ErrDuplicate
	default:
		return core.Bill{}, &core.StoreError{Op: op, Err: err}
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBill(s scanner) (core.Bill, error) {
	var (
		b                  core.Bill
		chamber, position  string
		createdAt, updated string
	)
	err := s.Scan(
		&b.ID, &b.BillNumber, &b.CompanionBills, &chamber, &b.Title, &b.ShortTitle, &b.Description,
		&b.Committee, &b.CommitteeKey, &b.Status, &position, &b.Sponsor, &b.Subcommittee, &b.FiscalNote,
		&b.LSB, &b.URL, &b.Notes, &b.IsPinned, &createdAt, &updated,
	)
	if err != nil {
		return core.Bill{}, err
	}
	b.Chamber = core.Chamber(chamber)
	b.Position = core.Position(position)
	if b.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return core.Bill{}, fmt.Errorf("parse created_at: %w", err)
	}
	if b.UpdatedAt, err = time.Parse(time.RFC3339Nano, updated); err != nil {
		return core.Bill{}, fmt.Errorf("parse updated_at: %w", err)
	}
	return b, nil
}

func insertArgs(b core.Bill, now string) []any {
	return []any{
		b.BillNumber, text(b.CompanionBills), string(b.Chamber), text(b.Title), text(b.ShortTitle), text(b.Description),
		text(b.Committee), text(b.CommitteeKey), text(b.Status), string(b.Position), text(b.Sponsor), text(b.Subcommittee), flag(b.FiscalNote),
		text(b.LSB), text(b.URL), text(b.Notes), flag(b.IsPinned), now, now,
	}
}

func text(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

func flag(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func isUniqueViolation(err error) bool {
	var se *sqlite.Error
	if errors.As(err, &se) {
		switch se.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
