package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"legisbase/internal/core"
	"legisbase/internal/source"

	_ "modernc.org/sqlite"
)

var _ source.Loader = (*SQLiteRepository)(nil)

// timeLayout is fixed width so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000Z"

// SQLiteRepository stores bills for offline seeding and records bill
// lookups written by the worker.
type SQLiteRepository struct {
	db      *sql.DB
	queries *Queries
	path    string
}

// BillLookupStat aggregates the lookups that referenced one bill.
type BillLookupStat struct {
	BillID   int       `json:"billId"`
	Title    string    `json:"title"`
	Listed   int64     `json:"listed"`
	Fetched  int64     `json:"fetched"`
	Misses   int64     `json:"misses"`
	LastSeen time.Time `json:"lastSeen"`
}

// LookupTotals counts every recorded lookup.
type LookupTotals struct {
	Total int64 `json:"total"`
	Lists int64 `json:"lists"`
	Gets  int64 `json:"gets"`
	Empty int64 `json:"empty"`
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Migrations first: they run on their own connection.
	if err := RunMigrations(dbPath); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}
	// Single writer to avoid SQLITE_BUSY errors.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return &SQLiteRepository{db: db, queries: New(db), path: dbPath}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *SQLiteRepository) Name() string {
	return "sqlite:" + r.path
}

func (r *SQLiteRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Load returns every stored bill ordered by id, with tags in stored order.
func (r *SQLiteRepository) Load(ctx context.Context) ([]core.Bill, error) {
	rows, err := r.queries.ListBills(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bills: %w", err)
	}
	tags, err := r.queries.ListBillTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("list bill tags: %w", err)
	}

	byBill := make(map[int64][]string, len(rows))
	for _, t := range tags {
		byBill[t.BillID] = append(byBill[t.BillID], t.Tag)
	}

	bills := make([]core.Bill, 0, len(rows))
	for _, row := range rows {
		billTags := byBill[row.ID]
		if billTags == nil {
			billTags = []string{}
		}
		bills = append(bills, core.Bill{
			ID:               int(row.ID),
			Title:            row.Title,
			BillNumber:       row.BillNumber,
			Status:           row.Status,
			Summary:          row.Summary,
			AIInterpretation: row.AIInterpretation,
			Tags:             billTags,
			DateIntroduced:   row.DateIntroduced,
			Sponsor:          row.Sponsor,
		})
	}

	slog.InfoContext(ctx, "Loaded bills from SQLite", "path", r.path, "count", len(bills))
	return bills, nil
}

// ImportBills replaces every stored bill with bills in one transaction.
// Nothing is written if any bill is invalid.
func (r *SQLiteRepository) ImportBills(ctx context.Context, bills []core.Bill) (int, error) {
	seen := make(map[int]struct{}, len(bills))
	for i, b := range bills {
		if err := b.Validate(); err != nil {
			return 0, fmt.Errorf("bill at position %d (id=%d): %w", i, b.ID, err)
		}
		if _, dup := seen[b.ID]; dup {
			return 0, fmt.Errorf("bill at position %d: %w: %d", i, core.ErrDuplicateID, b.ID)
		}
		seen[b.ID] = struct{}{}
	}

	err := r.withTx(ctx, func(q *Queries) error {
		if err := q.DeleteAllBills(ctx); err != nil {
			return fmt.Errorf("clear bills: %w", err)
		}
		for _, b := range bills {
			if err := q.InsertBill(ctx, billRow{
				ID:               int64(b.ID),
				Title:            b.Title,
				BillNumber:       b.BillNumber,
				Status:           b.Status,
				Summary:          b.Summary,
				AIInterpretation: b.AIInterpretation,
				DateIntroduced:   b.DateIntroduced,
				Sponsor:          b.Sponsor,
			}); err != nil {
				return fmt.Errorf("insert bill %d: %w", b.ID, err)
			}
			for pos, tag := range b.Tags {
				if err := q.InsertBillTag(ctx, int64(b.ID), pos, tag); err != nil {
					return fmt.Errorf("insert tag %q for bill %d: %w", tag, b.ID, err)
				}
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.InfoContext(ctx, "Bills imported into SQLite", "path", r.path, "count", len(bills))
	return len(bills), nil
}

// RecordLookups stores a batch of lookup events atomically.
func (r *SQLiteRepository) RecordLookups(ctx context.Context, events []core.LookupEvent) error {
	if len(events) == 0 {
		return nil
	}
	return r.withTx(ctx, func(q *Queries) error {
		for _, ev := range events {
			if !ev.Kind.IsValid() {
				return fmt.Errorf("record lookup: unknown kind %q", ev.Kind)
			}
			at := ev.At
			if at.IsZero() {
				at = time.Now()
			}
			id, err := q.InsertLookup(ctx, lookupParams{
				Kind:        string(ev.Kind),
				Search:      ev.Search,
				Tag:         ev.Tag,
				Found:       ev.Found,
				ResultCount: ev.ResultCount,
				RequestID:   ev.RequestID,
				LookedUpAt:  at.UTC().Format(timeLayout),
			})
			if err != nil {
				return fmt.Errorf("insert lookup: %w", err)
			}
			for _, billID := range ev.BillIDs {
				if err := q.InsertLookupHit(ctx, id, int64(billID)); err != nil {
					return fmt.Errorf("insert lookup hit: %w", err)
				}
			}
		}
		return nil
	})
}

// LookupStats returns per-bill lookup counts, most looked-up first.
// limit <= 0 means no limit.
func (r *SQLiteRepository) LookupStats(ctx context.Context, limit int) ([]BillLookupStat, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.queries.BillLookupStats(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("lookup stats: %w", err)
	}
	out := make([]BillLookupStat, 0, len(rows))
	for _, row := range rows {
		last, err := time.Parse(timeLayout, row.LastSeen)
		if err != nil {
			return nil, fmt.Errorf("parse lookup time %q: %w", row.LastSeen, err)
		}
		out = append(out, BillLookupStat{
			BillID:   int(row.BillID),
			Title:    row.Title,
			Listed:   row.Listed,
			Fetched:  row.Fetched,
			Misses:   row.Misses,
			LastSeen: last,
		})
	}
	return out, nil
}

// Totals counts all recorded lookups.
func (r *SQLiteRepository) Totals(ctx context.Context) (LookupTotals, error) {
	total, lists, gets, empty, err := r.queries.LookupTotals(ctx)
	if err != nil {
		return LookupTotals{}, fmt.Errorf("lookup totals: %w", err)
	}
	return LookupTotals{Total: total, Lists: lists, Gets: gets, Empty: empty}, nil
}

func (r *SQLiteRepository) withTx(ctx context.Context, fn func(*Queries) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				slog.ErrorContext(ctx, "Rollback failed", "error", rbErr)
			}
		}
	}()

	if err = fn(r.queries.WithTx(tx)); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}
