package storage

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...any) (sql.Result, error)
	QueryContext(context.Context, string, ...any) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...any) *sql.Row
}

// Queries holds the SQL statements used by the repository.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

type billRow struct {
	ID               int64
	Title            string
	BillNumber       string
	Status           string
	Summary          string
	AIInterpretation string
	DateIntroduced   string
	Sponsor          string
}

const listBills = `
SELECT id, title, bill_number, status, summary, ai_interpretation, date_introduced, sponsor
FROM bills
ORDER BY id`

func (q *Queries) ListBills(ctx context.Context) ([]billRow, error) {
	rows, err := q.db.QueryContext(ctx, listBills)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []billRow
	for rows.Next() {
		var i billRow
		if err := rows.Scan(&i.ID, &i.Title, &i.BillNumber, &i.Status, &i.Summary,
			&i.AIInterpretation, &i.DateIntroduced, &i.Sponsor); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

type tagRow struct {
	BillID int64
	Tag    string
}

const listBillTags = `
SELECT bill_id, tag
FROM bill_tags
ORDER BY bill_id, position`

func (q *Queries) ListBillTags(ctx context.Context) ([]tagRow, error) {
	rows, err := q.db.QueryContext(ctx, listBillTags)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []tagRow
	for rows.Next() {
		var i tagRow
		if err := rows.Scan(&i.BillID, &i.Tag); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const deleteAllBillTags = `DELETE FROM bill_tags`

const deleteAllBills = `DELETE FROM bills`

func (q *Queries) DeleteAllBills(ctx context.Context) error {
	if _, err := q.db.ExecContext(ctx, deleteAllBillTags); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx, deleteAllBills)
	return err
}

const insertBill = `
INSERT INTO bills (id, title, bill_number, status, summary, ai_interpretation, date_introduced, sponsor)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertBill(ctx context.Context, b billRow) error {
	_, err := q.db.ExecContext(ctx, insertBill,
		b.ID, b.Title, b.BillNumber, b.Status, b.Summary,
		b.AIInterpretation, b.DateIntroduced, b.Sponsor)
	return err
}

const insertBillTag = `INSERT INTO bill_tags (bill_id, position, tag) VALUES (?, ?, ?)`

func (q *Queries) InsertBillTag(ctx context.Context, billID int64, position int, tag string) error {
	_, err := q.db.ExecContext(ctx, insertBillTag, billID, position, tag)
	return err
}

type lookupParams struct {
	Kind        string
	Search      string
	Tag         string
	Found       bool
	ResultCount int
	RequestID   string
	LookedUpAt  string
}

const insertLookup = `
INSERT INTO bill_lookups (kind, search, tag, found, result_count, request_id, looked_up_at)
VALUES (?, ?, ?, ?, ?, ?, ?)`

func (q *Queries) InsertLookup(ctx context.Context, p lookupParams) (int64, error) {
	res, err := q.db.ExecContext(ctx, insertLookup,
		p.Kind, p.Search, p.Tag, p.Found, p.ResultCount, p.RequestID, p.LookedUpAt)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const insertLookupHit = `INSERT OR IGNORE INTO bill_lookup_hits (lookup_id, bill_id) VALUES (?, ?)`

func (q *Queries) InsertLookupHit(ctx context.Context, lookupID, billID int64) error {
	_, err := q.db.ExecContext(ctx, insertLookupHit, lookupID, billID)
	return err
}

const billLookupStats = `
SELECT h.bill_id,
       COALESCE(b.title, '') AS title,
       SUM(CASE WHEN l.found = 1 AND l.kind = 'list' THEN 1 ELSE 0 END) AS listed,
       SUM(CASE WHEN l.found = 1 AND l.kind = 'get' THEN 1 ELSE 0 END) AS fetched,
       SUM(CASE WHEN l.found = 0 THEN 1 ELSE 0 END) AS misses,
       MAX(l.looked_up_at) AS last_seen
FROM bill_lookup_hits h
JOIN bill_lookups l ON l.id = h.lookup_id
LEFT JOIN bills b ON b.id = h.bill_id
GROUP BY h.bill_id
ORDER BY SUM(CASE WHEN l.found = 1 THEN 1 ELSE 0 END) DESC, h.bill_id
LIMIT ?`

type billLookupStatRow struct {
	BillID   int64
	Title    string
	Listed   int64
	Fetched  int64
	Misses   int64
	LastSeen string
}

func (q *Queries) BillLookupStats(ctx context.Context, limit int) ([]billLookupStatRow, error) {
	rows, err := q.db.QueryContext(ctx, billLookupStats, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []billLookupStatRow
	for rows.Next() {
		var i billLookupStatRow
		if err := rows.Scan(&i.BillID, &i.Title, &i.Listed, &i.Fetched, &i.Misses, &i.LastSeen); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const lookupTotals = `
SELECT COUNT(*),
       COALESCE(SUM(CASE WHEN kind = 'list' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN kind = 'get' THEN 1 ELSE 0 END), 0),
       COALESCE(SUM(CASE WHEN found = 0 THEN 1 ELSE 0 END), 0)
FROM bill_lookups`

func (q *Queries) LookupTotals(ctx context.Context) (total, lists, gets, empty int64, err error) {
	err = q.db.QueryRowContext(ctx, lookupTotals).Scan(&total, &lists, &gets, &empty)
	return
}
