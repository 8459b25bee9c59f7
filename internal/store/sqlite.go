package store

import (
	"database/sql"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"

	"BillSentinel/internal/finmath"
	"BillSentinel/internal/model"
)

// SQLiteStore keeps obligations and run history in a SQLite database.
// Amounts are stored as decimal strings, due dates as calendar-date strings.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteStore opens (or creates) the database and runs migrations.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL mode so reads don't block the bot's writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite store opened: %s", dbPath)
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS obligations (
			id           INTEGER PRIMARY KEY AUTOINCREMENT,
			name         TEXT NOT NULL,
			total_amount TEXT NOT NULL,
			paid_amount  TEXT NOT NULL DEFAULT '0',
			due_date     TEXT,
			category     TEXT NOT NULL DEFAULT '',
			created_at   INTEGER NOT NULL,
			updated_at   INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_obligations_due ON obligations(due_date)`,

		`CREATE TABLE IF NOT EXISTS schedule_runs (
			id               INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp        INTEGER NOT NULL,
			budget           TEXT,
			total_needed     TEXT,
			scheduled_total  TEXT,
			remaining_budget TEXT,
			scheduled_count  INTEGER,
			deferred_count   INTEGER,
			critical_count   INTEGER,
			over_budget      INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON schedule_runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS reschedule_log (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     INTEGER NOT NULL,
			obligation_id INTEGER NOT NULL,
			old_due       TEXT,
			new_due       TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reschedule_ts ON reschedule_log(timestamp)`,
	}

	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec %q: %w", stmt[:40], err)
		}
	}
	return nil
}

func (s *SQLiteStore) ListOutstanding() ([]model.Obligation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows, err := s.db.Query(`SELECT id, name, total_amount, paid_amount,
		COALESCE(due_date, ''), category FROM obligations ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query obligations: %w", err)
	}
	defer rows.Close()

	var out []model.Obligation
	for rows.Next() {
		var raw rawObligation
		if err := rows.Scan(&raw.ID, &raw.Name, &raw.TotalAmount, &raw.PaidAmount, &raw.DueDate, &raw.Category); err != nil {
			return nil, fmt.Errorf("scan obligation: %w", err)
		}
		o, err := parseObligation(raw)
		if err != nil {
			log.Printf("[WARN] skipping malformed obligation row: %v", err)
			continue
		}
		if o.Settled() {
			continue
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) ListOverdue(today time.Time) ([]model.Obligation, error) {
	outstanding, err := s.ListOutstanding()
	if err != nil {
		return nil, err
	}
	var overdue []model.Obligation
	for _, o := range outstanding {
		if o.OverdueAsOf(today) {
			overdue = append(overdue, o)
		}
	}
	return overdue, nil
}

func (s *SQLiteStore) AddObligation(o *model.Obligation) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().Unix()
	res, err := s.db.Exec(`INSERT INTO obligations
		(name, total_amount, paid_amount, due_date, category, created_at, updated_at)
		VALUES (?,?,?,NULLIF(?,''),?,?,?)`,
		o.Name, o.TotalAmount.String(), o.PaidAmount.String(),
		formatDue(o.DueDate), o.Category, now, now,
	)
	if err != nil {
		return 0, fmt.Errorf("insert obligation: %w", err)
	}
	return res.LastInsertId()
}

// AddLoan expands a loan into one obligation per monthly installment, each
// carrying the fixed amortized payment amount.
func (s *SQLiteStore) AddLoan(name, category string, principal, annualRatePct decimal.Decimal, months int, firstDue time.Time) error {
	payment, err := finmath.AmortizedPayment(principal, annualRatePct, months)
	if err != nil {
		return fmt.Errorf("amortize loan %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for i := 0; i < months; i++ {
		due := firstDue.AddDate(0, i, 0).Format(dateLayout)
		installment := fmt.Sprintf("%s 第%d期", name, i+1)
		if _, err := tx.Exec(`INSERT INTO obligations
			(name, total_amount, paid_amount, due_date, category, created_at, updated_at)
			VALUES (?,?,?,?,?,?,?)`,
			installment, payment.String(), "0", due, category, now, now,
		); err != nil {
			return fmt.Errorf("insert installment %d: %w", i+1, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) MarkPaid(ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(ids)), ",")
	args := make([]any, 0, len(ids)+1)
	args = append(args, time.Now().Unix())
	for _, id := range ids {
		args = append(args, id)
	}
	_, err := s.db.Exec(
		`UPDATE obligations SET paid_amount = total_amount, updated_at = ? WHERE id IN (`+placeholders+`)`,
		args...,
	)
	if err != nil {
		return fmt.Errorf("mark paid: %w", err)
	}
	return nil
}

// ApplyReschedules moves due dates in one transaction and logs each change.
func (s *SQLiteStore) ApplyReschedules(proposals []model.RescheduleProposal) error {
	if len(proposals) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Unix()
	for _, p := range proposals {
		var oldDue sql.NullString
		if err := tx.QueryRow(`SELECT due_date FROM obligations WHERE id = ?`, p.ObligationID).Scan(&oldDue); err != nil {
			return fmt.Errorf("lookup obligation %d: %w", p.ObligationID, err)
		}
		newDue := p.ProposedDate.Format(dateLayout)
		if _, err := tx.Exec(`UPDATE obligations SET due_date = ?, updated_at = ? WHERE id = ?`,
			newDue, now, p.ObligationID); err != nil {
			return fmt.Errorf("reschedule obligation %d: %w", p.ObligationID, err)
		}
		if _, err := tx.Exec(`INSERT INTO reschedule_log (timestamp, obligation_id, old_due, new_due)
			VALUES (?,?,?,?)`, now, p.ObligationID, oldDue.String, newDue); err != nil {
			return fmt.Errorf("log reschedule %d: %w", p.ObligationID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) RecordRun(rec *RunRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	overBudget := 0
	if rec.OverBudget {
		overBudget = 1
	}
	_, err := s.db.Exec(`INSERT INTO schedule_runs
		(timestamp, budget, total_needed, scheduled_total, remaining_budget,
		 scheduled_count, deferred_count, critical_count, over_budget)
		VALUES (?,?,?,?,?,?,?,?,?)`,
		time.Now().Unix(), rec.Budget.String(), rec.TotalNeeded.String(),
		rec.ScheduledTotal.String(), rec.RemainingBudget.String(),
		rec.ScheduledCount, rec.DeferredCount, rec.CriticalCount, overBudget,
	)
	return err
}

func (s *SQLiteStore) Close() error {
	log.Println("[INFO] closing sqlite store")
	return s.db.Close()
}
