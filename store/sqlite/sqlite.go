/*
Package sqlite provides SQLite-backed implementations of the engine's
storage collaborators: the entitlement ledger, the request store, and
the identity directory.

KEY TABLES:
  ledger_entries:  allocated/used per (employee, type, year, half)
  weekend_ledger:  weekend sub-quota usage per (employee, year, half)
  leave_requests:  the full request entity, never deleted
  employees/teams/team_members: directory records

MUTATION DISCIPLINE:
  leave_requests rows are created once and mutated only by the
  conditional status transition; there is no DELETE path. Ledger rows
  change only through Allocate/Reserve/Release.

CONCURRENCY:
  Reserve runs its read-check-write inside one database transaction
  under a store-level mutex. SQLite allows a single writer; the mutex
  keeps the check and the update from interleaving between goroutines
  sharing the connection pool. WAL mode keeps readers unblocked.

USAGE:
  st, err := sqlite.New(":memory:", logger)
  if err != nil { ... }
  defer st.Close()

SEE ALSO:
  - store: in-memory implementations of the same contracts
  - leave/ledger.go, leave/stores.go: the contracts
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/leave-engine/leave"
)

// rowQuerier is satisfied by both *sql.DB and *sql.Tx.
type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Store implements leave.Ledger, leave.RequestStore and leave.Directory
// on a single SQLite database.
type Store struct {
	db     *sql.DB
	mu     sync.Mutex
	logger *slog.Logger
}

// New opens (or creates) the database at dbPath and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(dbPath string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection: the store mutex serializes writers anyway, and a
	// ":memory:" database would otherwise be a fresh database per
	// pooled connection.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, logger: logger}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS ledger_entries (
		employee_id TEXT NOT NULL,
		leave_type  TEXT NOT NULL,
		year        INTEGER NOT NULL,
		half        INTEGER NOT NULL DEFAULT 0,
		allocated   TEXT NOT NULL DEFAULT '0',
		used        TEXT NOT NULL DEFAULT '0',
		PRIMARY KEY (employee_id, leave_type, year, half)
	);

	CREATE TABLE IF NOT EXISTS weekend_ledger (
		employee_id TEXT NOT NULL,
		year        INTEGER NOT NULL,
		half        INTEGER NOT NULL,
		used        INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (employee_id, year, half)
	);

	CREATE TABLE IF NOT EXISTS leave_requests (
		id                      TEXT PRIMARY KEY,
		employee_id             TEXT NOT NULL,
		team_id                 TEXT,
		leave_type              TEXT NOT NULL,
		start_date              TEXT NOT NULL,
		end_date                TEXT NOT NULL,
		half_day                INTEGER NOT NULL DEFAULT 0,
		half_day_period         TEXT,
		total_days              TEXT NOT NULL,
		reason                  TEXT,
		emergency_contact_name  TEXT,
		emergency_contact_phone TEXT,
		document_ref            TEXT,
		status                  TEXT NOT NULL,
		is_weekend_leave        INTEGER NOT NULL DEFAULT 0,
		period_year             INTEGER NOT NULL,
		period_half             INTEGER NOT NULL,
		category                TEXT,
		team_conflict_check     INTEGER NOT NULL DEFAULT 0,
		requires_admin          INTEGER NOT NULL DEFAULT 0,
		admin_notes             TEXT,
		reviewer_id             TEXT,
		reviewed_at             TEXT,
		created_at              TEXT NOT NULL,
		updated_at              TEXT NOT NULL
	);

	-- Overlap queries for the capacity check (hot path at submit time)
	CREATE INDEX IF NOT EXISTS idx_requests_team_dates
		ON leave_requests(team_id, start_date, end_date);
	CREATE INDEX IF NOT EXISTS idx_requests_employee
		ON leave_requests(employee_id, created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_requests_status
		ON leave_requests(status);

	CREATE TABLE IF NOT EXISTS employees (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		email      TEXT,
		team_id    TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS teams (
		id         TEXT PRIMARY KEY,
		name       TEXT NOT NULL,
		manager_id TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS team_members (
		team_id     TEXT NOT NULL,
		employee_id TEXT NOT NULL,
		PRIMARY KEY (team_id, employee_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// LEDGER
// =============================================================================

func (s *Store) readEntry(ctx context.Context, q rowQuerier, key leave.LedgerKey) (leave.Balance, error) {
	row := q.QueryRowContext(ctx,
		`SELECT allocated, used FROM ledger_entries
		 WHERE employee_id = ? AND leave_type = ? AND year = ? AND half = ?`,
		string(key.EmployeeID), string(key.Type), key.Year, key.Half)

	var allocated, used string
	if err := row.Scan(&allocated, &used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.Balance{Allocated: decimal.Zero, Used: decimal.Zero}, nil
		}
		return leave.Balance{}, err
	}

	a, err := decimal.NewFromString(allocated)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("corrupt allocated amount %q: %w", allocated, err)
	}
	u, err := decimal.NewFromString(used)
	if err != nil {
		return leave.Balance{}, fmt.Errorf("corrupt used amount %q: %w", used, err)
	}
	return leave.Balance{Allocated: a, Used: u}, nil
}

func (s *Store) writeEntry(ctx context.Context, tx *sql.Tx, key leave.LedgerKey, entry leave.Balance) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO ledger_entries (employee_id, leave_type, year, half, allocated, used)
		 VALUES (?, ?, ?, ?, ?, ?)
		 ON CONFLICT(employee_id, leave_type, year, half)
		 DO UPDATE SET allocated = excluded.allocated, used = excluded.used`,
		string(key.EmployeeID), string(key.Type), key.Year, key.Half,
		entry.Allocated.String(), entry.Used.String())
	return err
}

func (s *Store) Balance(ctx context.Context, employeeID leave.EmployeeID, t leave.Type, policy leave.TypePolicy, year int) (leave.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !policy.SemiAnnual {
		return s.readEntry(ctx, s.db, leave.LedgerKey{EmployeeID: employeeID, Type: t, Year: year})
	}

	h1, err := s.readEntry(ctx, s.db, leave.LedgerKey{EmployeeID: employeeID, Type: t, Year: year, Half: 1})
	if err != nil {
		return leave.Balance{}, err
	}
	h2, err := s.readEntry(ctx, s.db, leave.LedgerKey{EmployeeID: employeeID, Type: t, Year: year, Half: 2})
	if err != nil {
		return leave.Balance{}, err
	}
	return h1.Add(h2), nil
}

func (s *Store) BalanceForKey(ctx context.Context, key leave.LedgerKey) (leave.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.readEntry(ctx, s.db, key)
}

func (s *Store) Allocate(ctx context.Context, key leave.LedgerKey, amount decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO ledger_entries (employee_id, leave_type, year, half, allocated, used)
		 VALUES (?, ?, ?, ?, ?, '0')
		 ON CONFLICT(employee_id, leave_type, year, half)
		 DO UPDATE SET allocated = excluded.allocated`,
		string(key.EmployeeID), string(key.Type), key.Year, key.Half, amount.String())
	return err
}

func (s *Store) Reserve(ctx context.Context, key leave.LedgerKey, amount decimal.Decimal) (leave.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return leave.Balance{}, err
	}
	defer tx.Rollback()

	entry, err := s.readEntry(ctx, tx, key)
	if err != nil {
		return leave.Balance{}, err
	}
	if amount.GreaterThan(entry.Remaining()) {
		return entry, &leave.InsufficientBalanceError{
			Key:       key,
			Remaining: entry.Remaining().String(),
			Requested: amount.String(),
		}
	}

	entry.Used = entry.Used.Add(amount)
	if err := s.writeEntry(ctx, tx, key, entry); err != nil {
		return leave.Balance{}, err
	}
	if err := tx.Commit(); err != nil {
		return leave.Balance{}, err
	}
	return entry, nil
}

func (s *Store) Release(ctx context.Context, key leave.LedgerKey, amount decimal.Decimal) (leave.Balance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return leave.Balance{}, err
	}
	defer tx.Rollback()

	entry, err := s.readEntry(ctx, tx, key)
	if err != nil {
		return leave.Balance{}, err
	}
	if amount.GreaterThan(entry.Used) {
		// Rollback of a reserve that was never made: clamp and alert,
		// don't break the caller's request flow.
		s.logger.Warn("release exceeds used balance, clamping to zero",
			"employee", key.EmployeeID, "type", key.Type,
			"year", key.Year, "half", key.Half,
			"used", entry.Used.String(), "release", amount.String())
		entry.Used = decimal.Zero
	} else {
		entry.Used = entry.Used.Sub(amount)
	}

	if err := s.writeEntry(ctx, tx, key, entry); err != nil {
		return leave.Balance{}, err
	}
	if err := tx.Commit(); err != nil {
		return leave.Balance{}, err
	}
	return entry, nil
}

func (s *Store) WeekendUsed(ctx context.Context, key leave.WeekendKey) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	row := s.db.QueryRowContext(ctx,
		`SELECT used FROM weekend_ledger WHERE employee_id = ? AND year = ? AND half = ?`,
		string(key.EmployeeID), key.Year, key.Half)

	var used int
	if err := row.Scan(&used); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, err
	}
	return used, nil
}

func (s *Store) ReserveWeekend(ctx context.Context, key leave.WeekendKey, cap int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var used int
	row := tx.QueryRowContext(ctx,
		`SELECT used FROM weekend_ledger WHERE employee_id = ? AND year = ? AND half = ?`,
		string(key.EmployeeID), key.Year, key.Half)
	if err := row.Scan(&used); err != nil && !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	if used >= cap {
		return leave.ErrWeekendQuotaExhausted
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO weekend_ledger (employee_id, year, half, used) VALUES (?, ?, ?, 1)
		 ON CONFLICT(employee_id, year, half) DO UPDATE SET used = used + 1`,
		string(key.EmployeeID), key.Year, key.Half); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *Store) ReleaseWeekend(ctx context.Context, key leave.WeekendKey) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`UPDATE weekend_ledger SET used = used - 1
		 WHERE employee_id = ? AND year = ? AND half = ? AND used > 0`,
		string(key.EmployeeID), key.Year, key.Half)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		s.logger.Warn("weekend release with zero usage, clamping",
			"employee", key.EmployeeID, "year", key.Year, "half", key.Half)
	}
	return nil
}

var _ leave.Ledger = (*Store)(nil)

// =============================================================================
// REQUEST STORE
// =============================================================================

func (s *Store) Create(ctx context.Context, req *leave.Request) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO leave_requests (
			id, employee_id, team_id, leave_type, start_date, end_date,
			half_day, half_day_period, total_days, reason,
			emergency_contact_name, emergency_contact_phone, document_ref,
			status, is_weekend_leave, period_year, period_half, category,
			team_conflict_check, requires_admin, admin_notes, reviewer_id,
			reviewed_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		string(req.ID), string(req.EmployeeID), string(req.TeamID), string(req.Type),
		req.StartDate.String(), req.EndDate.String(),
		boolToInt(req.HalfDay), string(req.HalfDayPeriod), req.TotalDays.String(), req.Reason,
		req.EmergencyContactName, req.EmergencyContactPhone, req.DocumentRef,
		string(req.Status), boolToInt(req.IsWeekendLeave), req.Period.Year, req.Period.Half,
		string(req.Category), boolToInt(req.TeamConflictCheck), boolToInt(req.RequiresAdmin),
		req.AdminNotes, string(req.ReviewerID), timePtrToString(req.ReviewedAt),
		req.CreatedAt.UTC().Format(time.RFC3339), req.UpdatedAt.UTC().Format(time.RFC3339))
	return err
}

func (s *Store) Get(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getLocked(ctx, id)
}

func (s *Store) getLocked(ctx context.Context, id leave.RequestID) (*leave.Request, error) {
	reqs, err := s.queryRequests(ctx, `WHERE id = ?`, string(id))
	if err != nil {
		return nil, err
	}
	if len(reqs) == 0 {
		return nil, leave.ErrRequestNotFound
	}
	return reqs[0], nil
}

func (s *Store) Transition(ctx context.Context, id leave.RequestID, to leave.RequestStatus, reviewerID leave.EmployeeID, notes string, at time.Time) (*leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	atStr := at.UTC().Format(time.RFC3339)

	var res sql.Result
	var err error
	if reviewerID != "" {
		res, err = s.db.ExecContext(ctx,
			`UPDATE leave_requests
			 SET status = ?, reviewer_id = ?, admin_notes = ?, reviewed_at = ?, updated_at = ?
			 WHERE id = ? AND status = 'pending'`,
			string(to), string(reviewerID), notes, atStr, atStr, string(id))
	} else {
		res, err = s.db.ExecContext(ctx,
			`UPDATE leave_requests SET status = ?, updated_at = ?
			 WHERE id = ? AND status = 'pending'`,
			string(to), atStr, string(id))
	}
	if err != nil {
		return nil, err
	}

	if n, _ := res.RowsAffected(); n == 0 {
		// Lost the race or terminal already: report the actual status.
		current, err := s.getLocked(ctx, id)
		if err != nil {
			return nil, err
		}
		return nil, &leave.InvalidTransitionError{
			RequestID: id,
			Current:   current.Status,
			Attempted: to,
			Reason:    "request is no longer pending",
		}
	}

	return s.getLocked(ctx, id)
}

func (s *Store) ListOverlapping(ctx context.Context, teamID leave.TeamID, rng leave.DateRange, statuses []leave.RequestStatus) ([]*leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := ""
	args := []any{string(teamID), rng.End.String(), rng.Start.String()}
	for i, st := range statuses {
		if i > 0 {
			placeholders += ", "
		}
		placeholders += "?"
		args = append(args, string(st))
	}

	return s.queryRequests(ctx,
		`WHERE team_id = ? AND start_date <= ? AND end_date >= ?
		 AND status IN (`+placeholders+`)`, args...)
}

func (s *Store) ListByEmployee(ctx context.Context, employeeID leave.EmployeeID) ([]*leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryRequests(ctx,
		`WHERE employee_id = ? ORDER BY created_at DESC`, string(employeeID))
}

func (s *Store) ListPending(ctx context.Context) ([]*leave.Request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.queryRequests(ctx, `WHERE status = 'pending' ORDER BY created_at ASC`)
}

func (s *Store) queryRequests(ctx context.Context, where string, args ...any) ([]*leave.Request, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, employee_id, team_id, leave_type, start_date, end_date,
			half_day, half_day_period, total_days, reason,
			emergency_contact_name, emergency_contact_phone, document_ref,
			status, is_weekend_leave, period_year, period_half, category,
			team_conflict_check, requires_admin, admin_notes, reviewer_id,
			reviewed_at, created_at, updated_at
		 FROM leave_requests `+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*leave.Request
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func scanRequest(rows *sql.Rows) (*leave.Request, error) {
	var (
		req                         leave.Request
		id, employeeID, lt          string
		teamID                      sql.NullString
		startDate, endDate          string
		halfDay, weekend            int
		halfDayPeriod               sql.NullString
		totalDays, status           string
		category                    sql.NullString
		conflictCheck, reqAdmin     int
		reviewerID, reviewedAt      sql.NullString
		reason, contactName         sql.NullString
		contactPhone, docRef, notes sql.NullString
		createdAt, updatedAt        string
	)

	err := rows.Scan(&id, &employeeID, &teamID, &lt, &startDate, &endDate,
		&halfDay, &halfDayPeriod, &totalDays, &reason,
		&contactName, &contactPhone, &docRef,
		&status, &weekend, &req.Period.Year, &req.Period.Half, &category,
		&conflictCheck, &reqAdmin, &notes, &reviewerID,
		&reviewedAt, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	req.ID = leave.RequestID(id)
	req.EmployeeID = leave.EmployeeID(employeeID)
	req.TeamID = leave.TeamID(teamID.String)
	req.Type = leave.Type(lt)
	if req.StartDate, err = leave.ParseDate(startDate); err != nil {
		return nil, fmt.Errorf("corrupt start date %q: %w", startDate, err)
	}
	if req.EndDate, err = leave.ParseDate(endDate); err != nil {
		return nil, fmt.Errorf("corrupt end date %q: %w", endDate, err)
	}
	req.HalfDay = halfDay != 0
	req.HalfDayPeriod = leave.HalfDayPeriod(halfDayPeriod.String)
	if req.TotalDays, err = decimal.NewFromString(totalDays); err != nil {
		return nil, fmt.Errorf("corrupt total days %q: %w", totalDays, err)
	}
	req.Reason = reason.String
	req.EmergencyContactName = contactName.String
	req.EmergencyContactPhone = contactPhone.String
	req.DocumentRef = docRef.String
	req.Status = leave.RequestStatus(status)
	req.IsWeekendLeave = weekend != 0
	req.Category = leave.Category(category.String)
	req.TeamConflictCheck = conflictCheck != 0
	req.RequiresAdmin = reqAdmin != 0
	req.AdminNotes = notes.String
	req.ReviewerID = leave.EmployeeID(reviewerID.String)
	if reviewedAt.Valid && reviewedAt.String != "" {
		t, err := time.Parse(time.RFC3339, reviewedAt.String)
		if err != nil {
			return nil, fmt.Errorf("corrupt reviewed_at %q: %w", reviewedAt.String, err)
		}
		req.ReviewedAt = &t
	}
	if req.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("corrupt created_at %q: %w", createdAt, err)
	}
	if req.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("corrupt updated_at %q: %w", updatedAt, err)
	}
	return &req, nil
}

var _ leave.RequestStore = (*Store)(nil)

// =============================================================================
// DIRECTORY
// =============================================================================

func (s *Store) PutEmployee(ctx context.Context, e leave.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO employees (id, name, email, team_id, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			email = excluded.email, team_id = excluded.team_id`,
		string(e.ID), e.Name, e.Email, string(e.TeamID),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	if e.TeamID != "" {
		_, err = s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO team_members (team_id, employee_id) VALUES (?, ?)`,
			string(e.TeamID), string(e.ID))
	}
	return err
}

func (s *Store) PutTeam(ctx context.Context, t leave.Team) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO teams (id, name, manager_id, created_at)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET name = excluded.name,
			manager_id = excluded.manager_id`,
		string(t.ID), t.Name, string(t.ManagerID),
		time.Now().UTC().Format(time.RFC3339))
	if err != nil {
		return err
	}
	for _, m := range t.Members {
		if _, err := s.db.ExecContext(ctx,
			`INSERT OR IGNORE INTO team_members (team_id, employee_id) VALUES (?, ?)`,
			string(t.ID), string(m)); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) Employee(ctx context.Context, id leave.EmployeeID) (leave.Employee, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.employeeLocked(ctx, id)
}

func (s *Store) employeeLocked(ctx context.Context, id leave.EmployeeID) (leave.Employee, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, email, team_id FROM employees WHERE id = ?`, string(id))

	var e leave.Employee
	var eid, name string
	var email, teamID sql.NullString
	if err := row.Scan(&eid, &name, &email, &teamID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.Employee{}, leave.ErrEmployeeNotFound
		}
		return leave.Employee{}, err
	}
	e.ID = leave.EmployeeID(eid)
	e.Name = name
	e.Email = email.String
	e.TeamID = leave.TeamID(teamID.String)
	return e, nil
}

func (s *Store) Team(ctx context.Context, id leave.TeamID) (leave.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.teamLocked(ctx, id)
}

func (s *Store) teamLocked(ctx context.Context, id leave.TeamID) (leave.Team, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, name, manager_id FROM teams WHERE id = ?`, string(id))

	var t leave.Team
	var tid, name string
	var managerID sql.NullString
	if err := row.Scan(&tid, &name, &managerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return leave.Team{}, leave.ErrTeamNotFound
		}
		return leave.Team{}, err
	}
	t.ID = leave.TeamID(tid)
	t.Name = name
	t.ManagerID = leave.EmployeeID(managerID.String)

	rows, err := s.db.QueryContext(ctx,
		`SELECT employee_id FROM team_members WHERE team_id = ? ORDER BY employee_id`, tid)
	if err != nil {
		return leave.Team{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var m string
		if err := rows.Scan(&m); err != nil {
			return leave.Team{}, err
		}
		t.Members = append(t.Members, leave.EmployeeID(m))
	}
	return t, rows.Err()
}

func (s *Store) TeamOf(ctx context.Context, employeeID leave.EmployeeID) (leave.Team, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.employeeLocked(ctx, employeeID)
	if err != nil {
		return leave.Team{}, err
	}
	if e.TeamID == "" {
		return leave.Team{}, nil
	}
	t, err := s.teamLocked(ctx, e.TeamID)
	if errors.Is(err, leave.ErrTeamNotFound) {
		return leave.Team{}, nil
	}
	return t, err
}

var _ leave.Directory = (*Store)(nil)

// =============================================================================
// HELPERS
// =============================================================================

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

func timePtrToString(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
