package report

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
)

const reportColumns = `id, employee_id, week_start_date, status, submitted_at, approved_at, manager_comment, created_at`

func scanReport(row pgx.Row) (WeeklyReport, error) {
	var r WeeklyReport
	var weekStart time.Time
	err := row.Scan(&r.ID, &r.EmployeeID, &weekStart, &r.Status, &r.SubmittedAt, &r.ApprovedAt, &r.ManagerComment, &r.CreatedAt)
	if err != nil {
		return WeeklyReport{}, err
	}
	r.WeekStartDate = FormatISO(weekStart)
	return r, nil
}

func (s *Store) ReportByWeek(ctx context.Context, employeeID, weekStartISO string) (WeeklyReport, error) {
	return scanReport(s.DB.QueryRow(ctx, `
    SELECT `+reportColumns+`
    FROM weekly_reports
    WHERE employee_id = $1 AND week_start_date = $2
  `, employeeID, weekStartISO))
}

func (s *Store) Report(ctx context.Context, reportID string) (WeeklyReport, error) {
	return scanReport(s.DB.QueryRow(ctx, `
    SELECT `+reportColumns+`
    FROM weekly_reports
    WHERE id = $1
  `, reportID))
}

// GetOrCreateReport reads the report for (employee, week start), inserting a
// fresh draft when none exists. The conditional insert makes concurrent
// first accesses for the same key converge on a single row.
func (s *Store) GetOrCreateReport(ctx context.Context, employeeID, weekStartISO string) (WeeklyReport, error) {
	existing, err := s.ReportByWeek(ctx, employeeID, weekStartISO)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return WeeklyReport{}, err
	}

	if _, err := s.DB.Exec(ctx, `
    INSERT INTO weekly_reports (employee_id, week_start_date, status)
    VALUES ($1, $2, 'draft')
    ON CONFLICT (employee_id, week_start_date) DO NOTHING
  `, employeeID, weekStartISO); err != nil {
		return WeeklyReport{}, err
	}
	return s.ReportByWeek(ctx, employeeID, weekStartISO)
}

// ReportWithDetails fetches a report, its lines joined to their catalog
// actions, and all entries for those lines, assembled in memory.
func (s *Store) ReportWithDetails(ctx context.Context, reportID string) (ReportWithDetails, error) {
	var details ReportWithDetails
	var weekStart time.Time
	err := s.DB.QueryRow(ctx, `
    SELECT r.id, r.employee_id, r.week_start_date, r.status, r.submitted_at, r.approved_at, r.manager_comment, r.created_at,
           p.id, p.full_name, p.role, p.manager_id, p.created_at
    FROM weekly_reports r
    JOIN profiles p ON r.employee_id = p.id
    WHERE r.id = $1
  `, reportID).Scan(
		&details.ID, &details.EmployeeID, &weekStart, &details.Status,
		&details.SubmittedAt, &details.ApprovedAt, &details.ManagerComment, &details.CreatedAt,
		&details.Employee.ID, &details.Employee.FullName, &details.Employee.Role,
		&details.Employee.ManagerID, &details.Employee.CreatedAt,
	)
	if err != nil {
		return ReportWithDetails{}, err
	}
	details.WeekStartDate = FormatISO(weekStart)

	lines, err := s.reportLines(ctx, reportID)
	if err != nil {
		return ReportWithDetails{}, err
	}
	details.Lines = lines
	return details, nil
}

func (s *Store) reportLines(ctx context.Context, reportID string) ([]LineWithAction, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT l.id, l.report_id, l.action_id, l.daily_target,
           a.id, a.name, a.default_daily_target, a.sort_order
    FROM report_lines l
    JOIN action_catalog a ON l.action_id = a.id
    WHERE l.report_id = $1
    ORDER BY a.sort_order
  `, reportID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []LineWithAction
	var lineIDs []string
	for rows.Next() {
		var line LineWithAction
		if err := rows.Scan(
			&line.Line.ID, &line.ReportID, &line.Line.ActionID, &line.DailyTarget,
			&line.Action.ID, &line.Action.Name, &line.Action.DefaultDailyTarget, &line.Action.SortOrder,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
		lineIDs = append(lineIDs, line.Line.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(lineIDs) == 0 {
		return lines, nil
	}

	entries, err := s.entriesForLines(ctx, lineIDs)
	if err != nil {
		return nil, err
	}
	for i := range lines {
		lines[i].Entries = entries[lines[i].Line.ID]
	}
	return lines, nil
}

func (s *Store) entriesForLines(ctx context.Context, lineIDs []string) (map[string][]Entry, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, line_id, entry_date, value
    FROM report_entries
    WHERE line_id = ANY($1)
    ORDER BY entry_date
  `, lineIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make(map[string][]Entry)
	for rows.Next() {
		var e Entry
		var date time.Time
		if err := rows.Scan(&e.ID, &e.LineID, &date, &e.Value); err != nil {
			return nil, err
		}
		e.EntryDate = FormatISO(date)
		entries[e.LineID] = append(entries[e.LineID], e)
	}
	return entries, rows.Err()
}

// UpsertLine sets or overwrites the line for (report, action).
func (s *Store) UpsertLine(ctx context.Context, reportID string, actionID int, dailyTarget *int) (Line, error) {
	var line Line
	err := s.DB.QueryRow(ctx, `
    INSERT INTO report_lines (report_id, action_id, daily_target)
    VALUES ($1, $2, $3)
    ON CONFLICT (report_id, action_id) DO UPDATE SET daily_target = EXCLUDED.daily_target
    RETURNING id, report_id, action_id, daily_target
  `, reportID, actionID, dailyTarget).Scan(&line.ID, &line.ReportID, &line.ActionID, &line.DailyTarget)
	return line, err
}

// UpsertEntry sets or overwrites the value for (line, date).
func (s *Store) UpsertEntry(ctx context.Context, lineID, entryDateISO string, value int) (Entry, error) {
	var entry Entry
	var date time.Time
	err := s.DB.QueryRow(ctx, `
    INSERT INTO report_entries (line_id, entry_date, value)
    VALUES ($1, $2, $3)
    ON CONFLICT (line_id, entry_date) DO UPDATE SET value = EXCLUDED.value
    RETURNING id, line_id, entry_date, value
  `, lineID, entryDateISO, value).Scan(&entry.ID, &entry.LineID, &date, &entry.Value)
	if err != nil {
		return Entry{}, err
	}
	entry.EntryDate = FormatISO(date)
	return entry, nil
}

func (s *Store) DeleteEntry(ctx context.Context, lineID, entryDateISO string) error {
	_, err := s.DB.Exec(ctx, `
    DELETE FROM report_entries
    WHERE line_id = $1 AND entry_date = $2
  `, lineID, entryDateISO)
	return err
}

// DeleteLine removes a line; its entries cascade at the storage layer.
func (s *Store) DeleteLine(ctx context.Context, lineID string) error {
	_, err := s.DB.Exec(ctx, `DELETE FROM report_lines WHERE id = $1`, lineID)
	return err
}

func (s *Store) SubmitReport(ctx context.Context, reportID string, at time.Time) error {
	return s.transition(ctx, `
    UPDATE weekly_reports
    SET status = 'submitted', submitted_at = $2
    WHERE id = $1 AND status = 'draft'
  `, reportID, at)
}

func (s *Store) ApproveReport(ctx context.Context, reportID string, at time.Time) error {
	return s.transition(ctx, `
    UPDATE weekly_reports
    SET status = 'approved', approved_at = $2
    WHERE id = $1 AND status = 'submitted'
  `, reportID, at)
}

func (s *Store) RequestChanges(ctx context.Context, reportID, comment string) error {
	return s.transition(ctx, `
    UPDATE weekly_reports
    SET status = 'needs_changes', manager_comment = $2
    WHERE id = $1 AND status = 'submitted'
  `, reportID, comment)
}

func (s *Store) transition(ctx context.Context, sql string, args ...any) error {
	tag, err := s.DB.Exec(ctx, sql, args...)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrInvalidState
	}
	return nil
}

// ManagerReports lists reports belonging to a manager's direct reports,
// newest submissions first with never-submitted reports last, ties broken
// by creation time.
func (s *Store) ManagerReports(ctx context.Context, managerID string) ([]ReportSummary, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT r.id, r.employee_id, r.week_start_date, r.status, r.submitted_at, r.approved_at, r.manager_comment, r.created_at,
           p.id, p.full_name, p.role, p.manager_id, p.created_at
    FROM weekly_reports r
    JOIN profiles p ON r.employee_id = p.id
    WHERE p.manager_id = $1
    ORDER BY r.submitted_at DESC NULLS LAST, r.created_at DESC
  `, managerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []ReportSummary
	for rows.Next() {
		var summary ReportSummary
		var weekStart time.Time
		if err := rows.Scan(
			&summary.ID, &summary.EmployeeID, &weekStart, &summary.Status,
			&summary.SubmittedAt, &summary.ApprovedAt, &summary.ManagerComment, &summary.CreatedAt,
			&summary.Employee.ID, &summary.Employee.FullName, &summary.Employee.Role,
			&summary.Employee.ManagerID, &summary.Employee.CreatedAt,
		); err != nil {
			return nil, err
		}
		summary.WeekStartDate = FormatISO(weekStart)
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}
