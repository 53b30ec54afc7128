package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sort"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
)

type fakeStore struct {
	catalog  []Action
	profiles map[string]Profile
	reports  map[string]*WeeklyReport
	lines    map[string]*Line
	entries  map[string]*Entry
	nextID   int
}

func newFakeStore() *fakeStore {
	manager := "mgr_morgan"
	return &fakeStore{
		catalog: []Action{
			{ID: 1, Name: "New Hires", DefaultDailyTarget: 4, SortOrder: 1},
			{ID: 2, Name: "Interviews", DefaultDailyTarget: 9, SortOrder: 2},
		},
		profiles: map[string]Profile{
			"mgr_morgan": {ID: "mgr_morgan", FullName: "Morgan Avery", Role: RoleManager},
			"emp_peyton": {ID: "emp_peyton", FullName: "Peyton Cizek", Role: RoleEmployee, ManagerID: &manager},
		},
		reports: make(map[string]*WeeklyReport),
		lines:   make(map[string]*Line),
		entries: make(map[string]*Entry),
	}
}

func (f *fakeStore) id(prefix string) string {
	f.nextID++
	return fmt.Sprintf("%s-%d", prefix, f.nextID)
}

func (f *fakeStore) ListCatalog(context.Context) ([]Action, error) { return f.catalog, nil }

func (f *fakeStore) Action(_ context.Context, actionID int) (Action, error) {
	for _, a := range f.catalog {
		if a.ID == actionID {
			return a, nil
		}
	}
	return Action{}, pgx.ErrNoRows
}

func (f *fakeStore) Profile(_ context.Context, profileID string) (Profile, error) {
	if p, ok := f.profiles[profileID]; ok {
		return p, nil
	}
	return Profile{}, pgx.ErrNoRows
}

func (f *fakeStore) TeamProfiles(_ context.Context, managerID string) ([]Profile, error) {
	var team []Profile
	for _, p := range f.profiles {
		if p.ManagerID != nil && *p.ManagerID == managerID {
			team = append(team, p)
		}
	}
	return team, nil
}

func (f *fakeStore) ReportByWeek(_ context.Context, employeeID, weekStartISO string) (WeeklyReport, error) {
	for _, r := range f.reports {
		if r.EmployeeID == employeeID && r.WeekStartDate == weekStartISO {
			return *r, nil
		}
	}
	return WeeklyReport{}, pgx.ErrNoRows
}

func (f *fakeStore) Report(_ context.Context, reportID string) (WeeklyReport, error) {
	if r, ok := f.reports[reportID]; ok {
		return *r, nil
	}
	return WeeklyReport{}, pgx.ErrNoRows
}

func (f *fakeStore) GetOrCreateReport(ctx context.Context, employeeID, weekStartISO string) (WeeklyReport, error) {
	if existing, err := f.ReportByWeek(ctx, employeeID, weekStartISO); err == nil {
		return existing, nil
	}
	rpt := &WeeklyReport{
		ID:            f.id("rpt"),
		EmployeeID:    employeeID,
		WeekStartDate: weekStartISO,
		Status:        StatusDraft,
		CreatedAt:     time.Now(),
	}
	f.reports[rpt.ID] = rpt
	return *rpt, nil
}

func (f *fakeStore) ReportWithDetails(_ context.Context, reportID string) (ReportWithDetails, error) {
	rpt, ok := f.reports[reportID]
	if !ok {
		return ReportWithDetails{}, pgx.ErrNoRows
	}
	details := ReportWithDetails{WeeklyReport: *rpt, Employee: f.profiles[rpt.EmployeeID]}
	var lines []*Line
	for _, l := range f.lines {
		if l.ReportID == reportID {
			lines = append(lines, l)
		}
	}
	sort.Slice(lines, func(i, j int) bool { return lines[i].ActionID < lines[j].ActionID })
	for _, l := range lines {
		action, _ := f.Action(nil, l.ActionID)
		with := LineWithAction{Line: *l, Action: action}
		for _, e := range f.entries {
			if e.LineID == l.ID {
				with.Entries = append(with.Entries, *e)
			}
		}
		details.Lines = append(details.Lines, with)
	}
	return details, nil
}

func (f *fakeStore) UpsertLine(_ context.Context, reportID string, actionID int, dailyTarget *int) (Line, error) {
	for _, l := range f.lines {
		if l.ReportID == reportID && l.ActionID == actionID {
			l.DailyTarget = dailyTarget
			return *l, nil
		}
	}
	line := &Line{ID: f.id("line"), ReportID: reportID, ActionID: actionID, DailyTarget: dailyTarget}
	f.lines[line.ID] = line
	return *line, nil
}

func (f *fakeStore) UpsertEntry(_ context.Context, lineID, entryDateISO string, value int) (Entry, error) {
	key := lineID + "|" + entryDateISO
	if e, ok := f.entries[key]; ok {
		e.Value = value
		return *e, nil
	}
	entry := &Entry{ID: f.id("entry"), LineID: lineID, EntryDate: entryDateISO, Value: value}
	f.entries[key] = entry
	return *entry, nil
}

func (f *fakeStore) DeleteEntry(_ context.Context, lineID, entryDateISO string) error {
	delete(f.entries, lineID+"|"+entryDateISO)
	return nil
}

func (f *fakeStore) DeleteLine(_ context.Context, lineID string) error {
	delete(f.lines, lineID)
	for key, e := range f.entries {
		if e.LineID == lineID {
			delete(f.entries, key)
		}
	}
	return nil
}

func (f *fakeStore) SubmitReport(_ context.Context, reportID string, at time.Time) error {
	return f.transition(reportID, StatusDraft, func(r *WeeklyReport) {
		r.Status = StatusSubmitted
		r.SubmittedAt = &at
	})
}

func (f *fakeStore) ApproveReport(_ context.Context, reportID string, at time.Time) error {
	return f.transition(reportID, StatusSubmitted, func(r *WeeklyReport) {
		r.Status = StatusApproved
		r.ApprovedAt = &at
	})
}

func (f *fakeStore) RequestChanges(_ context.Context, reportID, comment string) error {
	return f.transition(reportID, StatusSubmitted, func(r *WeeklyReport) {
		r.Status = StatusNeedsChanges
		r.ManagerComment = &comment
	})
}

func (f *fakeStore) transition(reportID, requiredStatus string, apply func(*WeeklyReport)) error {
	rpt, ok := f.reports[reportID]
	if !ok || rpt.Status != requiredStatus {
		return ErrInvalidState
	}
	apply(rpt)
	return nil
}

func (f *fakeStore) ManagerReports(_ context.Context, managerID string) ([]ReportSummary, error) {
	var summaries []ReportSummary
	for _, r := range f.reports {
		employee := f.profiles[r.EmployeeID]
		if employee.ManagerID != nil && *employee.ManagerID == managerID {
			summaries = append(summaries, ReportSummary{WeeklyReport: *r, Employee: employee})
		}
	}
	return summaries, nil
}

func newTestService(store StoreAPI, now time.Time) *Service {
	svc := NewService(store)
	svc.Now = func() time.Time { return now }
	return svc
}

var (
	testWednesday = time.Date(2025, 1, 8, 10, 0, 0, 0, time.Local)
	gateOpen      = time.Date(2025, 1, 12, 18, 0, 0, 0, time.Local)
	gateClosed    = time.Date(2025, 1, 10, 9, 0, 0, 0, time.Local)
)

func TestWeekViewSynthesizesWithoutPersisting(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateClosed)

	view, err := svc.WeekView(context.Background(), "emp_peyton", testWednesday)
	if err != nil {
		t.Fatalf("week view: %v", err)
	}
	if view.Status != StatusDraft || view.WeekStartDate != "2025-01-06" {
		t.Fatalf("unexpected synthesized draft: %+v", view.WeeklyReport)
	}
	if view.Employee.FullName != "Peyton Cizek" {
		t.Fatalf("synthesized draft missing employee profile: %+v", view.Employee)
	}
	if len(store.reports) != 0 {
		t.Fatal("reading a week view must not create a report row")
	}
}

func TestAddLineMaterializesReportAndDefaultsTarget(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateClosed)

	line, err := svc.AddLine(context.Background(), "emp_peyton", testWednesday, 1, nil)
	if err != nil {
		t.Fatalf("add line: %v", err)
	}
	if line.DailyTarget == nil || *line.DailyTarget != 4 {
		t.Fatalf("daily target = %v, want catalog default 4", line.DailyTarget)
	}
	if len(store.reports) != 1 {
		t.Fatal("first mutation must create the report row")
	}
	for _, r := range store.reports {
		if r.WeekStartDate != "2025-01-06" {
			t.Fatalf("report created for week %s, want 2025-01-06", r.WeekStartDate)
		}
	}
}

func TestAddLineRejectsDuplicateAndUnknown(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateClosed)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 1, nil); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 1, nil); !errors.Is(err, ErrDuplicateLine) {
		t.Fatalf("duplicate add: %v", err)
	}
	if len(store.lines) != 1 {
		t.Fatalf("duplicate add persisted a line, have %d", len(store.lines))
	}
	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 99, nil); !errors.Is(err, ErrUnknownAction) {
		t.Fatalf("unknown action: %v", err)
	}
}

func TestSetEntryPersistsAndClears(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateClosed)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 1, nil); err != nil {
		t.Fatalf("add line: %v", err)
	}
	entry, err := svc.SetEntry(ctx, "emp_peyton", testWednesday, 1, "2025-01-07", intPtr(2))
	if err != nil {
		t.Fatalf("set entry: %v", err)
	}
	if entry == nil || entry.Value != 2 {
		t.Fatalf("persisted entry = %+v", entry)
	}
	if _, err := svc.SetEntry(ctx, "emp_peyton", testWednesday, 1, "2025-01-20", intPtr(1)); !errors.Is(err, ErrDateOutsideWeek) {
		t.Fatalf("outside-week entry: %v", err)
	}
	if cleared, err := svc.SetEntry(ctx, "emp_peyton", testWednesday, 1, "2025-01-07", nil); err != nil || cleared != nil {
		t.Fatalf("clear entry: %v %v", cleared, err)
	}
	if len(store.entries) != 0 {
		t.Fatal("cleared entry row still persisted")
	}
}

func TestSubmitRespectsGateAndBecomesReadOnly(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateClosed)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 1, nil); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := svc.SetEntry(ctx, "emp_peyton", testWednesday, 1, "2025-01-07", intPtr(2)); err != nil {
		t.Fatalf("set entry: %v", err)
	}
	if _, err := svc.SetEntry(ctx, "emp_peyton", testWednesday, 1, "2025-01-09", intPtr(3)); err != nil {
		t.Fatalf("set entry: %v", err)
	}

	if _, err := svc.Submit(ctx, "emp_peyton", testWednesday); !errors.Is(err, ErrSubmissionBlocked) {
		t.Fatalf("submit before the gate: %v", err)
	}

	svc.Now = func() time.Time { return gateOpen }
	submitted, err := svc.Submit(ctx, "emp_peyton", testWednesday)
	if err != nil {
		t.Fatalf("submit after the gate: %v", err)
	}
	if submitted.Status != StatusSubmitted || submitted.SubmittedAt == nil {
		t.Fatalf("submitted report = %+v", submitted)
	}

	if _, err := svc.SetEntry(ctx, "emp_peyton", testWednesday, 1, "2025-01-10", intPtr(1)); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("entry edit after submit: %v", err)
	}
	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 2, nil); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("line add after submit: %v", err)
	}
	if err := svc.RemoveLine(ctx, "emp_peyton", testWednesday, 1); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("line remove after submit: %v", err)
	}
}

func TestSubmitCheckForEmptyWeek(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateOpen)

	check, err := svc.SubmitCheckFor(context.Background(), "emp_peyton", testWednesday)
	if err != nil {
		t.Fatalf("submit check: %v", err)
	}
	if check.Allowed || check.Reason() != "add at least one action" {
		t.Fatalf("empty week check = %+v", check)
	}
}

func TestManagerWorkflow(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateClosed)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 1, nil); err != nil {
		t.Fatalf("add line: %v", err)
	}
	svc.Now = func() time.Time { return gateOpen }
	submitted, err := svc.Submit(ctx, "emp_peyton", testWednesday)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}

	if _, err := svc.TeamReportDetails(ctx, "mgr_other", submitted.ID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("foreign manager access: %v", err)
	}
	if err := svc.RequestChanges(ctx, "mgr_morgan", submitted.ID, "  "); !errors.Is(err, ErrCommentRequired) {
		t.Fatalf("blank comment: %v", err)
	}

	reports, err := svc.TeamReports(ctx, "mgr_morgan")
	if err != nil || len(reports) != 1 {
		t.Fatalf("team reports = %v, %v", reports, err)
	}

	if err := svc.Approve(ctx, "mgr_morgan", submitted.ID); err != nil {
		t.Fatalf("approve: %v", err)
	}
	approved, err := svc.Store.Report(ctx, submitted.ID)
	if err != nil || approved.Status != StatusApproved || approved.ApprovedAt == nil {
		t.Fatalf("approved report = %+v, %v", approved, err)
	}
	if err := svc.Approve(ctx, "mgr_morgan", submitted.ID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("double approve: %v", err)
	}
}

func TestRequestChangesStoresComment(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateOpen)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 1, nil); err != nil {
		t.Fatalf("add line: %v", err)
	}
	submitted, err := svc.Submit(ctx, "emp_peyton", testWednesday)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if err := svc.RequestChanges(ctx, "mgr_morgan", submitted.ID, "please split interviews by site"); err != nil {
		t.Fatalf("request changes: %v", err)
	}
	updated, _ := store.Report(ctx, submitted.ID)
	if updated.Status != StatusNeedsChanges || updated.ManagerComment == nil {
		t.Fatalf("updated report = %+v", updated)
	}
}

func TestExportPDF(t *testing.T) {
	store := newFakeStore()
	svc := newTestService(store, gateOpen)
	ctx := context.Background()

	if _, err := svc.AddLine(ctx, "emp_peyton", testWednesday, 1, nil); err != nil {
		t.Fatalf("add line: %v", err)
	}
	if _, err := svc.SetEntry(ctx, "emp_peyton", testWednesday, 1, "2025-01-07", intPtr(2)); err != nil {
		t.Fatalf("set entry: %v", err)
	}

	var reportID string
	for id := range store.reports {
		reportID = id
	}
	if _, err := svc.ExportPDF(ctx, "mgr_morgan", reportID); !errors.Is(err, ErrInvalidState) {
		t.Fatalf("draft export must be rejected: %v", err)
	}

	if _, err := svc.Submit(ctx, "emp_peyton", testWednesday); err != nil {
		t.Fatalf("submit: %v", err)
	}
	pdf, err := svc.ExportPDF(ctx, "mgr_morgan", reportID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if !bytes.HasPrefix(pdf, []byte("%PDF")) {
		t.Fatal("export is not a PDF document")
	}
}
