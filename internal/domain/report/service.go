package report

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
)

// Service enforces the report lifecycle on top of the store: draft-only
// mutations, duplicate-line rejection, the submission time gate, and
// manager scoping. Writes are confirmed by the store before results are
// returned, so callers never see unconfirmed state.
type Service struct {
	Store  StoreAPI
	drafts *Workspace
	Now    func() time.Time
}

func NewService(store StoreAPI) *Service {
	return &Service{Store: store, drafts: NewWorkspace(), Now: time.Now}
}

func (s *Service) Catalog(ctx context.Context) ([]Action, error) {
	return s.Store.ListCatalog(ctx)
}

// WeekView returns the persisted report for the employee's week containing
// date, or a synthesized empty draft when none exists yet. Reading never
// creates a row; the first mutation does.
func (s *Service) WeekView(ctx context.Context, employeeID string, date time.Time) (ReportWithDetails, error) {
	key := KeyFor(employeeID, date)
	rpt, err := s.Store.ReportByWeek(ctx, employeeID, key.WeekStartISO)
	if err != nil {
		if !errors.Is(err, pgx.ErrNoRows) {
			return ReportWithDetails{}, err
		}
		draft := s.drafts.Get(key)
		if profile, perr := s.Store.Profile(ctx, employeeID); perr == nil {
			draft.Employee = profile
		}
		return *draft, nil
	}
	return s.Store.ReportWithDetails(ctx, rpt.ID)
}

// draftDetails materializes the report row for the week (get-or-create) and
// loads it, rejecting any week whose report is no longer a draft.
func (s *Service) draftDetails(ctx context.Context, employeeID string, date time.Time) (ReportWithDetails, error) {
	key := KeyFor(employeeID, date)
	rpt, err := s.Store.GetOrCreateReport(ctx, employeeID, key.WeekStartISO)
	if err != nil {
		return ReportWithDetails{}, err
	}
	if rpt.Status != StatusDraft {
		return ReportWithDetails{}, ErrInvalidState
	}
	return s.Store.ReportWithDetails(ctx, rpt.ID)
}

func (s *Service) AddLine(ctx context.Context, employeeID string, date time.Time, actionID int, dailyTarget *int) (Line, error) {
	action, err := s.Store.Action(ctx, actionID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Line{}, ErrUnknownAction
		}
		return Line{}, err
	}

	details, err := s.draftDetails(ctx, employeeID, date)
	if err != nil {
		return Line{}, err
	}
	if err := details.AddLine(action); err != nil {
		return Line{}, err
	}

	if dailyTarget == nil {
		target := action.DefaultDailyTarget
		dailyTarget = &target
	}
	return s.Store.UpsertLine(ctx, details.ID, actionID, dailyTarget)
}

func (s *Service) SetTarget(ctx context.Context, employeeID string, date time.Time, actionID int, value *int) (Line, error) {
	details, err := s.draftDetails(ctx, employeeID, date)
	if err != nil {
		return Line{}, err
	}
	if err := details.SetTarget(actionID, value); err != nil {
		return Line{}, err
	}
	return s.Store.UpsertLine(ctx, details.ID, actionID, value)
}

// SetEntry records or clears the value for one day of a line. A nil value
// deletes the entry row, keeping absence distinct from zero.
func (s *Service) SetEntry(ctx context.Context, employeeID string, date time.Time, actionID int, entryDateISO string, value *int) (*Entry, error) {
	details, err := s.draftDetails(ctx, employeeID, date)
	if err != nil {
		return nil, err
	}
	if err := details.SetEntry(actionID, entryDateISO, value); err != nil {
		return nil, err
	}

	line := details.line(actionID)
	if value == nil {
		return nil, s.Store.DeleteEntry(ctx, line.Line.ID, entryDateISO)
	}
	entry, err := s.Store.UpsertEntry(ctx, line.Line.ID, entryDateISO, *value)
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

func (s *Service) RemoveLine(ctx context.Context, employeeID string, date time.Time, actionID int) error {
	details, err := s.draftDetails(ctx, employeeID, date)
	if err != nil {
		return err
	}
	line := details.line(actionID)
	if line == nil {
		return ErrLineNotFound
	}
	return s.Store.DeleteLine(ctx, line.Line.ID)
}

func (s *Service) SubmitCheckFor(ctx context.Context, employeeID string, date time.Time) (SubmitCheck, error) {
	details, err := s.WeekView(ctx, employeeID, date)
	if err != nil {
		return SubmitCheck{}, err
	}
	return CheckSubmit(&details, s.Now()), nil
}

// Submit transitions the employee's report for the week to submitted when
// every precondition holds. The store-side status guard makes the
// transition one way even under concurrent submits.
func (s *Service) Submit(ctx context.Context, employeeID string, date time.Time) (WeeklyReport, error) {
	details, err := s.WeekView(ctx, employeeID, date)
	if err != nil {
		return WeeklyReport{}, err
	}
	now := s.Now()
	if err := details.Submit(now); err != nil {
		return WeeklyReport{}, err
	}
	if err := s.Store.SubmitReport(ctx, details.ID, now); err != nil {
		return WeeklyReport{}, err
	}
	return s.Store.Report(ctx, details.ID)
}

func (s *Service) TeamReports(ctx context.Context, managerID string) ([]ReportSummary, error) {
	return s.Store.ManagerReports(ctx, managerID)
}

// TeamReportDetails loads a report for a manager, refusing reports that do
// not belong to one of the manager's direct reports.
func (s *Service) TeamReportDetails(ctx context.Context, managerID, reportID string) (ReportWithDetails, error) {
	details, err := s.Store.ReportWithDetails(ctx, reportID)
	if err != nil {
		return ReportWithDetails{}, err
	}
	if details.Employee.ManagerID == nil || *details.Employee.ManagerID != managerID {
		return ReportWithDetails{}, ErrForbidden
	}
	return details, nil
}

func (s *Service) Approve(ctx context.Context, managerID, reportID string) error {
	if _, err := s.TeamReportDetails(ctx, managerID, reportID); err != nil {
		return err
	}
	return s.Store.ApproveReport(ctx, reportID, s.Now())
}

func (s *Service) RequestChanges(ctx context.Context, managerID, reportID, comment string) error {
	if strings.TrimSpace(comment) == "" {
		return ErrCommentRequired
	}
	if _, err := s.TeamReportDetails(ctx, managerID, reportID); err != nil {
		return err
	}
	return s.Store.RequestChanges(ctx, reportID, comment)
}

// ExportPDF renders a manager-facing PDF of a report that has left draft.
func (s *Service) ExportPDF(ctx context.Context, managerID, reportID string) ([]byte, error) {
	details, err := s.TeamReportDetails(ctx, managerID, reportID)
	if err != nil {
		return nil, err
	}
	if details.Status == StatusDraft {
		return nil, ErrInvalidState
	}
	return RenderPDF(details)
}
