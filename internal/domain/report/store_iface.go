package report

import (
	"context"
	"time"
)

type StoreAPI interface {
	ListCatalog(ctx context.Context) ([]Action, error)
	Action(ctx context.Context, actionID int) (Action, error)
	Profile(ctx context.Context, profileID string) (Profile, error)
	TeamProfiles(ctx context.Context, managerID string) ([]Profile, error)
	ReportByWeek(ctx context.Context, employeeID, weekStartISO string) (WeeklyReport, error)
	Report(ctx context.Context, reportID string) (WeeklyReport, error)
	GetOrCreateReport(ctx context.Context, employeeID, weekStartISO string) (WeeklyReport, error)
	ReportWithDetails(ctx context.Context, reportID string) (ReportWithDetails, error)
	UpsertLine(ctx context.Context, reportID string, actionID int, dailyTarget *int) (Line, error)
	UpsertEntry(ctx context.Context, lineID, entryDateISO string, value int) (Entry, error)
	DeleteEntry(ctx context.Context, lineID, entryDateISO string) error
	DeleteLine(ctx context.Context, lineID string) error
	SubmitReport(ctx context.Context, reportID string, at time.Time) error
	ApproveReport(ctx context.Context, reportID string, at time.Time) error
	RequestChanges(ctx context.Context, reportID, comment string) error
	ManagerReports(ctx context.Context, managerID string) ([]ReportSummary, error)
}
