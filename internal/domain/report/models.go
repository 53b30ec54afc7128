package report

import "time"

const (
	StatusDraft        = "draft"
	StatusSubmitted    = "submitted"
	StatusApproved     = "approved"
	StatusNeedsChanges = "needs_changes"
)

const (
	RoleEmployee = "employee"
	RoleManager  = "manager"
)

type Profile struct {
	ID        string    `json:"id"`
	FullName  string    `json:"fullName"`
	Role      string    `json:"role"`
	ManagerID *string   `json:"managerId,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

type Action struct {
	ID                 int    `json:"id"`
	Name               string `json:"name"`
	DefaultDailyTarget int    `json:"defaultDailyTarget"`
	SortOrder          int    `json:"sortOrder"`
}

// WeeklyReport is one employee's report for one Monday-start week.
// WeekStartDate is always the Monday of the week, as YYYY-MM-DD.
type WeeklyReport struct {
	ID             string     `json:"id"`
	EmployeeID     string     `json:"employeeId"`
	WeekStartDate  string     `json:"weekStartDate"`
	Status         string     `json:"status"`
	SubmittedAt    *time.Time `json:"submittedAt,omitempty"`
	ApprovedAt     *time.Time `json:"approvedAt,omitempty"`
	ManagerComment *string    `json:"managerComment,omitempty"`
	CreatedAt      time.Time  `json:"createdAt"`
}

// Line ties one catalog action into a report. A nil DailyTarget means the
// target has been cleared; that is distinct from a target of zero.
type Line struct {
	ID          string `json:"id"`
	ReportID    string `json:"reportId"`
	ActionID    int    `json:"actionId"`
	DailyTarget *int   `json:"dailyTarget"`
}

// Entry is one line's recorded count for one calendar day. A day with no
// entry row has no value; absence is distinct from zero.
type Entry struct {
	ID        string `json:"id"`
	LineID    string `json:"lineId"`
	EntryDate string `json:"entryDate"`
	Value     int    `json:"value"`
}

type LineWithAction struct {
	Line
	Action  Action  `json:"action"`
	Entries []Entry `json:"entries"`
}

type ReportWithDetails struct {
	WeeklyReport
	Employee Profile          `json:"employee"`
	Lines    []LineWithAction `json:"lines"`
}

type ReportSummary struct {
	WeeklyReport
	Employee Profile `json:"employee"`
}
