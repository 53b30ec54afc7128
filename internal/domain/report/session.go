package report

import (
	"sync"
	"time"
)

// Key identifies the report being edited: one employee, one Monday-start week.
type Key struct {
	EmployeeID   string
	WeekStartISO string
}

func KeyFor(employeeID string, date time.Time) Key {
	return Key{EmployeeID: employeeID, WeekStartISO: FormatISO(WeekStart(date))}
}

// Workspace holds working copies of reports keyed by (employee, week start).
// Get synthesizes an empty draft for unknown keys without retaining it; a
// synthesized draft enters the map only once a mutation succeeds.
type Workspace struct {
	mu      sync.Mutex
	reports map[Key]*ReportWithDetails
}

func NewWorkspace() *Workspace {
	return &Workspace{reports: make(map[Key]*ReportWithDetails)}
}

func (w *Workspace) Get(key Key) *ReportWithDetails {
	w.mu.Lock()
	defer w.mu.Unlock()
	if existing, ok := w.reports[key]; ok {
		return existing
	}
	return NewDraft(key)
}

func (w *Workspace) Put(key Key, rpt *ReportWithDetails) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.reports[key] = rpt
}

// Mutate applies fn to the working copy for key, retaining a synthesized
// draft only when fn succeeds.
func (w *Workspace) Mutate(key Key, fn func(*ReportWithDetails) error) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	rpt, ok := w.reports[key]
	if !ok {
		rpt = NewDraft(key)
	}
	if err := fn(rpt); err != nil {
		return err
	}
	w.reports[key] = rpt
	return nil
}

func (w *Workspace) Len() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.reports)
}

// NewDraft synthesizes an empty in-memory draft for the key. Nothing is
// persisted until the first mutating action.
func NewDraft(key Key) *ReportWithDetails {
	return &ReportWithDetails{
		WeeklyReport: WeeklyReport{
			EmployeeID:    key.EmployeeID,
			WeekStartDate: key.WeekStartISO,
			Status:        StatusDraft,
		},
		Employee: Profile{ID: key.EmployeeID},
	}
}

// AddLine includes an action in a draft report with its default daily
// target. Adding an action twice leaves the report unchanged.
func (r *ReportWithDetails) AddLine(action Action) error {
	if r.Status != StatusDraft {
		return ErrInvalidState
	}
	for _, line := range r.Lines {
		if line.ActionID == action.ID {
			return duplicateLineError(action.Name)
		}
	}
	target := action.DefaultDailyTarget
	r.Lines = append(r.Lines, LineWithAction{
		Line:   Line{ReportID: r.ID, ActionID: action.ID, DailyTarget: &target},
		Action: action,
	})
	return nil
}

func (r *ReportWithDetails) RemoveLine(actionID int) error {
	if r.Status != StatusDraft {
		return ErrInvalidState
	}
	for i, line := range r.Lines {
		if line.ActionID == actionID {
			r.Lines = append(r.Lines[:i], r.Lines[i+1:]...)
			return nil
		}
	}
	return ErrLineNotFound
}

// SetTarget overwrites a line's daily target. A nil value clears the target;
// cleared is distinct from zero.
func (r *ReportWithDetails) SetTarget(actionID int, value *int) error {
	if r.Status != StatusDraft {
		return ErrInvalidState
	}
	line := r.line(actionID)
	if line == nil {
		return ErrLineNotFound
	}
	line.DailyTarget = value
	return nil
}

// SetEntry records value for one day of a line. A nil value clears the
// day's entry. The date must fall inside the report's week.
func (r *ReportWithDetails) SetEntry(actionID int, dateISO string, value *int) error {
	if r.Status != StatusDraft {
		return ErrInvalidState
	}
	date, err := ParseISO(dateISO)
	if err != nil || FormatISO(WeekStart(date)) != r.WeekStartDate {
		return ErrDateOutsideWeek
	}
	line := r.line(actionID)
	if line == nil {
		return ErrLineNotFound
	}
	for i, entry := range line.Entries {
		if entry.EntryDate == dateISO {
			if value == nil {
				line.Entries = append(line.Entries[:i], line.Entries[i+1:]...)
			} else {
				line.Entries[i].Value = *value
			}
			return nil
		}
	}
	if value != nil {
		line.Entries = append(line.Entries, Entry{LineID: line.ID, EntryDate: dateISO, Value: *value})
	}
	return nil
}

func (r *ReportWithDetails) line(actionID int) *LineWithAction {
	for i := range r.Lines {
		if r.Lines[i].ActionID == actionID {
			return &r.Lines[i]
		}
	}
	return nil
}

// RowTotal sums a line's present entry values; days without an entry count
// as zero.
func RowTotal(line LineWithAction) int {
	total := 0
	for _, entry := range line.Entries {
		total += entry.Value
	}
	return total
}

func WeeklyTotal(rpt *ReportWithDetails) int {
	total := 0
	for _, line := range rpt.Lines {
		total += RowTotal(line)
	}
	return total
}

// AvailableActions returns the catalog actions not yet on the report, in
// catalog order.
func AvailableActions(catalog []Action, rpt *ReportWithDetails) []Action {
	available := make([]Action, 0, len(catalog))
	for _, action := range catalog {
		if rpt.line(action.ID) == nil {
			available = append(available, action)
		}
	}
	return available
}

type SubmitCheck struct {
	Allowed bool     `json:"allowed"`
	Reasons []string `json:"reasons,omitempty"`
}

// Reason returns the first unmet condition, or "".
func (c SubmitCheck) Reason() string {
	if len(c.Reasons) == 0 {
		return ""
	}
	return c.Reasons[0]
}

// CheckSubmit evaluates the submission preconditions: the report is a draft,
// the time gate is open, and at least one line exists. The gate reason is
// reported whenever the gate is closed, independent of line count; the
// missing-lines reason is added whenever no lines exist.
func CheckSubmit(rpt *ReportWithDetails, now time.Time) SubmitCheck {
	var reasons []string
	if rpt.Status != StatusDraft {
		reasons = append(reasons, "report has already been submitted")
	}
	weekStart, err := ParseISO(rpt.WeekStartDate)
	if err != nil {
		reasons = append(reasons, "report week is invalid")
	} else if allowed, reason := CanSubmit(weekStart, now); !allowed {
		reasons = append(reasons, reason)
	}
	if len(rpt.Lines) == 0 {
		reasons = append(reasons, "add at least one action")
	}
	return SubmitCheck{Allowed: len(reasons) == 0, Reasons: reasons}
}

// Submit transitions a draft to submitted when every precondition holds.
// The transition is one way: further edits are rejected.
func (r *ReportWithDetails) Submit(now time.Time) error {
	check := CheckSubmit(r, now)
	if !check.Allowed {
		return &SubmitBlockedError{Reasons: check.Reasons}
	}
	at := now
	r.Status = StatusSubmitted
	r.SubmittedAt = &at
	return nil
}
