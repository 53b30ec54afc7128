package reporthandler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5"

	"worklog/internal/domain/report"
	"worklog/internal/transport/http/api"
	"worklog/internal/transport/http/middleware"
	"worklog/internal/transport/http/shared"
)

type Handler struct {
	Service *report.Service
}

func NewHandler(service *report.Service) *Handler {
	return &Handler{Service: service}
}

// RegisterEmployeeRoutes mounts the routes an employee uses to build and
// submit their own weekly report. The acting employee is always taken from
// the authenticated token, never from the payload.
func (h *Handler) RegisterEmployeeRoutes(r chi.Router) {
	r.Get("/catalog", h.HandleCatalog)
	r.Get("/reports/week", h.HandleWeekView)
	r.Post("/reports/week/lines", h.HandleAddLine)
	r.Put("/reports/week/lines/{actionID}/target", h.HandleSetTarget)
	r.Put("/reports/week/lines/{actionID}/entries/{date}", h.HandleSetEntry)
	r.Delete("/reports/week/lines/{actionID}", h.HandleRemoveLine)
	r.Get("/reports/week/submit-check", h.HandleSubmitCheck)
	r.Post("/reports/week/submit", h.HandleSubmit)
}

// RegisterManagerRoutes mounts the review routes. Every operation re-checks
// that the report belongs to the acting manager's team.
func (h *Handler) RegisterManagerRoutes(r chi.Router) {
	r.Get("/reports", h.HandleTeamReports)
	r.Get("/reports/{reportID}", h.HandleTeamReport)
	r.Post("/reports/{reportID}/approve", h.HandleApprove)
	r.Post("/reports/{reportID}/request-changes", h.HandleRequestChanges)
	r.Get("/reports/{reportID}/export.pdf", h.HandleExportPDF)
}

func (h *Handler) HandleCatalog(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())

	actions, err := h.Service.Catalog(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, actions, reqID)
}

// weekViewResponse is the full state a client needs to render one week:
// the report itself plus the derived totals, the day columns, the actions
// still available to add, and the current submission verdict.
type weekViewResponse struct {
	Report           report.ReportWithDetails `json:"report"`
	WeekDates        []string                 `json:"weekDates"`
	WeekRange        string                   `json:"weekRange"`
	RowTotals        map[int]int              `json:"rowTotals"`
	WeeklyTotal      int                      `json:"weeklyTotal"`
	AvailableActions []report.Action          `json:"availableActions"`
	SubmitCheck      report.SubmitCheck       `json:"submitCheck"`
}

func (h *Handler) buildWeekView(catalog []report.Action, details report.ReportWithDetails, now time.Time) weekViewResponse {
	weekStart, _ := report.ParseISO(details.WeekStartDate)
	dates := report.WeekDates(weekStart)
	isoDates := make([]string, 0, len(dates))
	for _, d := range dates {
		isoDates = append(isoDates, report.FormatISO(d))
	}

	rowTotals := make(map[int]int, len(details.Lines))
	for _, line := range details.Lines {
		rowTotals[line.ActionID] = report.RowTotal(line)
	}

	return weekViewResponse{
		Report:           details,
		WeekDates:        isoDates,
		WeekRange:        report.WeekRange(weekStart),
		RowTotals:        rowTotals,
		WeeklyTotal:      report.WeeklyTotal(&details),
		AvailableActions: report.AvailableActions(catalog, &details),
		SubmitCheck:      report.CheckSubmit(&details, now),
	}
}

func (h *Handler) weekViewFor(w http.ResponseWriter, r *http.Request, employeeID string, date time.Time) {
	reqID := middleware.GetRequestID(r.Context())

	details, err := h.Service.WeekView(r.Context(), employeeID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	catalog, err := h.Service.Catalog(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, h.buildWeekView(catalog, details, h.Service.Now()), reqID)
}

func (h *Handler) HandleWeekView(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	date, ok := v.Date("date", r.URL.Query().Get("date"))
	if !ok {
		v.Reject(w, reqID)
		return
	}
	h.weekViewFor(w, r, user.ProfileID, date)
}

type addLineRequest struct {
	Date        string `json:"date"`
	ActionID    int    `json:"actionId"`
	DailyTarget string `json:"dailyTarget"`
}

func (h *Handler) HandleAddLine(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload addLineRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	date, _ := v.Date("date", payload.Date)
	if payload.ActionID <= 0 {
		v.Add("actionId", "must be a catalog action id")
	}
	if v.Reject(w, reqID) {
		return
	}

	// A target that does not sanitize to a non-negative whole number is
	// simply treated as absent; the catalog default applies instead.
	var target *int
	if n, valid := report.SanitizeNumber(payload.DailyTarget); valid {
		target = &n
	}

	line, err := h.Service.AddLine(r.Context(), user.ProfileID, date, payload.ActionID, target)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Created(w, line, reqID)
}

type setValueRequest struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

func (h *Handler) HandleSetTarget(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	actionID, err := strconv.Atoi(chi.URLParam(r, "actionID"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_action_id", "action id must be numeric", reqID)
		return
	}

	var payload setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	date, ok := v.Date("date", payload.Date)
	if !ok {
		v.Reject(w, reqID)
		return
	}

	var target *int
	if n, valid := report.SanitizeNumber(payload.Value); valid {
		target = &n
	}

	line, err := h.Service.SetTarget(r.Context(), user.ProfileID, date, actionID, target)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, line, reqID)
}

func (h *Handler) HandleSetEntry(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	actionID, err := strconv.Atoi(chi.URLParam(r, "actionID"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_action_id", "action id must be numeric", reqID)
		return
	}

	v := shared.NewValidator()
	entryDate, ok := v.Date("date", chi.URLParam(r, "date"))
	if !ok {
		v.Reject(w, reqID)
		return
	}

	var payload setValueRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	// An empty or non-numeric value clears the cell: a blank day is
	// recorded as absent, not as zero.
	var value *int
	if n, valid := report.SanitizeNumber(payload.Value); valid {
		value = &n
	}

	entry, err := h.Service.SetEntry(r.Context(), user.ProfileID, entryDate, actionID, report.FormatISO(entryDate), value)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	if entry == nil {
		api.Success(w, map[string]bool{"cleared": true}, reqID)
		return
	}
	api.Success(w, entry, reqID)
}

func (h *Handler) HandleRemoveLine(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	actionID, err := strconv.Atoi(chi.URLParam(r, "actionID"))
	if err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_action_id", "action id must be numeric", reqID)
		return
	}

	v := shared.NewValidator()
	date, ok := v.Date("date", r.URL.Query().Get("date"))
	if !ok {
		v.Reject(w, reqID)
		return
	}

	if err := h.Service.RemoveLine(r.Context(), user.ProfileID, date, actionID); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, map[string]bool{"removed": true}, reqID)
}

func (h *Handler) HandleSubmitCheck(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	v := shared.NewValidator()
	date, ok := v.Date("date", r.URL.Query().Get("date"))
	if !ok {
		v.Reject(w, reqID)
		return
	}

	check, err := h.Service.SubmitCheckFor(r.Context(), user.ProfileID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, check, reqID)
}

type submitRequest struct {
	Date string `json:"date"`
}

func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload submitRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	v := shared.NewValidator()
	date, ok := v.Date("date", payload.Date)
	if !ok {
		v.Reject(w, reqID)
		return
	}

	submitted, err := h.Service.Submit(r.Context(), user.ProfileID, date)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, submitted, reqID)
}

func (h *Handler) HandleTeamReports(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	summaries, err := h.Service.TeamReports(r.Context(), user.ProfileID)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, summaries, reqID)
}

func (h *Handler) HandleTeamReport(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	details, err := h.Service.TeamReportDetails(r.Context(), user.ProfileID, chi.URLParam(r, "reportID"))
	if err != nil {
		h.fail(w, r, err)
		return
	}
	catalog, err := h.Service.Catalog(r.Context())
	if err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, h.buildWeekView(catalog, details, h.Service.Now()), reqID)
}

func (h *Handler) HandleApprove(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	if err := h.Service.Approve(r.Context(), user.ProfileID, chi.URLParam(r, "reportID")); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": report.StatusApproved}, reqID)
}

type requestChangesRequest struct {
	Comment string `json:"comment"`
}

func (h *Handler) HandleRequestChanges(w http.ResponseWriter, r *http.Request) {
	reqID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload requestChangesRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", reqID)
		return
	}

	if err := h.Service.RequestChanges(r.Context(), user.ProfileID, chi.URLParam(r, "reportID"), payload.Comment); err != nil {
		h.fail(w, r, err)
		return
	}
	api.Success(w, map[string]string{"status": report.StatusNeedsChanges}, reqID)
}

func (h *Handler) HandleExportPDF(w http.ResponseWriter, r *http.Request) {
	user, _ := middleware.GetUser(r.Context())

	reportID := chi.URLParam(r, "reportID")
	doc, err := h.Service.ExportPDF(r.Context(), user.ProfileID, reportID)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "weekly-report-"+reportID+".pdf"))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(doc)
}

// fail translates domain errors into envelope responses. Anything without a
// known mapping is logged and reported as a 500 without leaking detail.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	reqID := middleware.GetRequestID(r.Context())

	switch {
	case errors.Is(err, report.ErrDuplicateLine):
		api.Fail(w, http.StatusConflict, "duplicate_action", err.Error(), reqID)
	case errors.Is(err, report.ErrSubmissionBlocked):
		api.Fail(w, http.StatusConflict, "submission_blocked", err.Error(), reqID)
	case errors.Is(err, report.ErrInvalidState):
		api.Fail(w, http.StatusConflict, "invalid_state", "report state does not allow this action", reqID)
	case errors.Is(err, report.ErrForbidden):
		api.Fail(w, http.StatusForbidden, "forbidden", "report belongs to another team", reqID)
	case errors.Is(err, report.ErrUnknownAction):
		api.Fail(w, http.StatusNotFound, "unknown_action", "action is not in the catalog", reqID)
	case errors.Is(err, report.ErrLineNotFound):
		api.Fail(w, http.StatusNotFound, "line_not_found", "action is not on the report", reqID)
	case errors.Is(err, report.ErrDateOutsideWeek):
		api.Fail(w, http.StatusBadRequest, "date_outside_week", "entry date is outside the report week", reqID)
	case errors.Is(err, report.ErrCommentRequired):
		api.Fail(w, http.StatusBadRequest, "comment_required", "a comment is required when requesting changes", reqID)
	case errors.Is(err, pgx.ErrNoRows):
		api.Fail(w, http.StatusNotFound, "not_found", "report not found", reqID)
	default:
		slog.Error("report request failed", "path", r.URL.Path, "err", err)
		api.Fail(w, http.StatusInternalServerError, "internal_error", "something went wrong", reqID)
	}
}
