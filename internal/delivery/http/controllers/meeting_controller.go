package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"meetingscheduler/internal/delivery/http/helpers"
	"meetingscheduler/internal/delivery/http/middleware"
	"meetingscheduler/internal/domain"
)

// ScheduleMeetingRequest is the request body for POST /meetings and
// PUT /meetings/{meetingID}. Start and end accept "HH:MM:SS", "hh:mm AM/PM",
// or "HH:MM"; malformed times are rejected, never defaulted.
type ScheduleMeetingRequest struct {
	Title          string   `json:"title"`
	Date           string   `json:"date"`
	Start          string   `json:"start_time"`
	End            string   `json:"end_time"`
	Venue          string   `json:"venue"`
	DepartmentID   string   `json:"department_id"`
	ParticipantIDs []string `json:"participant_ids"`
}

// Validate implements Validator. Semantic checks (time parsing, participant
// existence) happen in the service; only presence is checked here.
func (s ScheduleMeetingRequest) Validate() []string {
	var errs []string
	if strings.TrimSpace(s.Title) == "" {
		errs = append(errs, "title is required")
	}
	if strings.TrimSpace(s.Date) == "" {
		errs = append(errs, "date is required")
	}
	if strings.TrimSpace(s.Start) == "" {
		errs = append(errs, "start_time is required")
	}
	if strings.TrimSpace(s.End) == "" {
		errs = append(errs, "end_time is required")
	}
	if strings.TrimSpace(s.DepartmentID) == "" {
		errs = append(errs, "department_id is required")
	}
	return errs
}

func (s ScheduleMeetingRequest) toInput() domain.ScheduleInput {
	return domain.ScheduleInput{
		Title:          strings.TrimSpace(s.Title),
		Date:           strings.TrimSpace(s.Date),
		Start:          strings.TrimSpace(s.Start),
		End:            strings.TrimSpace(s.End),
		Venue:          strings.TrimSpace(s.Venue),
		DepartmentID:   strings.TrimSpace(s.DepartmentID),
		ParticipantIDs: s.ParticipantIDs,
	}
}

// MeetingSuccessResponse is the success response envelope for meeting endpoints.
type MeetingSuccessResponse struct {
	Data  *domain.Meeting   `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// MeetingListSuccessResponse is the success response envelope for meeting list endpoints.
type MeetingListSuccessResponse struct {
	Data  []*domain.Meeting `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// CancelMeetingResponse is the data payload for DELETE /meetings/{meetingID} (200).
type CancelMeetingResponse struct {
	Status string `json:"status"`
}

type MeetingController struct {
	Logger  *slog.Logger
	Service domain.SchedulingService
}

func NewMeetingController(logger *slog.Logger, svc domain.SchedulingService) *MeetingController {
	return &MeetingController{
		Logger:  logger,
		Service: svc,
	}
}

// writeSchedulingError maps service errors to HTTP responses. A conflict
// carries the full conflict list in error.details so clients can show every
// busy participant, not just the first.
func (c *MeetingController) writeSchedulingError(w http.ResponseWriter, r *http.Request, err error) {
	var vErr *domain.ValidationError
	if errors.As(err, &vErr) {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, vErr.Reason)
		return
	}
	var cErr *domain.ConflictError
	if errors.As(err, &cErr) {
		helpers.WriteJSONErrorDetails(w, http.StatusConflict, helpers.ErrCodeConflict, cErr.Error(), cErr.Conflicts)
		return
	}
	if errors.Is(err, domain.ErrNotFound) {
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "meeting not found")
		return
	}
	if errors.Is(err, domain.ErrForbidden) {
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "only the creator may modify a meeting")
		return
	}
	c.Logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
	helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
}

// Schedule godoc
// @Summary Schedule a meeting
// @Description Book a meeting for the authenticated user. The creator is always on the roster. Rejected with 409 and the full conflict list if any participant already has an overlapping meeting that day; back-to-back bookings are allowed.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body ScheduleMeetingRequest true "Meeting data"
// @Success 201 {object} controllers.MeetingSuccessResponse "data contains the created meeting"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict; error.details lists conflicts"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings [post]
func (c *MeetingController) Schedule(w http.ResponseWriter, r *http.Request) {
	var req ScheduleMeetingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meeting, err := c.Service.Schedule(r.Context(), userID, req.toInput())
	if err != nil {
		c.writeSchedulingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, meeting)
}

// Reschedule godoc
// @Summary Reschedule a meeting
// @Description Replace a meeting's details and roster. Only the creator may edit. The meeting never conflicts with its own prior time slot.
// @Tags meetings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Param body body ScheduleMeetingRequest true "New meeting data"
// @Success 200 {object} controllers.MeetingSuccessResponse "data contains the updated meeting"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict; error.details lists conflicts"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/{meetingID} [put]
func (c *MeetingController) Reschedule(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingID")
	if meetingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing meetingID")
		return
	}
	var req ScheduleMeetingRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meeting, err := c.Service.Reschedule(r.Context(), meetingID, userID, req.toInput())
	if err != nil {
		c.writeSchedulingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meeting)
}

// Cancel godoc
// @Summary Cancel a meeting
// @Description Delete a meeting and its roster. Only the creator may cancel. Participants are notified from details captured before deletion.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Success 200 {object} helpers.APIResponse "data contains status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/{meetingID} [delete]
func (c *MeetingController) Cancel(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingID")
	if meetingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing meetingID")
		return
	}
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Cancel(r.Context(), meetingID, userID); err != nil {
		c.writeSchedulingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, CancelMeetingResponse{Status: "cancelled"})
}

// GetMeeting godoc
// @Summary Get a meeting by ID
// @Description Returns the meeting with its participant roster. Requires authentication.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Success 200 {object} controllers.MeetingSuccessResponse "data contains the meeting"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/{meetingID} [get]
func (c *MeetingController) GetMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingID")
	if meetingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing meetingID")
		return
	}
	meeting, err := c.Service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		c.writeSchedulingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meeting)
}

// ListCreated godoc
// @Summary List meetings created by the current user
// @Description Returns meetings the authenticated user created, newest date first. Optional search filters by title or department name (case-insensitive substring).
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param search query string false "Filter by title or department name"
// @Success 200 {object} controllers.MeetingListSuccessResponse "data is an array of meetings"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/created [get]
func (c *MeetingController) ListCreated(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	keyword := strings.TrimSpace(r.URL.Query().Get("search"))
	meetings, err := c.Service.ListCreatedBy(r.Context(), userID, keyword)
	if err != nil {
		c.writeSchedulingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meetings)
}

// ListSchedule godoc
// @Summary List the current user's schedule
// @Description Returns every meeting the authenticated user is a participant of, including meetings created by others.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.MeetingListSuccessResponse "data is an array of meetings"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/schedule [get]
func (c *MeetingController) ListSchedule(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	meetings, err := c.Service.ListScheduleFor(r.Context(), userID)
	if err != nil {
		c.writeSchedulingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, meetings)
}

// ListMembersSuccessResponse is the success response envelope for GET /meetings/{meetingID}/members (200).
type ListMembersSuccessResponse struct {
	Data  []*domain.MeetingMember `json:"data"`
	Error *helpers.APIError       `json:"error"`
}

// ListMembers godoc
// @Summary List meeting members
// @Description Returns the roster of a meeting with name, email, role, and department, ordered by name.
// @Tags meetings
// @Produce json
// @Security BearerAuth
// @Param meetingID path string true "Meeting ID"
// @Success 200 {object} controllers.ListMembersSuccessResponse "data is an array of members"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /meetings/{meetingID}/members [get]
func (c *MeetingController) ListMembers(w http.ResponseWriter, r *http.Request) {
	meetingID := r.PathValue("meetingID")
	if meetingID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing meetingID")
		return
	}
	members, err := c.Service.ListMembers(r.Context(), meetingID)
	if err != nil {
		c.writeSchedulingError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, members)
}
