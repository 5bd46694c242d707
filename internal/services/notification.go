package services

import (
	"context"
	"log/slog"
	"time"

	"meetingscheduler/internal/domain"
)

type notificationService struct {
	mailer   domain.Mailer
	renderer domain.EmailTemplateRenderer
	logger   *slog.Logger
	timeout  time.Duration
}

// NewNotificationDispatcher returns a dispatcher that renders the
// meeting_<action> template and sends one email per recipient. Dispatch is
// strictly best-effort: it runs after the booking transaction has committed,
// failures are logged and dropped, and the whole dispatch is bounded by
// timeout so a slow transport cannot hold the caller's response.
func NewNotificationDispatcher(mailer domain.Mailer, renderer domain.EmailTemplateRenderer, logger *slog.Logger, timeout time.Duration) domain.NotificationDispatcher {
	return &notificationService{
		mailer:   mailer,
		renderer: renderer,
		logger:   logger,
		timeout:  timeout,
	}
}

// meetingEmailData is the template payload for all three actions.
type meetingEmailData struct {
	Title          string
	Date           string
	Start          string
	End            string
	Venue          string
	DepartmentName string
}

func (s *notificationService) Notify(ctx context.Context, recipients []string, action domain.NotificationAction, snapshot domain.MeetingSnapshot) {
	if len(recipients) == 0 {
		return
	}
	// Detached from the request context: a caller that disconnects after
	// commit should not cancel the notice, but the dispatch still may not
	// outlive its own timeout.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	venue := snapshot.Venue
	if venue == "" {
		venue = "TBD"
	}
	data := meetingEmailData{
		Title:          snapshot.Title,
		Date:           snapshot.Date.Format(time.DateOnly),
		Start:          snapshot.Start.String(),
		End:            snapshot.End.String(),
		Venue:          venue,
		DepartmentName: snapshot.DepartmentName,
	}
	subject, htmlBody, textBody, err := s.renderer.Render("meeting_"+string(action), data)
	if err != nil {
		s.logger.Error("render notification", "action", action, "err", err)
		return
	}

	for _, to := range recipients {
		if ctx.Err() != nil {
			s.logger.Warn("notification dispatch timed out", "action", action, "pending", to)
			return
		}
		if err := s.mailer.Send(ctx, to, subject, htmlBody, textBody); err != nil {
			s.logger.Error("send notification", "action", action, "to", to, "err", err)
			continue
		}
	}
	s.logger.Info("notifications dispatched", "action", action, "recipients", len(recipients))
}
