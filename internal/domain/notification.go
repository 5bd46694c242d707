package domain

import "context"

// NotificationAction identifies which lifecycle event a notification is for.
type NotificationAction string

const (
	NotificationCreated   NotificationAction = "created"
	NotificationUpdated   NotificationAction = "updated"
	NotificationCancelled NotificationAction = "cancelled"
)

// Mailer is the raw notification transport (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the
// given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// NotificationDispatcher delivers best-effort meeting notifications. Notify
// never reports failure to the caller: transport errors are logged and
// dropped, and a slow transport is cut off by an internal timeout. It must
// be invoked only after the owning transaction has committed, so it never
// announces data that could be rolled back.
type NotificationDispatcher interface {
	Notify(ctx context.Context, recipients []string, action NotificationAction, snapshot MeetingSnapshot)
}
