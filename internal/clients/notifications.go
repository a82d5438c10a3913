package clients

import (
	"context"
	"net/http"
	"time"

	"github.com/noah-isme/ta-hiring-api/internal/models"
)

// StatusEvent is the payload delivered to applicants' inboxes on every status change.
type StatusEvent struct {
	Username   string                   `json:"username"`
	CourseCode string                   `json:"courseCode"`
	Status     models.ApplicationStatus `json:"status"`
	OccurredAt time.Time                `json:"occurredAt"`
}

func newStatusEvent(directive models.SelectionDirective) StatusEvent {
	return StatusEvent{
		Username:   directive.Username,
		CourseCode: directive.CourseCode,
		Status:     directive.Status,
		OccurredAt: time.Now().UTC(),
	}
}

// HTTPNotifier posts status changes to the notification service.
type HTTPNotifier struct {
	base
}

// NewHTTPNotifier constructs a notification-service client.
func NewHTTPNotifier(opts Options) *HTTPNotifier {
	return &HTTPNotifier{base: newBase("notifications", opts)}
}

// NotifyStatus delivers one status change. It is attempted once.
func (n *HTTPNotifier) NotifyStatus(ctx context.Context, directive models.SelectionDirective) error {
	return n.call(ctx, "status_notification", http.MethodPost, "/notifications/status", newStatusEvent(directive), nil)
}
