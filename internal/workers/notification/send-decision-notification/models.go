// internal/workers/notification/send-decision-notification/models.go
package senddecisionnotification

type Input struct {
	ApplicationID string `json:"applicationId"`
	FirstName     string `json:"firstName"`
	Email         string `json:"email"`
	Phone         string `json:"phone,omitempty"`
	Status        string `json:"status"`
	Reason        string `json:"reason,omitempty"`
	OfferCount    int    `json:"offerCount"`
}

type Output struct {
	NotificationID string   `json:"notificationId"`
	Channels       []string `json:"channels"`
	SentAt         string   `json:"sentAt"`
}
