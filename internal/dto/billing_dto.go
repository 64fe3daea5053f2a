package dto

import "time"

// UpsertQuotaRequest is sent by the billing collaborator after a successful
// checkout or renewal. MaxMessages <= 0 means "use the plan's allowance".
type UpsertQuotaRequest struct {
	Plan        string     `json:"plan" validate:"required,max=50"`
	MaxMessages int        `json:"max_messages" validate:"gte=0"`
	PeriodStart *time.Time `json:"period_start"`
}

// QuotaProvisionedPayload is the body of a QUOTA_PROVISIONED event.
type QuotaProvisionedPayload struct {
	UserId      string     `json:"user_id"`
	Plan        string     `json:"plan"`
	MaxMessages int        `json:"max_messages"`
	PeriodStart *time.Time `json:"period_start"`
}

// SubscriptionCanceledPayload is the body of a SUBSCRIPTION_CANCELED event.
type SubscriptionCanceledPayload struct {
	UserId string `json:"user_id"`
	Status string `json:"status"` // "canceled" (default) or "inactive"
}
