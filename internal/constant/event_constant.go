package constant

const (
	EventExchangeCompleted    = "EXCHANGE_COMPLETED"
	EventExchangeFailed       = "EXCHANGE_FAILED"
	EventQuotaExhausted       = "QUOTA_EXHAUSTED"
	EventQuotaProvisioned     = "QUOTA_PROVISIONED"
	EventSubscriptionCanceled = "SUBSCRIPTION_CANCELED"
)
