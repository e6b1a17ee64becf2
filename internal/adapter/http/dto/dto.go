package dto

// RetryRequest overrides the configured retry limits for one operator-triggered run.
// All fields are optional.
type RetryRequest struct {
	MaxBatch      int    `json:"max_batch" binding:"omitempty,min=1,max=500"`
	MaxRetryCount int    `json:"max_retry_count" binding:"omitempty,min=1,max=100"`
	PendingMinAge string `json:"pending_min_age" binding:"omitempty,go_duration"`
}

// EventURI binds the :event_id path segment.
type EventURI struct {
	EventID string `uri:"event_id" binding:"required,max=255,safe_id"`
}

// ReconciliationQuery is the query string for the reconciliation listing.
type ReconciliationQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// StatsResponse is the response for webhook event statistics.
type StatsResponse struct {
	Pending       int64 `json:"pending"`
	Processed     int64 `json:"processed"`
	Failed        int64 `json:"failed"`
	Exhausted     int64 `json:"exhausted"`
	MaxRetryCount int   `json:"max_retry_count"`
}

// ReprocessResponse is returned after an operator replays a stored event.
type ReprocessResponse struct {
	EventID     string `json:"event_id"`
	Reprocessed bool   `json:"reprocessed"`
}

// SubscriptionResponse describes a subscription awaiting reconciliation.
type SubscriptionResponse struct {
	ID          string  `json:"id"`
	ExternalRef string  `json:"external_ref"`
	Status      string  `json:"status"`
	PlanID      *string `json:"plan_id,omitempty"`
	CustomerID  *string `json:"customer_id,omitempty"`
	UnitID      *string `json:"unit_id,omitempty"`
	StartsAt    string  `json:"starts_at"`
	EndsAt      string  `json:"ends_at"`
	CreatedAt   string  `json:"created_at"`
}

// ReconciliationResponse wraps the reconciliation listing.
type ReconciliationResponse struct {
	Items []SubscriptionResponse `json:"items"`
	Count int                    `json:"count"`
}
