package dto

import "anoa.com/learnhub/internal/entity"

// WebhookEvent is the provider callback body.
type WebhookEvent struct {
	ProviderRef string `json:"provider_ref" binding:"required"`
	Status      string `json:"status" binding:"required,oneof=succeeded failed cancelled"`
}

type WebhookResult struct {
	Intent     *entity.PaymentIntent `json:"intent"`
	Enrollment *entity.Enrollment    `json:"enrollment,omitempty"`
	Duplicate  bool                  `json:"duplicate"`
}
