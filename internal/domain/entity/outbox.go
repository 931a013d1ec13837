package entity

import (
	"encoding/json"
	"time"
)

// Estados de un mensaje del outbox.
const (
	OutboxPending    = "pending"
	OutboxProcessing = "processing"
	OutboxSent       = "sent"
	OutboxFailed     = "failed"
)

// Tipos de notificación.
const (
	NotifyStockLow          = "stock_low"
	NotifyStockOut          = "stock_out"
	NotifyTrialEnding       = "trial_ending"
	NotifyExpiryWarning     = "expiry_warning"
	NotifyLimitWarning      = "limit_warning"
	NotifyPlanChanged       = "plan_changed"
	NotifyUserCreated       = "user_created"
	NotifyTransfer          = "transfer"
	NotifyEmailVerification = "email_verification"
	NotifyContact           = "contact"
	NotifySummary           = "summary"
)

// OutboxMessage efecto diferido: se inserta en la misma transacción que la mutación
// y un worker lo despacha tras el commit.
type OutboxMessage struct {
	ID         string
	TenantID   string
	Kind       string
	Recipients []string
	CC         []string
	Subject    string
	Body       string
	Payload    json.RawMessage
	Status     string
	Attempts   int
	LastError  string
	CreatedAt  time.Time
	SentAt     *time.Time
	// ClaimedAt inicio del lease del worker que lo tomó; nil si nunca se reclamó.
	ClaimedAt *time.Time
}
