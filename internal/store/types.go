package store

import (
	"context"
	"time"

	"github.com/imrishuroy/ordering-bff/internal/commerce"
)

// Document kinds written to the content store.
const (
	ProductType = "swellProduct"
	VariantType = "swellProductVariant"
)

// Mirror event actions.
const (
	ActionUpdated = "updated"
	ActionDeleted = "deleted"
)

// Commerce is the slice of the commerce platform the service uses.
type Commerce interface {
	CreateAccount(ctx context.Context, payload commerce.AccountPayload) (*commerce.UserAccount, error)
	GetProduct(ctx context.Context, id string) (commerce.Record, error)
	ListVariants(ctx context.Context, parentID string) ([]commerce.Record, error)
	GetPromotion(ctx context.Context, id string) (*commerce.Promotion, error)
}

// AccountRegistration is a new-account request in client-app shape.
// A nil notification preference means the caller did not choose; it
// defaults to true.
type AccountRegistration struct {
	FirstName                string
	LastName                 string
	Email                    string
	EmailOptin               bool
	Password                 string
	Phone                    string
	AcceptsPhoneTerms        bool
	PrefersPushNotification  *bool
	PrefersEmailNotification *bool
}

// MirrorEvent announces a committed change to a product mirror document.
type MirrorEvent struct {
	ProductID     string    `json:"product_id"`
	Action        string    `json:"action"`
	TransactionID string    `json:"transaction_id"`
	VariantIDs    []string  `json:"variant_ids,omitempty"`
	OccurredAt    time.Time `json:"occurred_at"`
}

// EventPublisher delivers mirror events to downstream consumers.
type EventPublisher interface {
	PublishMirrorEvent(ctx context.Context, event MirrorEvent) error
}
