package validation

import "github.com/imrishuroy/ordering-bff/internal/location"

// AccountRegistrationRequest is the payload for POST /accounts/register.
type AccountRegistrationRequest struct {
	FirstName                string `json:"firstName" validate:"required"`
	LastName                 string `json:"lastName" validate:"required"`
	Email                    string `json:"email" validate:"required,email"`
	EmailOptin               bool   `json:"emailOptin"`
	Password                 string `json:"password" validate:"required"`
	Phone                    string `json:"phone"`
	AcceptsPhoneTerms        bool   `json:"acceptsPhoneTerms"`
	PrefersPushNotification  *bool  `json:"prefersPushNotification,omitempty"`  // nil means true
	PrefersEmailNotification *bool  `json:"prefersEmailNotification,omitempty"` // nil means true
}

// PickupItemsRequest wraps the bare JSON array posted to
// /locations/:locationId/theoretical-eta so each item can be validated.
type PickupItemsRequest struct {
	Items []location.PickupItem `validate:"min=1,dive"`
}
