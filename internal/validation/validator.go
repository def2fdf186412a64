package validation

import (
	validatorv10 "github.com/go-playground/validator/v10"
)

// New returns a configured validator with custom struct-level validation registered.
func New() *validatorv10.Validate {
	v := validatorv10.New()

	// SMS notifications need a number to send to.
	v.RegisterStructValidation(accountRegistrationStructValidation, AccountRegistrationRequest{})

	return v
}

// accountRegistrationStructValidation requires a phone number when the caller accepts phone terms
func accountRegistrationStructValidation(sl validatorv10.StructLevel) {
	req := sl.Current().Interface().(AccountRegistrationRequest)

	if req.AcceptsPhoneTerms && req.Phone == "" {
		sl.ReportError(req.Phone, "phone", "Phone", "required_with_phone_terms", "")
	}
}
