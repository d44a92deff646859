package services

import "github.com/go-playground/validator/v10"

var validate = validator.New()

type namePayload struct {
	Name string `validate:"required,min=3,max=20"`
}

// messagePayload holds the client-editable message fields. Status notices
// are system-generated, so "status" is not an accepted type here.
type messagePayload struct {
	To   string `validate:"required,min=3,max=20"`
	Text string `validate:"required"`
	Type string `validate:"required,oneof=message private_message"`
}
