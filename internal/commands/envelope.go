// Package commands implements the request/response protocol bound to an
// authenticated session on the push channel.
package commands

import (
	"encoding/json"

	"github.com/bwmarrin/snowflake"
)

// Message names, inbound and outbound.
const (
	NameContactInfoGet = "contact_info.get"
	NameContactInfoSet = "contact_info.set"

	NameErrorUnauthorized = "error.unauthorized"
	NameErrorValidation   = "error.validation"
	NameErrorInternal     = "error.internal"
)

// Inbound is the envelope a client submits on the command endpoint.
type Inbound struct {
	Name string          `json:"name"`
	Data json.RawMessage `json:"data,omitempty"`
}

// Session identifies the authenticated caller and the connection its
// responses are pushed to.
type Session struct {
	UserID       snowflake.ID
	ConnectionID string
}

// UnauthorizedData names the capability the caller lacked.
type UnauthorizedData struct {
	Object       string `json:"object"`
	Permission   string `json:"permission"`
	Organisation string `json:"organisation,omitempty"`
}

// ValidationData carries the field-level errors of a rejected payload.
type ValidationData struct {
	Errors []FieldError `json:"errors"`
}

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
