package domain

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/civicroom/memberdesk/internal/sanitize"
	"github.com/go-playground/validator/v10"
)

type Service interface {
	// Get returns the organisation's contact record, or a default-valued
	// response when no record exists yet.
	Get(ctx context.Context, orgID snowflake.ID) (*Response, error)
	// Set replaces the record's editable fields in full and clears the
	// requires-check flag as part of the same write.
	Set(ctx context.Context, orgID snowflake.ID, req SetRequest) (*Response, error)
}

// SetRequest carries the four editable fields of a contact record. Omitted
// fields stay at their zero value: a Set is a full replace, not a merge.
type SetRequest struct {
	Text         string `json:"text"`
	GenericEmail string `json:"generic_email"`
	InvoiceEmail string `json:"invoice_email"`
	InvoiceInfo  string `json:"invoice_info"`
}

// Normalize validates and cleans the payload before any domain logic runs.
// It returns either a fully-normalized copy or the complete list of field
// errors, never a partially-validated value.
func (r SetRequest) Normalize(v *validator.Validate) (SetRequest, error) {
	var fieldErrs []FieldError

	normalizeEmail := func(field, value string) string {
		value = strings.ToLower(strings.TrimSpace(value))
		if value == "" {
			return ""
		}
		if err := v.Var(value, "email"); err != nil {
			fieldErrs = append(fieldErrs, FieldError{
				Field:   field,
				Code:    "invalid_email",
				Message: "enter a valid email address",
			})
		}
		return value
	}

	out := SetRequest{
		Text:         sanitize.Clean(r.Text),
		GenericEmail: normalizeEmail("generic_email", r.GenericEmail),
		InvoiceEmail: normalizeEmail("invoice_email", r.InvoiceEmail),
		InvoiceInfo:  sanitize.Clean(r.InvoiceInfo),
	}
	if len(fieldErrs) > 0 {
		return SetRequest{}, &ValidationErrors{Errors: fieldErrs}
	}
	return out, nil
}

// Response is the caller-facing serialization of a contact record, shared by
// the get and set operations.
type Response struct {
	PK            string     `json:"pk"`
	Organisation  string     `json:"organisation"`
	Modified      *time.Time `json:"modified"`
	RequiresCheck bool       `json:"requires_check"`
	Text          string     `json:"text"`
	GenericEmail  string     `json:"generic_email"`
	InvoiceEmail  string     `json:"invoice_email"`
	InvoiceInfo   string     `json:"invoice_info"`
}

// NewResponse serializes a stored record.
func NewResponse(record *ContactInfo) *Response {
	modified := record.Modified
	return &Response{
		PK:            record.ID.String(),
		Organisation:  record.OrgID.String(),
		Modified:      &modified,
		RequiresCheck: record.RequiresCheck,
		Text:          record.Text,
		GenericEmail:  record.GenericEmail,
		InvoiceEmail:  record.InvoiceEmail,
		InvoiceInfo:   record.InvoiceInfo,
	}
}

// DefaultResponse represents the valid "no contact info yet" state. The
// requires-check flag is reported as true so callers prompt for an initial
// confirmation.
func DefaultResponse(orgID snowflake.ID) *Response {
	return &Response{
		Organisation:  orgID.String(),
		RequiresCheck: true,
	}
}

type FieldError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []FieldError `json:"errors"`
}

func (v *ValidationErrors) Error() string {
	return "validation error"
}
