// Package domain contains the contact record entity and its contracts.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// ContactInfo holds contact and invoicing details for one organisation.
// Exactly one row exists per organisation; rows are created lazily by the
// first manager update and never deleted while the organisation exists.
type ContactInfo struct {
	ID           snowflake.ID `gorm:"primaryKey" json:"id"`
	OrgID        snowflake.ID `gorm:"column:org_id;not null;uniqueIndex:ux_contact_infos_org" json:"org_id"`
	Text         string       `gorm:"type:text;not null;default:''" json:"text"`
	GenericEmail string       `gorm:"column:generic_email;type:text;not null;default:''" json:"generic_email"`
	InvoiceEmail string       `gorm:"column:invoice_email;type:text;not null;default:''" json:"invoice_email"`
	InvoiceInfo  string       `gorm:"column:invoice_info;type:text;not null;default:''" json:"invoice_info"`
	// Modified is stamped server-side on every write, never taken from the
	// caller.
	Modified      time.Time `gorm:"not null" json:"modified"`
	RequiresCheck bool      `gorm:"column:requires_check;not null;default:false" json:"requires_check"`
}

// TableName sets the database table name.
func (ContactInfo) TableName() string { return "contact_infos" }
