// Package domain contains core types for yearly memberships.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// MembershipType is a fee tier organisations can subscribe at.
type MembershipType struct {
	ID          snowflake.ID `gorm:"primaryKey"`
	Title       string       `gorm:"type:text;not null;uniqueIndex"`
	Description string       `gorm:"type:text;not null;default:''"`
	Price       int          `gorm:"not null;default:0"`
	Active      bool         `gorm:"not null;default:true"`
	CreatedAt   time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (MembershipType) TableName() string { return "membership_types" }

// Membership is one organisation's membership for one calendar year. At most
// one row exists per organisation and year.
type Membership struct {
	ID               snowflake.ID  `gorm:"primaryKey"`
	OrgID            snowflake.ID  `gorm:"column:org_id;not null;uniqueIndex:ux_memberships_org_year"`
	Year             int           `gorm:"not null;uniqueIndex:ux_memberships_org_year"`
	MembershipTypeID *snowflake.ID `gorm:"column:membership_type_id"`
	Paid             bool          `gorm:"not null;default:false"`
	Canceled         bool          `gorm:"not null;default:false"`
	Text             string        `gorm:"type:text;not null;default:''"`
	CreatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt        time.Time     `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Membership) TableName() string { return "memberships" }
