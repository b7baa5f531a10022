package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RequestStatusPending   = "pending"
	RequestStatusAccepted  = "accepted"
	RequestStatusRejected  = "rejected"
	RequestStatusCancelled = "cancelled"
)

// RentalRequest records a tenant's interest in a listing. Once accepted,
// rejected or cancelled it never transitions again.
type RentalRequest struct {
	gorm.Model
	ListingID       uint       `json:"listing_id" gorm:"not null;index"`
	RequesterUserID uint       `json:"requester_user_id" gorm:"not null;index"`
	Message         string     `json:"message" gorm:"type:text"`
	DesiredMoveIn   *time.Time `json:"desired_move_in"`
	Status          string     `json:"status" gorm:"type:varchar(20);default:pending;index"`

	Listing   *Listing `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Requester *User    `json:"requester,omitempty" gorm:"foreignKey:RequesterUserID"`
}

// Resolved reports whether the request reached a terminal status.
func (r *RentalRequest) Resolved() bool {
	return r.Status != RequestStatusPending
}
