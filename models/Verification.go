package models

import "gorm.io/gorm"

// Verification is an admin-reviewed trust check against a user, property or
// listing.
type Verification struct {
	gorm.Model
	TargetType     string `json:"target_type" gorm:"type:varchar(20);not null;index"` // user, property, listing
	TargetID       uint   `json:"target_id" gorm:"not null;index"`
	VerifierUserID *uint  `json:"verifier_user_id"`
	Status         string `json:"status" gorm:"type:varchar(20);default:pending;index"` // pending, approved, rejected
	Note           string `json:"note" gorm:"type:text"`

	Verifier *User `json:"verifier,omitempty" gorm:"foreignKey:VerifierUserID"`
}
