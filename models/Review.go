package models

import "gorm.io/gorm"

// Review is written by a contract party about the other side (a user) or the
// listing itself. One review per (contract, reviewer, target).
type Review struct {
	gorm.Model
	ContractID     uint   `json:"contract_id" gorm:"not null;uniqueIndex:idx_review_once"`
	ReviewerUserID uint   `json:"reviewer_user_id" gorm:"not null;uniqueIndex:idx_review_once"`
	TargetType     string `json:"target_type" gorm:"type:varchar(20);not null;uniqueIndex:idx_review_once"` // user, listing
	TargetID       uint   `json:"target_id" gorm:"not null;uniqueIndex:idx_review_once"`
	Rating         int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`
	Comment        string `json:"comment" gorm:"type:text"`

	Reviewer *User `json:"reviewer,omitempty" gorm:"foreignKey:ReviewerUserID"`
}
