package models

import "gorm.io/gorm"

type Notification struct {
	gorm.Model
	UserID  uint   `json:"user_id" gorm:"not null;index"`
	Title   string `json:"title"`
	Message string `json:"message" gorm:"type:text"`
	Type    string `json:"type" gorm:"type:varchar(40);index"` // rental_request, contract, issue
	RefType string `json:"ref_type" gorm:"type:varchar(40)"`
	RefID   uint   `json:"ref_id"`
	IsRead  bool   `json:"is_read" gorm:"default:false;index"`
}
