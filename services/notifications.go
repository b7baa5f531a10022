package services

import (
	"log"

	"vinhousing-server/models"

	"gorm.io/gorm"
)

// notify writes an in-app notification row. Failures are logged, never
// propagated: a missed notification must not roll back the workflow that
// produced it.
func notify(db *gorm.DB, userID uint, title, message, typ, refType string, refID uint) {
	n := models.Notification{
		UserID:  userID,
		Title:   title,
		Message: message,
		Type:    typ,
		RefType: refType,
		RefID:   refID,
	}
	if err := db.Create(&n).Error; err != nil {
		log.Printf("notification write failed for user %d: %v", userID, err)
	}
}
