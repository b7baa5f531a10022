package models

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Listing advertises a whole property or a single room for rent. Exactly one
// of PropertyID / RoomID is set.
type Listing struct {
	gorm.Model
	PropertyID    *uint          `json:"property_id" gorm:"index"`
	RoomID        *uint          `json:"room_id" gorm:"index"`
	OwnerUserID   uint           `json:"owner_user_id" gorm:"not null;index"`
	Price         float64        `json:"price" gorm:"not null"`
	Deposit       float64        `json:"deposit" gorm:"default:0"`
	AvailableFrom *time.Time     `json:"available_from"`
	Status        string         `json:"status" gorm:"type:varchar(20);default:available;index"` // available, rented, inactive
	Features      datatypes.JSON `json:"features" gorm:"type:jsonb"`

	Property *Property `json:"property,omitempty" gorm:"foreignKey:PropertyID"`
	Room     *Room     `json:"room,omitempty" gorm:"foreignKey:RoomID"`
	Owner    *User     `json:"owner,omitempty" gorm:"foreignKey:OwnerUserID"`
}
