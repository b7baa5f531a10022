package models

import "gorm.io/gorm"

type Property struct {
	gorm.Model
	OwnerUserID uint   `json:"owner_user_id" gorm:"not null;index"`
	OrgID       *uint  `json:"org_id" gorm:"index"`
	Address     string `json:"address" gorm:"not null"`
	City        string `json:"city"`
	District    string `json:"district"`
	Description string `json:"description" gorm:"type:text"`

	Owner        *User         `json:"owner,omitempty" gorm:"foreignKey:OwnerUserID"`
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrgID"`
	Rooms        []Room        `json:"rooms,omitempty" gorm:"foreignKey:PropertyID"`
}

// Room is a rentable unit inside a property (shared housing).
type Room struct {
	gorm.Model
	PropertyID uint    `json:"property_id" gorm:"not null;index"`
	RoomName   string  `json:"room_name" gorm:"not null"`
	SizeSqm    float64 `json:"size_sqm"`
	Furnished  bool    `json:"furnished" gorm:"default:false"`
}
