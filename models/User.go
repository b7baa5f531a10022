package models

import (
	"encoding/json"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type User struct {
	gorm.Model
	FullName    string         `json:"full_name"`
	Email       string         `json:"email" gorm:"uniqueIndex;not null"`
	PhoneNumber string         `json:"phone_number"`
	Password    string         `json:"-"`
	Role        string         `json:"role" gorm:"type:varchar(20);default:tenant;index"` // tenant, landlord, admin
	PushTokens  datatypes.JSON `json:"push_tokens"`

	Listings     []Listing         `json:"listings,omitempty" gorm:"foreignKey:OwnerUserID"`
	Affiliations []UserAffiliation `json:"affiliations,omitempty" gorm:"foreignKey:UserID"`
}

// Custom JSON marshaling so push_tokens always serializes as an array
func (u *User) MarshalJSON() ([]byte, error) {
	type Alias User
	aux := &struct {
		PushTokens []string `json:"push_tokens"`
		*Alias
	}{
		PushTokens: []string{},
		Alias:      (*Alias)(u),
	}

	if u.PushTokens != nil {
		var tokens []string
		if err := json.Unmarshal(u.PushTokens, &tokens); err == nil {
			aux.PushTokens = tokens
		}
	}

	return json.Marshal(aux)
}
