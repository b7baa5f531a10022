package models

import "gorm.io/gorm"

// Organization represents a landlord company or student-housing office.
type Organization struct {
	gorm.Model
	Name        string `json:"name" gorm:"not null"`
	OrgType     string `json:"org_type" gorm:"type:varchar(30)"` // agency, landlord_company, university
	Description string `json:"description"`
	Website     string `json:"website"`
	Phone       string `json:"phone"`
	Email       string `json:"email"`
	Address     string `json:"address"`
	City        string `json:"city"`
	OwnerUserID uint   `json:"owner_user_id" gorm:"not null;index"`

	Owner        *User             `json:"owner,omitempty" gorm:"foreignKey:OwnerUserID"`
	Affiliations []UserAffiliation `json:"affiliations,omitempty" gorm:"foreignKey:OrgID"`
}

// UserAffiliation links a user to an organization. A user joins an
// organization at most once.
type UserAffiliation struct {
	gorm.Model
	OrgID     uint   `json:"org_id" gorm:"not null;uniqueIndex:idx_affiliation_org_user"`
	UserID    uint   `json:"user_id" gorm:"not null;uniqueIndex:idx_affiliation_org_user"`
	RoleInOrg string `json:"role_in_org" gorm:"type:varchar(30);default:member"` // member, manager

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
