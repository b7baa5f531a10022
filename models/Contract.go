package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	ContractStatusDraft      = "draft"
	ContractStatusSigned     = "signed"
	ContractStatusActive     = "active"
	ContractStatusTerminated = "terminated"
	ContractStatusCancelled  = "cancelled"
)

// Contract is the lease record between one landlord and one or more tenants.
// It reaches "signed" only when every party (landlord + all tenants) has a
// signature on file.
type Contract struct {
	gorm.Model
	ListingID      uint       `json:"listing_id" gorm:"not null;index"`
	LandlordUserID uint       `json:"landlord_user_id" gorm:"not null;index"`
	StartDate      time.Time  `json:"start_date" gorm:"not null"`
	EndDate        *time.Time `json:"end_date"`
	Rent           float64    `json:"rent" gorm:"not null"`
	Deposit        float64    `json:"deposit" gorm:"default:0"`
	Status         string     `json:"status" gorm:"type:varchar(20);default:draft;index"`
	SignedAt       *time.Time `json:"signed_at"`

	Listing    *Listing            `json:"listing,omitempty" gorm:"foreignKey:ListingID"`
	Landlord   *User               `json:"landlord,omitempty" gorm:"foreignKey:LandlordUserID"`
	Tenants    []ContractTenant    `json:"tenants,omitempty" gorm:"foreignKey:ContractID"`
	Signatures []ContractSignature `json:"signatures,omitempty" gorm:"foreignKey:ContractID"`
}

// ContractTenant joins tenants to contracts (roommates share one contract).
type ContractTenant struct {
	gorm.Model
	ContractID   uint `json:"contract_id" gorm:"not null;uniqueIndex:idx_contract_tenant"`
	TenantUserID uint `json:"tenant_user_id" gorm:"not null;uniqueIndex:idx_contract_tenant"`

	Tenant *User `json:"tenant,omitempty" gorm:"foreignKey:TenantUserID"`
}

// ContractSignature is append-only; a party signs a contract at most once.
type ContractSignature struct {
	gorm.Model
	ContractID      uint      `json:"contract_id" gorm:"not null;uniqueIndex:idx_contract_signer"`
	UserID          uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_contract_signer"`
	SignedAt        time.Time `json:"signed_at" gorm:"not null"`
	SignatureMethod string    `json:"signature_method" gorm:"type:varchar(30);default:checkbox"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID"`
}
