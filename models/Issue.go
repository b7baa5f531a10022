package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	IssueStatusOpen       = "open"
	IssueStatusTriaged    = "triaged"
	IssueStatusInProgress = "in_progress"
	IssueStatusResolved   = "resolved"
	IssueStatusRejected   = "rejected"
)

// IssueReport is a maintenance/dispute/safety ticket tied to a contract.
type IssueReport struct {
	gorm.Model
	ContractID     uint       `json:"contract_id" gorm:"not null;index"`
	ReporterUserID uint       `json:"reporter_user_id" gorm:"not null;index"`
	Category       string     `json:"category" gorm:"type:varchar(30);not null"` // maintenance, scam, safety, noise, hygiene, contract_dispute, other
	Severity       string     `json:"severity" gorm:"type:varchar(10);default:medium"`
	Description    string     `json:"description" gorm:"type:text;not null"`
	SLAHours       int        `json:"sla_hours" gorm:"default:24"`
	Status         string     `json:"status" gorm:"type:varchar(20);default:open;index"`
	AssigneeUserID *uint      `json:"assignee_user_id" gorm:"index"`
	ResolvedAt     *time.Time `json:"resolved_at"`

	Contract    *Contract            `json:"contract,omitempty" gorm:"foreignKey:ContractID"`
	Reporter    *User                `json:"reporter,omitempty" gorm:"foreignKey:ReporterUserID"`
	Assignee    *User                `json:"assignee,omitempty" gorm:"foreignKey:AssigneeUserID"`
	History     []IssueStatusHistory `json:"status_history,omitempty" gorm:"foreignKey:IssueID"`
	Attachments []IssueAttachment    `json:"attachments,omitempty" gorm:"foreignKey:IssueID"`
}

// Terminal reports whether the issue status admits no further transition.
func (i *IssueReport) Terminal() bool {
	return i.Status == IssueStatusResolved || i.Status == IssueStatusRejected
}

// IssueStatusHistory is the append-only audit trail. Every issue has at least
// one row: a synthetic open->open entry written at creation.
type IssueStatusHistory struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	IssueID    uint      `json:"issue_id" gorm:"not null;index"`
	FromStatus string    `json:"from_status" gorm:"type:varchar(20);not null"`
	ToStatus   string    `json:"to_status" gorm:"type:varchar(20);not null"`
	ChangedBy  uint      `json:"changed_by" gorm:"not null"`
	ChangedAt  time.Time `json:"changed_at" gorm:"not null"`
}

type IssueAttachment struct {
	gorm.Model
	IssueID    uint   `json:"issue_id" gorm:"not null;index"`
	UploadedBy uint   `json:"uploaded_by" gorm:"not null"`
	FileURL    string `json:"file_url" gorm:"not null"`
}
