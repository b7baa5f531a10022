package services

import (
	"errors"
	"fmt"
	"time"

	"vinhousing-server/models"

	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type IssueService struct {
	db     *gorm.DB
	events Emitter
}

func NewIssueService(db *gorm.DB, events Emitter) *IssueService {
	if events == nil {
		events = NopEmitter{}
	}
	return &IssueService{db: db, events: events}
}

var issueCategories = []string{
	"maintenance", "scam", "safety", "noise", "hygiene", "contract_dispute", "other",
}

var issueSeverities = []string{"low", "medium", "high", "critical"}

type CreateIssueInput struct {
	ContractID  uint
	Category    string
	Severity    string
	Description string
	SLAHours    int
}

// Create opens an issue against a contract. The reporter must be a party to
// the contract (or an admin). The issue row and its synthetic open->open
// history entry commit atomically, so every issue always has at least one
// history row.
func (s *IssueService) Create(in CreateIssueInput, actor Actor) (*models.IssueReport, error) {
	if !slices.Contains(issueCategories, in.Category) {
		return nil, &ValidationError{Message: "Invalid category: " + in.Category}
	}
	if in.Severity == "" {
		in.Severity = "medium"
	}
	if !slices.Contains(issueSeverities, in.Severity) {
		return nil, &ValidationError{Message: "Invalid severity: " + in.Severity}
	}
	if in.Description == "" {
		return nil, &ValidationError{Message: "Description is required"}
	}
	if in.SLAHours <= 0 {
		in.SLAHours = 24
	}

	var contract models.Contract
	if err := s.db.First(&contract, in.ContractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Contract"}
		}
		return nil, err
	}

	var tenantIDs []uint
	if err := s.db.Model(&models.ContractTenant{}).
		Where("contract_id = ?", contract.ID).
		Pluck("tenant_user_id", &tenantIDs).Error; err != nil {
		return nil, err
	}
	if err := CanReportIssue(actor, &contract, tenantIDs); err != nil {
		return nil, err
	}

	issue := models.IssueReport{
		ContractID:     contract.ID,
		ReporterUserID: actor.ID,
		Category:       in.Category,
		Severity:       in.Severity,
		Description:    in.Description,
		SLAHours:       in.SLAHours,
		Status:         models.IssueStatusOpen,
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&issue).Error; err != nil {
			return err
		}
		history := models.IssueStatusHistory{
			IssueID:    issue.ID,
			FromStatus: models.IssueStatusOpen,
			ToStatus:   models.IssueStatusOpen,
			ChangedBy:  actor.ID,
			ChangedAt:  time.Now(),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(EventIssueCreated, issue)
	if actor.ID != contract.LandlordUserID {
		notify(s.db, contract.LandlordUserID, "New issue report",
			fmt.Sprintf("A %s issue was reported on contract #%d", in.Category, contract.ID),
			"issue", "issue", issue.ID)
	}
	return &issue, nil
}

// IssuePatch carries the optional fields of an issue status update.
type IssuePatch struct {
	Status         *string
	AssigneeUserID *uint
}

// UpdateStatus applies a status and/or assignee change. Privileged statuses
// require the admin role; a history row is appended only when the status
// actually changes. Resolved/rejected issues admit no further transitions.
func (s *IssueService) UpdateStatus(id uint, patch IssuePatch, actor Actor) (*models.IssueReport, error) {
	var issue models.IssueReport
	if err := s.db.First(&issue, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, &NotFoundError{Resource: "Issue"}
		}
		return nil, err
	}

	oldStatus := issue.Status
	updates := map[string]interface{}{}
	statusChanged := false

	if patch.Status != nil {
		if err := CanSetIssueStatus(actor, *patch.Status); err != nil {
			return nil, err
		}
		if issue.Terminal() && *patch.Status != oldStatus {
			return nil, &InvalidStateError{Message: "Issue is already " + oldStatus}
		}
		if *patch.Status != oldStatus {
			updates["status"] = *patch.Status
			statusChanged = true
			if *patch.Status == models.IssueStatusResolved {
				updates["resolved_at"] = time.Now()
			}
		}
	}
	if patch.AssigneeUserID != nil {
		updates["assignee_user_id"] = *patch.AssigneeUserID
	}

	if len(updates) == 0 {
		return &issue, nil
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&issue).Updates(updates).Error; err != nil {
			return err
		}
		if !statusChanged {
			return nil
		}
		history := models.IssueStatusHistory{
			IssueID:    issue.ID,
			FromStatus: oldStatus,
			ToStatus:   *patch.Status,
			ChangedBy:  actor.ID,
			ChangedAt:  time.Now(),
		}
		return tx.Create(&history).Error
	})
	if err != nil {
		return nil, err
	}

	if err := s.db.First(&issue, id).Error; err != nil {
		return nil, err
	}

	if statusChanged {
		s.events.Emit(EventIssueStatusChanged, map[string]interface{}{
			"issue_id":    issue.ID,
			"from_status": oldStatus,
			"to_status":   issue.Status,
		})
		notify(s.db, issue.ReporterUserID, "Issue status updated",
			fmt.Sprintf("Issue #%d moved from %s to %s", issue.ID, oldStatus, issue.Status),
			"issue", "issue", issue.ID)
	}
	return &issue, nil
}
