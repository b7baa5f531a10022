package services

import (
	"vinhousing-server/models"

	"golang.org/x/exp/slices"
)

// Actor identifies the authenticated caller of a workflow.
type Actor struct {
	ID   uint
	Role string
}

func (a Actor) IsAdmin() bool { return a.Role == "admin" }

// CanResolveRequest enforces who may move a pending rental request to
// newStatus: only the requester cancels, only the listing owner (or an admin)
// accepts or rejects.
func CanResolveRequest(actor Actor, req *models.RentalRequest, listingOwnerID uint, newStatus string) error {
	if newStatus == models.RequestStatusCancelled {
		if actor.ID != req.RequesterUserID {
			return &AuthorizationError{Message: "Only the requester can cancel this request"}
		}
		return nil
	}
	if actor.ID != listingOwnerID && !actor.IsAdmin() {
		return &AuthorizationError{Message: "Only the listing owner can accept or reject requests"}
	}
	return nil
}

// CanManageContract gates contract creation and field updates to the
// contract's landlord or an admin.
func CanManageContract(actor Actor, landlordUserID uint) error {
	if actor.ID != landlordUserID && !actor.IsAdmin() {
		return &AuthorizationError{Message: "You do not have permission to manage this contract"}
	}
	return nil
}

// CanSignContract allows only contract parties (landlord or listed tenants)
// to sign. Admins are not parties and cannot sign on behalf of one.
func CanSignContract(actor Actor, contract *models.Contract, tenantIDs []uint) error {
	if actor.ID == contract.LandlordUserID || slices.Contains(tenantIDs, actor.ID) {
		return nil
	}
	return &AuthorizationError{Message: "You are not authorized to sign this contract"}
}

// CanReportIssue allows contract parties and admins to open issues.
func CanReportIssue(actor Actor, contract *models.Contract, tenantIDs []uint) error {
	if actor.ID == contract.LandlordUserID || slices.Contains(tenantIDs, actor.ID) || actor.IsAdmin() {
		return nil
	}
	return &AuthorizationError{Message: "You do not have access to this contract"}
}

// CanSetIssueStatus restricts status transitions to admins. Non-admin
// parties may still update the assignee through the same endpoint.
func CanSetIssueStatus(actor Actor, newStatus string) error {
	switch newStatus {
	case models.IssueStatusTriaged, models.IssueStatusInProgress, models.IssueStatusResolved, models.IssueStatusRejected:
		if !actor.IsAdmin() {
			return &AuthorizationError{Message: "Only admins can update issue status to this value"}
		}
		return nil
	default:
		return &ValidationError{Message: "Invalid issue status: " + newStatus}
	}
}
