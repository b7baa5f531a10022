package services

import (
	"testing"

	"vinhousing-server/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIssueWritesInitialHistory(t *testing.T) {
	db := newTestDB(t)
	landlord := createUser(t, db, "landlord")
	tenant := createUser(t, db, "tenant")
	listing := createListing(t, db, landlord, 1000, 500)
	contract := createDraftContract(t, db, listing, landlord, tenant)

	svc := NewIssueService(db, nil)
	issue, err := svc.Create(CreateIssueInput{
		ContractID:  contract.ID,
		Category:    "maintenance",
		Description: "Broken heater in bedroom",
	}, Actor{ID: tenant.ID, Role: "tenant"})
	require.NoError(t, err)

	assert.Equal(t, models.IssueStatusOpen, issue.Status)
	assert.Equal(t, "medium", issue.Severity)
	assert.Equal(t, 24, issue.SLAHours)

	var history []models.IssueStatusHistory
	require.NoError(t, db.Where("issue_id = ?", issue.ID).Find(&history).Error)
	require.Len(t, history, 1)
	assert.Equal(t, models.IssueStatusOpen, history[0].FromStatus)
	assert.Equal(t, models.IssueStatusOpen, history[0].ToStatus)
	assert.Equal(t, tenant.ID, history[0].ChangedBy)
}

func TestCreateIssueInvalidCategory(t *testing.T) {
	db := newTestDB(t)
	svc := NewIssueService(db, nil)

	_, err := svc.Create(CreateIssueInput{
		ContractID:  1,
		Category:    "plumbing",
		Description: "x",
	}, Actor{ID: 1, Role: "tenant"})

	var validationErr *ValidationError
	assert.ErrorAs(t, err, &validationErr)
}

func TestCreateIssueNonPartyRejected(t *testing.T) {
	db := newTestDB(t)
	landlord := createUser(t, db, "landlord")
	tenant := createUser(t, db, "tenant")
	outsider := createUser(t, db, "tenant")
	listing := createListing(t, db, landlord, 1000, 500)
	contract := createDraftContract(t, db, listing, landlord, tenant)

	svc := NewIssueService(db, nil)
	_, err := svc.Create(CreateIssueInput{
		ContractID:  contract.ID,
		Category:    "noise",
		Description: "Loud parties every night",
	}, Actor{ID: outsider.ID, Role: "tenant"})

	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestUpdateStatusNonAdminRejected(t *testing.T) {
	db := newTestDB(t)
	landlord := createUser(t, db, "landlord")
	tenant := createUser(t, db, "tenant")
	listing := createListing(t, db, landlord, 1000, 500)
	contract := createDraftContract(t, db, listing, landlord, tenant)

	svc := NewIssueService(db, nil)
	issue, err := svc.Create(CreateIssueInput{
		ContractID:  contract.ID,
		Category:    "maintenance",
		Description: "Leaking tap",
	}, Actor{ID: tenant.ID, Role: "tenant"})
	require.NoError(t, err)

	resolved := models.IssueStatusResolved
	_, err = svc.UpdateStatus(issue.ID, IssuePatch{Status: &resolved}, Actor{ID: tenant.ID, Role: "tenant"})

	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)

	// Only the synthetic creation entry should exist.
	var count int64
	db.Model(&models.IssueStatusHistory{}).Where("issue_id = ?", issue.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestUpdateStatusAdminResolve(t *testing.T) {
	db := newTestDB(t)
	landlord := createUser(t, db, "landlord")
	tenant := createUser(t, db, "tenant")
	admin := createUser(t, db, "admin")
	listing := createListing(t, db, landlord, 1000, 500)
	contract := createDraftContract(t, db, listing, landlord, tenant)

	svc := NewIssueService(db, nil)
	issue, err := svc.Create(CreateIssueInput{
		ContractID:  contract.ID,
		Category:    "safety",
		Severity:    "high",
		Description: "Broken lock on front door",
	}, Actor{ID: tenant.ID, Role: "tenant"})
	require.NoError(t, err)

	resolved := models.IssueStatusResolved
	updated, err := svc.UpdateStatus(issue.ID, IssuePatch{Status: &resolved}, Actor{ID: admin.ID, Role: "admin"})
	require.NoError(t, err)

	assert.Equal(t, models.IssueStatusResolved, updated.Status)
	require.NotNil(t, updated.ResolvedAt)

	var history []models.IssueStatusHistory
	require.NoError(t, db.Where("issue_id = ?", issue.ID).Order("id ASC").Find(&history).Error)
	require.Len(t, history, 2)
	assert.Equal(t, models.IssueStatusOpen, history[1].FromStatus)
	assert.Equal(t, models.IssueStatusResolved, history[1].ToStatus)
	assert.Equal(t, admin.ID, history[1].ChangedBy)
}

func TestUpdateStatusTerminalImmutable(t *testing.T) {
	db := newTestDB(t)
	landlord := createUser(t, db, "landlord")
	tenant := createUser(t, db, "tenant")
	admin := createUser(t, db, "admin")
	listing := createListing(t, db, landlord, 1000, 500)
	contract := createDraftContract(t, db, listing, landlord, tenant)

	svc := NewIssueService(db, nil)
	issue, err := svc.Create(CreateIssueInput{
		ContractID:  contract.ID,
		Category:    "other",
		Description: "Misc",
	}, Actor{ID: tenant.ID, Role: "tenant"})
	require.NoError(t, err)

	adminActor := Actor{ID: admin.ID, Role: "admin"}
	rejected := models.IssueStatusRejected
	_, err = svc.UpdateStatus(issue.ID, IssuePatch{Status: &rejected}, adminActor)
	require.NoError(t, err)

	inProgress := models.IssueStatusInProgress
	_, err = svc.UpdateStatus(issue.ID, IssuePatch{Status: &inProgress}, adminActor)

	var stateErr *InvalidStateError
	assert.ErrorAs(t, err, &stateErr)
}

func TestUpdateAssigneeOnlyLeavesHistoryAlone(t *testing.T) {
	db := newTestDB(t)
	landlord := createUser(t, db, "landlord")
	tenant := createUser(t, db, "tenant")
	admin := createUser(t, db, "admin")
	listing := createListing(t, db, landlord, 1000, 500)
	contract := createDraftContract(t, db, listing, landlord, tenant)

	svc := NewIssueService(db, nil)
	issue, err := svc.Create(CreateIssueInput{
		ContractID:  contract.ID,
		Category:    "hygiene",
		Description: "Mold in bathroom",
	}, Actor{ID: tenant.ID, Role: "tenant"})
	require.NoError(t, err)

	updated, err := svc.UpdateStatus(issue.ID, IssuePatch{AssigneeUserID: &admin.ID}, Actor{ID: landlord.ID, Role: "landlord"})
	require.NoError(t, err)

	require.NotNil(t, updated.AssigneeUserID)
	assert.Equal(t, admin.ID, *updated.AssigneeUserID)
	assert.Equal(t, models.IssueStatusOpen, updated.Status)

	var count int64
	db.Model(&models.IssueStatusHistory{}).Where("issue_id = ?", issue.ID).Count(&count)
	assert.Equal(t, int64(1), count)
}
