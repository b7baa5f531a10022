package services

import (
	"testing"

	"vinhousing-server/models"

	"github.com/stretchr/testify/assert"
)

func TestCanSetIssueStatus(t *testing.T) {
	admin := Actor{ID: 1, Role: "admin"}
	tenant := Actor{ID: 2, Role: "tenant"}

	for _, status := range []string{
		models.IssueStatusTriaged,
		models.IssueStatusInProgress,
		models.IssueStatusResolved,
		models.IssueStatusRejected,
	} {
		assert.NoError(t, CanSetIssueStatus(admin, status), status)

		var authErr *AuthorizationError
		assert.ErrorAs(t, CanSetIssueStatus(tenant, status), &authErr, status)
	}

	var validationErr *ValidationError
	assert.ErrorAs(t, CanSetIssueStatus(admin, "escalated"), &validationErr)
}

func TestCanSignContract(t *testing.T) {
	contract := &models.Contract{LandlordUserID: 10}
	tenantIDs := []uint{20, 21}

	assert.NoError(t, CanSignContract(Actor{ID: 10, Role: "landlord"}, contract, tenantIDs))
	assert.NoError(t, CanSignContract(Actor{ID: 21, Role: "tenant"}, contract, tenantIDs))

	var authErr *AuthorizationError
	assert.ErrorAs(t, CanSignContract(Actor{ID: 30, Role: "tenant"}, contract, tenantIDs), &authErr)
	assert.ErrorAs(t, CanSignContract(Actor{ID: 1, Role: "admin"}, contract, tenantIDs), &authErr)
}

func TestCanResolveRequest(t *testing.T) {
	request := &models.RentalRequest{RequesterUserID: 20}
	ownerID := uint(10)

	assert.NoError(t, CanResolveRequest(Actor{ID: 20, Role: "tenant"}, request, ownerID, models.RequestStatusCancelled))
	assert.NoError(t, CanResolveRequest(Actor{ID: 10, Role: "landlord"}, request, ownerID, models.RequestStatusAccepted))
	assert.NoError(t, CanResolveRequest(Actor{ID: 1, Role: "admin"}, request, ownerID, models.RequestStatusRejected))

	var authErr *AuthorizationError
	assert.ErrorAs(t, CanResolveRequest(Actor{ID: 10, Role: "landlord"}, request, ownerID, models.RequestStatusCancelled), &authErr)
	assert.ErrorAs(t, CanResolveRequest(Actor{ID: 20, Role: "tenant"}, request, ownerID, models.RequestStatusAccepted), &authErr)
}
