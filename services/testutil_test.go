package services

import (
	"fmt"
	"testing"
	"time"

	"vinhousing-server/models"
	"vinhousing-server/storage"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// Named in-memory DB so every pooled connection sees the same schema.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, storage.Migrate(db))
	return db
}

var emailSeq int

func createUser(t *testing.T, db *gorm.DB, role string) models.User {
	t.Helper()
	emailSeq++
	user := models.User{
		FullName: "Test " + role,
		Email:    fmt.Sprintf("%s-%d@test.local", role, emailSeq),
		Password: "irrelevant",
		Role:     role,
	}
	require.NoError(t, db.Create(&user).Error)
	return user
}

func createListing(t *testing.T, db *gorm.DB, owner models.User, price, deposit float64) models.Listing {
	t.Helper()
	property := models.Property{
		OwnerUserID: owner.ID,
		Address:     "1 Test St",
		City:        "Hanoi",
	}
	require.NoError(t, db.Create(&property).Error)

	listing := models.Listing{
		PropertyID:  &property.ID,
		OwnerUserID: owner.ID,
		Price:       price,
		Deposit:     deposit,
		Status:      "available",
	}
	require.NoError(t, db.Create(&listing).Error)
	return listing
}

func createPendingRequest(t *testing.T, db *gorm.DB, listing models.Listing, requester models.User) models.RentalRequest {
	t.Helper()
	request := models.RentalRequest{
		ListingID:       listing.ID,
		RequesterUserID: requester.ID,
		Status:          models.RequestStatusPending,
	}
	require.NoError(t, db.Create(&request).Error)
	return request
}

func createDraftContract(t *testing.T, db *gorm.DB, listing models.Listing, landlord models.User, tenants ...models.User) models.Contract {
	t.Helper()
	contract := models.Contract{
		ListingID:      listing.ID,
		LandlordUserID: landlord.ID,
		StartDate:      time.Now(),
		Rent:           listing.Price,
		Deposit:        listing.Deposit,
		Status:         models.ContractStatusDraft,
	}
	require.NoError(t, db.Create(&contract).Error)
	for _, tenant := range tenants {
		ct := models.ContractTenant{ContractID: contract.ID, TenantUserID: tenant.ID}
		require.NoError(t, db.Create(&ct).Error)
	}
	return contract
}
