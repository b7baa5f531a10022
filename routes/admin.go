package routes

import (
	"time"

	"vinhousing-server/models"
	"vinhousing-server/storage"

	"github.com/kataras/iris/v12"
)

// GET /admin/stats
func AdminStats(ctx iris.Context) {
	var availableListings int64
	storage.DB.Model(&models.Listing{}).Where("status = ?", "available").Count(&availableListings)
	var pendingRequests int64
	storage.DB.Model(&models.RentalRequest{}).Where("status = ?", models.RequestStatusPending).Count(&pendingRequests)
	var pendingVerifications int64
	storage.DB.Model(&models.Verification{}).Where("status = ?", "pending").Count(&pendingVerifications)
	var openIssues int64
	storage.DB.Model(&models.IssueReport{}).
		Where("status NOT IN ?", []string{models.IssueStatusResolved, models.IssueStatusRejected}).
		Count(&openIssues)

	since7 := time.Now().AddDate(0, 0, -7)
	since30 := time.Now().AddDate(0, 0, -30)
	var newContracts7, newContracts30 int64
	storage.DB.Model(&models.Contract{}).Where("created_at >= ?", since7).Count(&newContracts7)
	storage.DB.Model(&models.Contract{}).Where("created_at >= ?", since30).Count(&newContracts30)

	ctx.JSON(iris.Map{
		"data": iris.Map{
			"available_listings":    availableListings,
			"pending_requests":      pendingRequests,
			"pending_verifications": pendingVerifications,
			"open_issues":           openIssues,
			"new_contracts_7d":      newContracts7,
			"new_contracts_30d":     newContracts30,
		},
		"meta":  iris.Map{},
		"links": iris.Map{},
	})
}

// GET /admin/activity
func AdminActivity(ctx iris.Context) {
	var logs []models.AuditLog
	storage.DB.Order("created_at DESC").Limit(100).Find(&logs)
	ctx.JSON(iris.Map{"data": logs, "meta": iris.Map{}, "links": iris.Map{}})
}
