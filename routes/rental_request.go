package routes

import (
	"errors"
	"time"

	"vinhousing-server/models"
	"vinhousing-server/services"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateRentalRequestInput struct {
	ListingID     uint       `json:"listing_id" validate:"required"`
	Message       string     `json:"message" validate:"max=2000"`
	DesiredMoveIn *time.Time `json:"desired_move_in"`
}

func CreateRentalRequest(ctx iris.Context) {
	var input CreateRentalRequestInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	request, err := rentalRequestService().Create(services.CreateRequestInput{
		ListingID:     input.ListingID,
		Message:       input.Message,
		DesiredMoveIn: input.DesiredMoveIn,
	}, actorFromCtx(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"rental_request": request})
}

func ListRentalRequests(ctx iris.Context) {
	page, perPage := pageParams(ctx)
	actor := actorFromCtx(ctx)

	query := storage.DB.Model(&models.RentalRequest{})

	// Non-admins only see requests they sent or received
	if !actor.IsAdmin() {
		query = query.Where(
			"requester_user_id = ? OR listing_id IN (?)",
			actor.ID,
			storage.DB.Model(&models.Listing{}).Select("id").Where("owner_user_id = ?", actor.ID),
		)
	}
	if listingID := ctx.URLParam("listing_id"); listingID != "" {
		query = query.Where("listing_id = ?", listingID)
	}
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	query.Count(&total)

	var requests []models.RentalRequest
	if err := query.Preload("Listing").Preload("Requester").Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&requests).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, requests, page, perPage, total)
}

func GetRentalRequest(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var request models.RentalRequest
	if err := storage.DB.Preload("Listing").Preload("Requester").First(&request, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Rental request not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"rental_request": request})
}

type UpdateRentalRequestStatusInput struct {
	Status string `json:"status" validate:"required,oneof=accepted rejected cancelled"`
}

func UpdateRentalRequestStatus(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var input UpdateRentalRequestStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	request, err := rentalRequestService().Resolve(id, input.Status, actorFromCtx(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"rental_request": request})
}
