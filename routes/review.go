package routes

import (
	"errors"

	"vinhousing-server/models"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"golang.org/x/exp/slices"
	"gorm.io/gorm"
)

type CreateReviewInput struct {
	ContractID uint   `json:"contract_id" validate:"required"`
	TargetType string `json:"target_type" validate:"required,oneof=user listing"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Rating     int    `json:"rating" validate:"required,min=1,max=5"`
	Comment    string `json:"comment"`
}

func CreateReview(ctx iris.Context) {
	var input CreateReviewInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	actor := actorFromCtx(ctx)

	var contract models.Contract
	if err := storage.DB.First(&contract, input.ContractID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Contract not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	// Reviews are gated on a completed lease relationship.
	if contract.Status != models.ContractStatusSigned && contract.Status != models.ContractStatusActive && contract.Status != models.ContractStatusTerminated {
		utils.CreateError(iris.StatusBadRequest, "invalid_state", "Contract is not reviewable yet", ctx)
		return
	}

	var tenantIDs []uint
	storage.DB.Model(&models.ContractTenant{}).
		Where("contract_id = ?", contract.ID).
		Pluck("tenant_user_id", &tenantIDs)
	if actor.ID != contract.LandlordUserID && !slices.Contains(tenantIDs, actor.ID) {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "Only contract parties can leave reviews")
		return
	}

	var existing int64
	storage.DB.Model(&models.Review{}).
		Where("contract_id = ? AND reviewer_user_id = ? AND target_type = ? AND target_id = ?",
			contract.ID, actor.ID, input.TargetType, input.TargetID).
		Count(&existing)
	if existing > 0 {
		utils.JSONError(ctx, iris.StatusConflict, "conflict", "You have already reviewed this target for this contract")
		return
	}

	review := models.Review{
		ContractID:     contract.ID,
		ReviewerUserID: actor.ID,
		TargetType:     input.TargetType,
		TargetID:       input.TargetID,
		Rating:         input.Rating,
		Comment:        input.Comment,
	}
	if err := storage.DB.Create(&review).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"review": review})
}

func ListReviews(ctx iris.Context) {
	page, perPage := pageParams(ctx)

	query := storage.DB.Model(&models.Review{})
	if targetType := ctx.URLParam("target_type"); targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}
	if targetID := ctx.URLParam("target_id"); targetID != "" {
		query = query.Where("target_id = ?", targetID)
	}
	if contractID := ctx.URLParam("contract_id"); contractID != "" {
		query = query.Where("contract_id = ?", contractID)
	}

	var total int64
	query.Count(&total)

	var reviews []models.Review
	if err := query.Preload("Reviewer").
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&reviews).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, reviews, page, perPage, total)
}
