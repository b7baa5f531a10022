package routes

import (
	"errors"

	"vinhousing-server/models"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateVerificationInput struct {
	TargetType string `json:"target_type" validate:"required,oneof=user property listing"`
	TargetID   uint   `json:"target_id" validate:"required"`
	Note       string `json:"note"`
}

func CreateVerification(ctx iris.Context) {
	var input CreateVerificationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var pending int64
	storage.DB.Model(&models.Verification{}).
		Where("target_type = ? AND target_id = ? AND status = ?", input.TargetType, input.TargetID, "pending").
		Count(&pending)
	if pending > 0 {
		utils.JSONError(ctx, iris.StatusConflict, "conflict", "A verification request is already pending for this target")
		return
	}

	verification := models.Verification{
		TargetType: input.TargetType,
		TargetID:   input.TargetID,
		Status:     "pending",
		Note:       input.Note,
	}
	if err := storage.DB.Create(&verification).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"verification": verification})
}

func ListVerifications(ctx iris.Context) {
	page, perPage := pageParams(ctx)

	query := storage.DB.Model(&models.Verification{})
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if targetType := ctx.URLParam("target_type"); targetType != "" {
		query = query.Where("target_type = ?", targetType)
	}

	var total int64
	query.Count(&total)

	var verifications []models.Verification
	if err := query.Preload("Verifier").
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&verifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, verifications, page, perPage, total)
}

type ReviewVerificationInput struct {
	Status string `json:"status" validate:"required,oneof=approved rejected"`
	Note   string `json:"note"`
}

// ReviewVerification is admin-only; routing enforces the role.
func ReviewVerification(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var input ReviewVerificationInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var verification models.Verification
	if err := storage.DB.First(&verification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Verification not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	if verification.Status != "pending" {
		utils.CreateError(iris.StatusBadRequest, "invalid_state", "Verification has already been reviewed", ctx)
		return
	}

	actor := actorFromCtx(ctx)
	before := verification

	verification.Status = input.Status
	verification.VerifierUserID = &actor.ID
	if input.Note != "" {
		verification.Note = input.Note
	}
	if err := storage.DB.Save(&verification).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	utils.Audit(ctx, "verification.reviewed", "verification", verification.ID, before, verification)
	ctx.JSON(iris.Map{"verification": verification})
}
