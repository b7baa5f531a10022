package routes

import (
	"errors"
	"strconv"

	"vinhousing-server/models"
	"vinhousing-server/services"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreateIssueInput struct {
	ContractID  uint   `json:"contract_id" validate:"required"`
	Category    string `json:"category" validate:"required"`
	Severity    string `json:"severity" validate:"omitempty,oneof=low medium high critical"`
	Description string `json:"description" validate:"required"`
	SLAHours    int    `json:"sla_hours" validate:"omitempty,gt=0"`
}

func CreateIssue(ctx iris.Context) {
	var input CreateIssueInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	issue, err := issueService().Create(services.CreateIssueInput{
		ContractID:  input.ContractID,
		Category:    input.Category,
		Severity:    input.Severity,
		Description: input.Description,
		SLAHours:    input.SLAHours,
	}, actorFromCtx(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"issue": issue})
}

func ListIssues(ctx iris.Context) {
	page, perPage := pageParams(ctx)
	actor := actorFromCtx(ctx)

	query := storage.DB.Model(&models.IssueReport{})

	// Non-admins only see issues on contracts they are party to.
	if !actor.IsAdmin() {
		query = query.Where(
			"reporter_user_id = ? OR contract_id IN (?) OR contract_id IN (?)",
			actor.ID,
			storage.DB.Model(&models.Contract{}).Select("id").Where("landlord_user_id = ?", actor.ID),
			storage.DB.Model(&models.ContractTenant{}).Select("contract_id").Where("tenant_user_id = ?", actor.ID),
		)
	}
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if category := ctx.URLParam("category"); category != "" {
		query = query.Where("category = ?", category)
	}
	if contractID := ctx.URLParam("contract_id"); contractID != "" {
		query = query.Where("contract_id = ?", contractID)
	}

	var total int64
	query.Count(&total)

	var issues []models.IssueReport
	if err := query.Preload("Reporter").
		Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&issues).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, issues, page, perPage, total)
}

func GetIssue(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var issue models.IssueReport
	err := storage.DB.
		Preload("Reporter").Preload("Assignee").
		Preload("History", func(db *gorm.DB) *gorm.DB {
			return db.Order("issue_status_histories.changed_at ASC, issue_status_histories.id ASC")
		}).
		Preload("Attachments").
		First(&issue, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Issue not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"issue": issue})
}

type UpdateIssueStatusInput struct {
	Status         *string `json:"status"`
	AssigneeUserID *uint   `json:"assignee_user_id"`
}

func UpdateIssueStatus(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var input UpdateIssueStatusInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.Status == nil && input.AssigneeUserID == nil {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "Nothing to update", ctx)
		return
	}

	issue, err := issueService().UpdateStatus(id, services.IssuePatch{
		Status:         input.Status,
		AssigneeUserID: input.AssigneeUserID,
	}, actorFromCtx(ctx))
	if err != nil {
		handleServiceError(ctx, err)
		return
	}
	ctx.JSON(iris.Map{"issue": issue})
}

type AddIssueAttachmentInput struct {
	FileURL string `json:"file_url"`
	Data    string `json:"data"` // base64 image payload, uploaded for the caller
}

func AddIssueAttachment(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)
	actor := actorFromCtx(ctx)

	var input AddIssueAttachmentInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if input.FileURL == "" && input.Data == "" {
		utils.CreateError(iris.StatusBadRequest, "validation_error", "file_url or data is required", ctx)
		return
	}

	var issue models.IssueReport
	if err := storage.DB.First(&issue, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Issue not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	fileURL := input.FileURL
	if fileURL == "" {
		fileURL = storage.UploadBase64Image(input.Data, "issue_"+strconv.FormatUint(uint64(issue.ID), 10))
		if fileURL == "" {
			utils.CreateInternalServerError(ctx)
			return
		}
	}

	attachment := models.IssueAttachment{
		IssueID:    issue.ID,
		UploadedBy: actor.ID,
		FileURL:    fileURL,
	}
	if err := storage.DB.Create(&attachment).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"attachment": attachment})
}
