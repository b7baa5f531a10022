package routes

import (
	"errors"

	"vinhousing-server/models"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

// CreateOrganization creates a new organization owned by the caller
func CreateOrganization(ctx iris.Context) {
	var input struct {
		Name        string `json:"name" validate:"required,max=256"`
		OrgType     string `json:"org_type" validate:"omitempty,oneof=agency landlord_company university"`
		Description string `json:"description"`
		Website     string `json:"website"`
		Phone       string `json:"phone"`
		Email       string `json:"email" validate:"omitempty,email"`
		Address     string `json:"address"`
		City        string `json:"city"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	userID := ctx.Values().Get("userID").(uint)

	organization := models.Organization{
		Name:        input.Name,
		OrgType:     input.OrgType,
		Description: input.Description,
		Website:     input.Website,
		Phone:       input.Phone,
		Email:       input.Email,
		Address:     input.Address,
		City:        input.City,
		OwnerUserID: userID,
	}
	if err := storage.DB.Create(&organization).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	// The owner is always affiliated as a manager
	affiliation := models.UserAffiliation{
		OrgID:     organization.ID,
		UserID:    userID,
		RoleInOrg: "manager",
	}
	if err := storage.DB.Create(&affiliation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"organization": organization})
}

func ListOrganizations(ctx iris.Context) {
	page, perPage := pageParams(ctx)

	query := storage.DB.Model(&models.Organization{})
	if orgType := ctx.URLParam("org_type"); orgType != "" {
		query = query.Where("org_type = ?", orgType)
	}

	var total int64
	query.Count(&total)

	var organizations []models.Organization
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&organizations).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, organizations, page, perPage, total)
}

func GetOrganization(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var organization models.Organization
	if err := storage.DB.Preload("Affiliations").Preload("Affiliations.User").First(&organization, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Organization not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"organization": organization})
}

// AddAffiliation links a user to an organization; joining twice is a conflict.
func AddAffiliation(ctx iris.Context) {
	orgID := ctx.Params().GetUintDefault("id", 0)

	var input struct {
		UserID    uint   `json:"user_id" validate:"required"`
		RoleInOrg string `json:"role_in_org" validate:"omitempty,oneof=member manager"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	var organization models.Organization
	if err := storage.DB.First(&organization, orgID).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Organization not found")
		return
	}

	callerID := ctx.Values().Get("userID").(uint)
	callerRole, _ := ctx.Values().Get("userRole").(string)
	if organization.OwnerUserID != callerID && callerRole != "admin" {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "Only the organization owner can add members")
		return
	}

	var existing int64
	storage.DB.Model(&models.UserAffiliation{}).
		Where("org_id = ? AND user_id = ?", orgID, input.UserID).
		Count(&existing)
	if existing > 0 {
		utils.JSONError(ctx, iris.StatusConflict, "conflict", "User is already affiliated with this organization")
		return
	}

	roleInOrg := input.RoleInOrg
	if roleInOrg == "" {
		roleInOrg = "member"
	}
	affiliation := models.UserAffiliation{OrgID: orgID, UserID: input.UserID, RoleInOrg: roleInOrg}
	if err := storage.DB.Create(&affiliation).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"affiliation": affiliation})
}
