package routes

import (
	"errors"

	"vinhousing-server/models"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

type CreatePropertyInput struct {
	OrgID       *uint  `json:"org_id"`
	Address     string `json:"address" validate:"required,max=512"`
	City        string `json:"city" validate:"max=128"`
	District    string `json:"district" validate:"max=128"`
	Description string `json:"description"`
}

func CreateProperty(ctx iris.Context) {
	var input CreatePropertyInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	userID := ctx.Values().Get("userID").(uint)

	property := models.Property{
		OwnerUserID: userID,
		OrgID:       input.OrgID,
		Address:     input.Address,
		City:        input.City,
		District:    input.District,
		Description: input.Description,
	}
	if err := storage.DB.Create(&property).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"property": property})
}

func ListProperties(ctx iris.Context) {
	page, perPage := pageParams(ctx)

	query := storage.DB.Model(&models.Property{})
	if ownerID := ctx.URLParam("owner_id"); ownerID != "" {
		query = query.Where("owner_user_id = ?", ownerID)
	}
	if orgID := ctx.URLParam("org_id"); orgID != "" {
		query = query.Where("org_id = ?", orgID)
	}
	if city := ctx.URLParam("city"); city != "" {
		query = query.Where("lower(city) = lower(?)", city)
	}

	var total int64
	query.Count(&total)

	var properties []models.Property
	if err := query.Preload("Rooms").Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&properties).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, properties, page, perPage, total)
}

func GetProperty(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var property models.Property
	if err := storage.DB.Preload("Rooms").Preload("Owner").First(&property, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Property not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"property": property})
}

func UpdateProperty(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var property models.Property
	if err := storage.DB.First(&property, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Property not found")
		return
	}

	userID := ctx.Values().Get("userID").(uint)
	userRole, _ := ctx.Values().Get("userRole").(string)
	if property.OwnerUserID != userID && userRole != "admin" {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "You do not own this property")
		return
	}

	var input struct {
		Address     *string `json:"address"`
		City        *string `json:"city"`
		District    *string `json:"district"`
		Description *string `json:"description"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Address != nil {
		updates["address"] = *input.Address
	}
	if input.City != nil {
		updates["city"] = *input.City
	}
	if input.District != nil {
		updates["district"] = *input.District
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(&property).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.JSON(iris.Map{"property": property})
}

// CreateRoom adds a rentable room to a property (shared housing).
func CreateRoom(ctx iris.Context) {
	propertyID := ctx.Params().GetUintDefault("id", 0)

	var property models.Property
	if err := storage.DB.First(&property, propertyID).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Property not found")
		return
	}

	userID := ctx.Values().Get("userID").(uint)
	userRole, _ := ctx.Values().Get("userRole").(string)
	if property.OwnerUserID != userID && userRole != "admin" {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "You do not own this property")
		return
	}

	var input struct {
		RoomName  string  `json:"room_name" validate:"required,max=128"`
		SizeSqm   float64 `json:"size_sqm" validate:"gte=0"`
		Furnished bool    `json:"furnished"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	room := models.Room{
		PropertyID: propertyID,
		RoomName:   input.RoomName,
		SizeSqm:    input.SizeSqm,
		Furnished:  input.Furnished,
	}
	if err := storage.DB.Create(&room).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"room": room})
}
