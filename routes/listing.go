package routes

import (
	"errors"
	"time"

	"vinhousing-server/models"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type CreateListingInput struct {
	PropertyID    *uint          `json:"property_id"`
	RoomID        *uint          `json:"room_id"`
	Price         float64        `json:"price" validate:"required,gt=0"`
	Deposit       float64        `json:"deposit" validate:"gte=0"`
	AvailableFrom *time.Time     `json:"available_from"`
	Features      datatypes.JSON `json:"features"`
}

func CreateListing(ctx iris.Context) {
	var input CreateListingInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}
	if err := utils.Validate.Struct(input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	// Exactly one of property_id / room_id
	if (input.PropertyID == nil) == (input.RoomID == nil) {
		utils.JSONError(ctx, iris.StatusBadRequest, "validation_error", "Exactly one of property_id or room_id must be provided")
		return
	}

	userID := ctx.Values().Get("userID").(uint)
	userRole, _ := ctx.Values().Get("userRole").(string)

	// Resolve ownership through the property
	var property models.Property
	if input.PropertyID != nil {
		if err := storage.DB.First(&property, *input.PropertyID).Error; err != nil {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Property not found")
			return
		}
	} else {
		var room models.Room
		if err := storage.DB.First(&room, *input.RoomID).Error; err != nil {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Room not found")
			return
		}
		if err := storage.DB.First(&property, room.PropertyID).Error; err != nil {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Property not found")
			return
		}
	}
	if property.OwnerUserID != userID && userRole != "admin" {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "You do not own this property")
		return
	}

	listing := models.Listing{
		PropertyID:    input.PropertyID,
		RoomID:        input.RoomID,
		OwnerUserID:   property.OwnerUserID,
		Price:         input.Price,
		Deposit:       input.Deposit,
		AvailableFrom: input.AvailableFrom,
		Status:        "available",
		Features:      input.Features,
	}
	if err := storage.DB.Create(&listing).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.StatusCode(iris.StatusCreated)
	ctx.JSON(iris.Map{"listing": listing})
}

func ListListings(ctx iris.Context) {
	page, perPage := pageParams(ctx)

	query := storage.DB.Model(&models.Listing{})
	if status := ctx.URLParam("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if ownerID := ctx.URLParam("owner_id"); ownerID != "" {
		query = query.Where("owner_user_id = ?", ownerID)
	}
	if minPrice := ctx.URLParam("min_price"); minPrice != "" {
		query = query.Where("price >= ?", minPrice)
	}
	if maxPrice := ctx.URLParam("max_price"); maxPrice != "" {
		query = query.Where("price <= ?", maxPrice)
	}

	var total int64
	query.Count(&total)

	var listings []models.Listing
	if err := query.Preload("Property").Preload("Room").Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&listings).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, listings, page, perPage, total)
}

func GetListing(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var listing models.Listing
	if err := storage.DB.Preload("Property").Preload("Room").Preload("Owner").First(&listing, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Listing not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	ctx.JSON(iris.Map{"listing": listing})
}

func UpdateListing(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)

	var listing models.Listing
	if err := storage.DB.First(&listing, id).Error; err != nil {
		utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Listing not found")
		return
	}

	userID := ctx.Values().Get("userID").(uint)
	userRole, _ := ctx.Values().Get("userRole").(string)
	if listing.OwnerUserID != userID && userRole != "admin" {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "You do not own this listing")
		return
	}

	var input struct {
		Price         *float64        `json:"price"`
		Deposit       *float64        `json:"deposit"`
		AvailableFrom *time.Time      `json:"available_from"`
		Status        *string         `json:"status"`
		Features      *datatypes.JSON `json:"features"`
	}
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	updates := map[string]interface{}{}
	if input.Price != nil {
		if *input.Price <= 0 {
			utils.JSONError(ctx, iris.StatusBadRequest, "validation_error", "price must be positive")
			return
		}
		updates["price"] = *input.Price
	}
	if input.Deposit != nil {
		if *input.Deposit < 0 {
			utils.JSONError(ctx, iris.StatusBadRequest, "validation_error", "deposit must be non-negative")
			return
		}
		updates["deposit"] = *input.Deposit
	}
	if input.AvailableFrom != nil {
		updates["available_from"] = *input.AvailableFrom
	}
	if input.Status != nil {
		switch *input.Status {
		case "available", "rented", "inactive":
			updates["status"] = *input.Status
		default:
			utils.JSONError(ctx, iris.StatusBadRequest, "validation_error", "Invalid listing status: "+*input.Status)
			return
		}
	}
	if input.Features != nil {
		updates["features"] = *input.Features
	}

	if len(updates) > 0 {
		if err := storage.DB.Model(&listing).Updates(updates).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.JSON(iris.Map{"listing": listing})
}
