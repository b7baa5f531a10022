package routes

import (
	"errors"

	"vinhousing-server/models"
	"vinhousing-server/storage"
	"vinhousing-server/utils"

	"github.com/kataras/iris/v12"
	"gorm.io/gorm"
)

func ListNotifications(ctx iris.Context) {
	page, perPage := pageParams(ctx)
	actor := actorFromCtx(ctx)

	query := storage.DB.Model(&models.Notification{}).Where("user_id = ?", actor.ID)
	if ctx.URLParam("unread") == "true" {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	query.Count(&total)

	var notifications []models.Notification
	if err := query.Order("created_at DESC").
		Offset((page - 1) * perPage).Limit(perPage).
		Find(&notifications).Error; err != nil {
		utils.CreateInternalServerError(ctx)
		return
	}
	utils.JSONPage(ctx, notifications, page, perPage, total)
}

func MarkNotificationRead(ctx iris.Context) {
	id := ctx.Params().GetUintDefault("id", 0)
	actor := actorFromCtx(ctx)

	var notification models.Notification
	if err := storage.DB.First(&notification, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.JSONError(ctx, iris.StatusNotFound, "not_found", "Notification not found")
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}
	if notification.UserID != actor.ID {
		utils.JSONError(ctx, iris.StatusForbidden, "forbidden", "Not your notification")
		return
	}

	if !notification.IsRead {
		if err := storage.DB.Model(&notification).Update("is_read", true).Error; err != nil {
			utils.CreateInternalServerError(ctx)
			return
		}
	}
	ctx.JSON(iris.Map{"notification": notification})
}
