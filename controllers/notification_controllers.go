package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/yeremiapane/restaurant-pos/models"
	"github.com/yeremiapane/restaurant-pos/utils"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	var notifs []models.Notification
	if err := nc.DB.Order("created_at DESC").Find(&notifs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All notifications", notifs)
}

// CreateNotification -> broadcast atau specific user
func (nc *NotificationController) CreateNotification(c *gin.Context) {
	var body struct {
		UserID  *uint  `json:"user_id"`
		Title   string `json:"title"`
		Message string `json:"message" binding:"required"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	notif := models.Notification{
		UserID:  body.UserID,
		Message: body.Message,
	}
	if body.Title != "" {
		notif.Title = &body.Title
	}

	if err := nc.DB.Create(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Notification created: %v", notif.Message)
	utils.RespondJSON(c, http.StatusCreated, "Notification created", notif)
}

// DeleteNotification
func (nc *NotificationController) DeleteNotification(c *gin.Context) {
	idStr := c.Param("notif_id")
	id, _ := strconv.Atoi(idStr)

	if err := nc.DB.Delete(&models.Notification{}, id).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification deleted", gin.H{"id": id})
}
