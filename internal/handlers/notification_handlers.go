package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"eventmarket_app/internal/models"
	"eventmarket_app/internal/services"
)

type NotificationHandler struct {
	db    *gorm.DB
	cache *services.RedisCache
}

func NewNotificationHandler(db *gorm.DB, cache *services.RedisCache) *NotificationHandler {
	return &NotificationHandler{db: db, cache: cache}
}

// ListNotifications returns the authenticated user's notification feed,
// newest first
func (h *NotificationHandler) ListNotifications(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	fetch := func() ([]models.Notification, error) {
		var rows []models.Notification
		err := h.db.Where("user_id = ?", user.ID).Order("created_at desc").Limit(50).Find(&rows).Error
		return rows, err
	}

	var notifications []models.Notification
	if h.cache != nil {
		cacheKey := fmt.Sprintf("notifications:user:%d", user.ID)
		notifications, err = services.GetOrSet(h.cache, c.Request().Context(), cacheKey, 30*time.Second, fetch)
	} else {
		notifications, err = fetch()
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch notifications")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"notifications": notifications,
	})
}

// MarkNotificationRead marks one of the user's notifications as read
func (h *NotificationHandler) MarkNotificationRead(c echo.Context) error {
	user, err := h.currentUser(c)
	if err != nil {
		return err
	}

	var notif models.Notification
	if err := h.db.Where("id = ? AND user_id = ?", c.Param("id"), user.ID).First(&notif).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Notification not found")
	}

	now := time.Now()
	if err := h.db.Model(&notif).Update("read_at", &now).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to update notification")
	}

	// Drop the cached feed so the change is visible immediately
	if h.cache != nil {
		_ = h.cache.Delete(c.Request().Context(), fmt.Sprintf("notifications:user:%d", user.ID))
	}

	return c.JSON(http.StatusOK, notif)
}

func (h *NotificationHandler) currentUser(c echo.Context) (*models.User, error) {
	uid, _ := c.Get("userUID").(string)
	if uid == "" {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Not authenticated")
	}

	var user models.User
	if err := h.db.Where("firebase_uid = ?", uid).First(&user).Error; err != nil {
		return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unknown user")
	}
	return &user, nil
}
