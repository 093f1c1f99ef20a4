package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mravi/bloodconnect/internal/app/models/dto"
	"github.com/mravi/bloodconnect/internal/app/services"
	"github.com/mravi/bloodconnect/internal/middleware"
	"github.com/mravi/bloodconnect/internal/pkg/helpers"
)

// NotificationController handles the in-app notification inbox
type NotificationController struct {
	notificationService services.NotificationService
}

// NewNotificationController creates a new NotificationController
func NewNotificationController(notificationService services.NotificationService) *NotificationController {
	return &NotificationController{
		notificationService: notificationService,
	}
}

// List returns the authenticated user's notifications
// @Summary List own notifications
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param unread query bool false "Only unread notifications"
// @Param page query int false "Page number (default: 1)"
// @Param size query int false "Page size (default: 10)"
// @Success 200 {object} dto.APIResponse{data=dto.PagedResponse} "Notifications"
// @Router /notifications [get]
func (c *NotificationController) List(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	unreadOnly, _ := strconv.ParseBool(ctx.DefaultQuery("unread", "false"))
	page, size := helpers.ParsePaginationParams(ctx)

	response, err := c.notificationService.ListForUser(ctx, userID, unreadOnly, page, size)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(response))
}

// UnreadCount returns the number of unread notifications
// @Summary Get unread notification count
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse{data=dto.UnreadCountResponse} "Unread count"
// @Router /notifications/unread-count [get]
func (c *NotificationController) UnreadCount(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	count, err := c.notificationService.UnreadCount(ctx, userID)
	if err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(dto.UnreadCountResponse{Count: count}))
}

// MarkRead marks one notification as read
// @Summary Mark a notification as read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Param id path string true "Notification ID"
// @Success 200 {object} dto.APIResponse "Marked read"
// @Failure 404 {object} dto.ErrorResponse "Notification not found"
// @Router /notifications/{id}/read [put]
func (c *NotificationController) MarkRead(ctx *gin.Context) {
	id, ok := parseUUIDParam(ctx, "id")
	if !ok {
		return
	}
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	if err := c.notificationService.MarkRead(ctx, id, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"message": "Notification marked as read"}))
}

// MarkAllRead marks every unread notification as read
// @Summary Mark all notifications as read
// @Tags notifications
// @Security BearerAuth
// @Produce json
// @Success 200 {object} dto.APIResponse "All marked read"
// @Router /notifications/read-all [put]
func (c *NotificationController) MarkAllRead(ctx *gin.Context) {
	userID, ok := requireUserID(ctx)
	if !ok {
		return
	}

	if err := c.notificationService.MarkAllRead(ctx, userID); err != nil {
		middleware.HandleAPIError(ctx, err)
		return
	}

	ctx.JSON(http.StatusOK, dto.NewSuccessResponse(gin.H{"message": "All notifications marked as read"}))
}
