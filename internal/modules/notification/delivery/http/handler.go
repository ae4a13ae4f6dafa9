package handler

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"evergreenrx.com/pharmanotify/internal/entity"
	"evergreenrx.com/pharmanotify/internal/modules/notification/gateway"
	notifService "evergreenrx.com/pharmanotify/internal/modules/notification/service"
	"evergreenrx.com/pharmanotify/pkg/apperror"
	"evergreenrx.com/pharmanotify/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"gorm.io/gorm"
)

type NotificationHandler struct {
	service  notifService.NotificationService
	hub      *gateway.Hub
	upgrader websocket.Upgrader
}

func NewNotificationHandler(service notifService.NotificationService, hub *gateway.Hub) *NotificationHandler {
	return &NotificationHandler{
		service: service,
		hub:     hub,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS is enforced at the router level
			},
		},
	}
}

// REST Endpoints

func (h *NotificationHandler) GetNotifications(c *gin.Context) {
	limit := 50
	offset := 0
	if v, err := strconv.Atoi(c.DefaultQuery("limit", "50")); err == nil && v > 0 && v <= 200 {
		limit = v
	}
	if v, err := strconv.Atoi(c.DefaultQuery("offset", "0")); err == nil && v >= 0 {
		offset = v
	}

	notifications, err := h.service.List(c.Request.Context(), limit, offset)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": notifications})
}

func (h *NotificationHandler) UnreadCount(c *gin.Context) {
	count, err := h.service.UnreadCount(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"count": count})
}

func (h *NotificationHandler) MarkAsRead(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.MarkAsRead(c.Request.Context(), id); err != nil {
		response.ResponseError(c, translateNotFound(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
}

func (h *NotificationHandler) MarkAllAsRead(c *gin.Context) {
	if err := h.service.MarkAllAsRead(c.Request.Context()); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "all notifications marked as read"})
}

func (h *NotificationHandler) DeleteNotification(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.ResponseError(c, translateNotFound(err))
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "notification deleted"})
}

// WebSocket Endpoint

func (h *NotificationHandler) HandleWebSocket(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	// Admins join the shared room; plain staff sessions may still open a
	// socket for their own user room.
	isAdmin := false
	if v, ok := c.Get("user"); ok {
		if user, ok := v.(*entity.User); ok {
			isAdmin = user.Role.Name == entity.RoleAdmin
		}
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Printf("failed to upgrade websocket: %v", err)
		return
	}

	gateway.Serve(h.hub, conn, userID.String(), isAdmin)
}

func parseID(c *gin.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, apperror.ErrBadRequest
	}
	return uint(id), nil
}

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.ErrNotFound
	}
	return err
}
