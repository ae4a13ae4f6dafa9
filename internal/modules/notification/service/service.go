package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"evergreenrx.com/pharmanotify/internal/alert"
	"evergreenrx.com/pharmanotify/internal/entity"
	notifRepo "evergreenrx.com/pharmanotify/internal/modules/notification/repository"
	"github.com/redis/go-redis/v9"
)

// ChannelAdmin is the Redis pub/sub channel every admin session listens on.
const ChannelAdmin = "notifications:admin"

// ChannelForUser returns the per-user pub/sub channel.
func ChannelForUser(userID string) string {
	return fmt.Sprintf("notifications:user:%s", userID)
}

type NotificationService interface {
	Create(ctx context.Context, notification *entity.Notification) error
	List(ctx context.Context, limit, offset int) ([]entity.Notification, error)
	MarkAsRead(ctx context.Context, id uint) error
	MarkAllAsRead(ctx context.Context) error
	Delete(ctx context.Context, id uint) error
	UnreadCount(ctx context.Context) (int64, error)
}

type notificationService struct {
	repo        notifRepo.NotificationRepository
	redisClient *redis.Client
	mailer      *alert.Mailer
}

func NewNotificationService(repo notifRepo.NotificationRepository, redisClient *redis.Client, mailer *alert.Mailer) NotificationService {
	return &notificationService{
		repo:        repo,
		redisClient: redisClient,
		mailer:      mailer,
	}
}

func (s *notificationService) Create(ctx context.Context, notification *entity.Notification) error {
	// 1. Save to DB (assigns ID and CreatedAt)
	if err := s.repo.Create(ctx, notification); err != nil {
		return err
	}

	// 2. Publish to Redis if Redis is available
	if s.redisClient != nil {
		payload, err := json.Marshal(notification)
		if err == nil {
			s.redisClient.Publish(ctx, ChannelAdmin, payload)
		}
	}

	// 3. High-severity types additionally page the on-call inbox. Mail
	// failures must never surface to the caller.
	if s.mailer != nil && isHighSeverity(notification.Type) {
		go func(n entity.Notification) {
			subject := fmt.Sprintf("[EvergreenRx] %s: %s", n.Type, n.Title)
			if err := s.mailer.Send(subject, n.Message); err != nil {
				log.Printf("alert mail failed: %v", err)
			}
		}(*notification)
	}

	return nil
}

func isHighSeverity(notifType string) bool {
	return notifType == entity.NotifTypePayment || notifType == entity.NotifTypeInventory
}

func (s *notificationService) List(ctx context.Context, limit, offset int) ([]entity.Notification, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *notificationService) MarkAsRead(ctx context.Context, id uint) error {
	return s.repo.MarkAsRead(ctx, id)
}

func (s *notificationService) MarkAllAsRead(ctx context.Context) error {
	return s.repo.MarkAllAsRead(ctx)
}

func (s *notificationService) Delete(ctx context.Context, id uint) error {
	return s.repo.Delete(ctx, id)
}

func (s *notificationService) UnreadCount(ctx context.Context) (int64, error) {
	return s.repo.CountUnread(ctx)
}
