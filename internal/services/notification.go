package services

import (
	"encoding/json"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/synergy-dev/synergy/internal/apperr"
	"github.com/synergy-dev/synergy/internal/models"
	"github.com/synergy-dev/synergy/internal/types"
)

const DefaultNotificationLimit = 20

type NotificationService struct {
	db     *gorm.DB
	logger *logrus.Logger
}

func NewNotificationService(db *gorm.DB, logger *logrus.Logger) *NotificationService {
	return &NotificationService{db: db, logger: logger}
}

// Dispatch creates one notification record. A dispatch failure must never fail
// the mutation that triggered it, so errors are logged and swallowed here.
func (s *NotificationService) Dispatch(notificationType models.NotificationType, recipientID uint, message string, data map[string]any) {
	var payload []byte
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			s.logger.WithError(err).WithField("type", notificationType).Error("failed to encode notification payload")
		} else {
			payload = encoded
		}
	}

	notification := models.Notification{
		UserID:  recipientID,
		Type:    notificationType,
		Message: message,
		Data:    payload,
	}

	if err := s.db.Create(&notification).Error; err != nil {
		s.logger.WithError(err).WithFields(logrus.Fields{
			"type":      notificationType,
			"recipient": recipientID,
		}).Error("notification dispatch failed")
	}
}

// ListForUser returns the recipient's notifications newest-first, optionally
// filtered by read state.
func (s *NotificationService) ListForUser(userID uint, read *bool, page, limit int) ([]models.Notification, types.PaginationMeta, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultNotificationLimit
	}

	forUser := func() *gorm.DB {
		query := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)
		if read != nil {
			query = query.Where("read = ?", *read)
		}
		return query
	}

	var total int64
	if err := forUser().Count(&total).Error; err != nil {
		return nil, types.PaginationMeta{}, err
	}

	var notifications []models.Notification
	err := forUser().
		Order("created_at DESC, id DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Find(&notifications).Error
	if err != nil {
		return nil, types.PaginationMeta{}, err
	}

	return notifications, types.NewPaginationMeta(page, limit, total), nil
}

func (s *NotificationService) UnreadCount(userID uint) (int64, error) {
	var count int64
	err := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Count(&count).Error
	return count, err
}

// MarkRead flips the read flag. Ownership is part of the lookup predicate, so
// a notification belonging to someone else is indistinguishable from a missing
// one.
func (s *NotificationService) MarkRead(notificationID, userID uint) error {
	result := s.db.Model(&models.Notification{}).
		Where("id = ? AND user_id = ?", notificationID, userID).
		Update("read", true)

	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return apperr.NotFound("Notification not found")
	}

	return nil
}

// MarkAllRead is idempotent: already-read rows are untouched.
func (s *NotificationService) MarkAllRead(userID uint) error {
	return s.db.Model(&models.Notification{}).
		Where("user_id = ? AND read = ?", userID, false).
		Update("read", true).Error
}
