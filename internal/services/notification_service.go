package services

import (
	"errors"

	"gorm.io/gorm"

	apperrors "kvitto/internal/errors"
	"kvitto/internal/logger"
	"kvitto/internal/models"
	"kvitto/internal/pagination"
)

// notificationService manages in-app notification records.
type notificationService struct {
	db *gorm.DB
}

// NewNotificationService creates a new NotificationServicer.
func NewNotificationService(db *gorm.DB) NotificationServicer {
	return &notificationService{db: db}
}

// Notify records a notification for the user. It is fired from the side of
// another operation, so a failure here is logged and swallowed rather than
// failing the operation that triggered it.
func (s *notificationService) Notify(userID uint, message string) {
	if message == "" {
		return
	}
	n := &models.Notification{UserID: userID, Message: message}
	if err := s.db.Create(n).Error; err != nil {
		logger.Get().Errorw("failed to record notification", "user_id", userID, "error", err)
	}
}

// GetUserNotifications returns the user's notifications, newest first.
func (s *notificationService) GetUserNotifications(userID uint, page pagination.PageRequest) (*pagination.PageResponse[models.Notification], error) {
	page.Defaults()

	base := s.db.Model(&models.Notification{}).Where("user_id = ?", userID)

	var totalItems int64
	if err := base.Count(&totalItems).Error; err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	var notifications []models.Notification
	err := base.Order("created_at DESC, id DESC").
		Scopes(pagination.Paginate(page)).
		Find(&notifications).Error
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	result := pagination.NewPageResponse(notifications, page.Page, page.PageSize, totalItems)
	return &result, nil
}

// MarkRead marks one of the user's notifications as read. Marking an already
// read notification is a no-op.
func (s *notificationService) MarkRead(userID, notificationID uint) error {
	var n models.Notification
	if err := s.db.First(&n, notificationID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.ErrNotificationNotFound
		}
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if n.UserID != userID {
		return apperrors.ErrForbidden
	}

	if n.IsRead {
		return nil
	}
	if err := s.db.Model(&n).Update("is_read", true).Error; err != nil {
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return nil
}

// MarkAllRead marks every unread notification of the user as read and returns
// how many rows changed.
func (s *notificationService) MarkAllRead(userID uint) (int64, error) {
	res := s.db.Model(&models.Notification{}).
		Where("user_id = ? AND is_read = ?", userID, false).
		Update("is_read", true)
	if res.Error != nil {
		return 0, apperrors.Wrap(apperrors.ErrInternalServer, res.Error)
	}
	return res.RowsAffected, nil
}
