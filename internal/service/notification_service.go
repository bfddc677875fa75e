package service

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"
	"investment-ledger/pkg/apperror"

	"github.com/google/uuid"
)

const (
	defaultNotificationLimit = 50
	maxNotificationLimit     = 200
)

// NotificationServiceImpl implements ports.NotificationService.
type NotificationServiceImpl struct {
	repo ports.NotificationRepository
}

// NewNotificationService creates a new NotificationServiceImpl.
func NewNotificationService(repo ports.NotificationRepository) *NotificationServiceImpl {
	return &NotificationServiceImpl{repo: repo}
}

// List returns the newest notifications first. A limit outside (0, 200] is clamped.
func (s *NotificationServiceImpl) List(ctx context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	if limit <= 0 {
		limit = defaultNotificationLimit
	}
	if limit > maxNotificationLimit {
		limit = maxNotificationLimit
	}
	items, err := s.repo.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("list notifications: %w", err))
	}
	return items, nil
}

func (s *NotificationServiceImpl) SetRead(ctx context.Context, userID, id uuid.UUID, isRead bool) error {
	ok, err := s.repo.SetRead(ctx, userID, id, isRead)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("set notification read: %w", err))
	}
	if !ok {
		return apperror.ErrNotFound("Notification")
	}
	return nil
}

// MarkAllRead returns how many notifications changed.
func (s *NotificationServiceImpl) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	n, err := s.repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperror.InternalError(fmt.Errorf("mark notifications read: %w", err))
	}
	return n, nil
}
