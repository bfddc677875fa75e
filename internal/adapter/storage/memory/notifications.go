package memory

import (
	"context"
	"time"

	"investment-ledger/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type notificationRepo struct{ s *Store }

func (r notificationRepo) Create(_ context.Context, tx pgx.Tx, n *domain.Notification) error {
	r.s.write(tx, func() func() {
		undo := restore(r.s.notifications, n.ID)
		r.s.notifications[n.ID] = *n
		return undo
	})
	return nil
}

func (r notificationRepo) ListByUser(_ context.Context, userID uuid.UUID, limit int) ([]domain.Notification, error) {
	r.s.mu.RLock()
	out := []domain.Notification{}
	for _, n := range r.s.notifications {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	r.s.mu.RUnlock()
	newestFirst(out, func(n domain.Notification) time.Time { return n.CreatedAt })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r notificationRepo) SetRead(_ context.Context, userID, id uuid.UUID, isRead bool) (bool, error) {
	var found bool
	r.s.write(nil, func() func() {
		n, ok := r.s.notifications[id]
		if !ok || n.UserID != userID {
			return nil
		}
		found = true
		n.IsRead = isRead
		r.s.notifications[id] = n
		return nil
	})
	return found, nil
}

func (r notificationRepo) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	var changed int64
	r.s.write(nil, func() func() {
		for id, n := range r.s.notifications {
			if n.UserID == userID && !n.IsRead {
				n.IsRead = true
				r.s.notifications[id] = n
				changed++
			}
		}
		return nil
	})
	return changed, nil
}

type auditRepo struct{ s *Store }

func (r auditRepo) Create(_ context.Context, entry *domain.AuditLog) error {
	r.s.write(nil, func() func() {
		r.s.audit = append(r.s.audit, *entry)
		return nil
	})
	return nil
}

// AuditLogs returns a copy of the recorded audit entries.
func (s *Store) AuditLogs() []domain.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.AuditLog(nil), s.audit...)
}
