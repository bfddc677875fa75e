package memory

import (
	"context"
	"fmt"

	"investment-ledger/internal/core/domain"
	"investment-ledger/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

type userRepo struct{ s *Store }

func (r userRepo) Create(_ context.Context, tx pgx.Tx, u *domain.User) error {
	var err error
	r.s.write(tx, func() func() {
		for _, existing := range r.s.users {
			if existing.Email == u.Email || existing.MyReferrerCode == u.MyReferrerCode {
				err = fmt.Errorf("create user: %w", ports.ErrConflict)
				return nil
			}
		}
		undo := restore(r.s.users, u.ID)
		r.s.users[u.ID] = *u
		return undo
	})
	return err
}

func (r userRepo) get(match func(domain.User) bool) *domain.User {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, u := range r.s.users {
		if match(u) {
			out := u
			return &out
		}
	}
	return nil
}

func (r userRepo) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	return r.get(func(u domain.User) bool { return u.ID == id }), nil
}

func (r userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.get(func(u domain.User) bool { return u.Email == email }), nil
}

func (r userRepo) GetByIDForUpdate(ctx context.Context, _ pgx.Tx, id uuid.UUID) (*domain.User, error) {
	return r.GetByID(ctx, id)
}

func (r userRepo) GetByReferralCode(_ context.Context, _ pgx.Tx, code string) (*domain.User, error) {
	return r.get(func(u domain.User) bool { return u.MyReferrerCode == code }), nil
}

func (r userRepo) update(tx pgx.Tx, id uuid.UUID, fn func(*domain.User)) error {
	var err error
	r.s.write(tx, func() func() {
		u, ok := r.s.users[id]
		if !ok {
			err = fmt.Errorf("user %s not found", id)
			return nil
		}
		undo := restore(r.s.users, id)
		fn(&u)
		r.s.users[id] = u
		return undo
	})
	return err
}

func (r userRepo) IncrementReferrerCount(_ context.Context, tx pgx.Tx, id uuid.UUID) error {
	return r.update(tx, id, func(u *domain.User) { u.ReferrerCount++ })
}

func (r userRepo) AddReferrerEarnings(_ context.Context, tx pgx.Tx, id uuid.UUID, delta decimal.Decimal) error {
	return r.update(tx, id, func(u *domain.User) { u.ReferrerEarnings = u.ReferrerEarnings.Add(delta) })
}

func (r userRepo) SetReferrerEarnings(_ context.Context, tx pgx.Tx, id uuid.UUID, amount decimal.Decimal) error {
	return r.update(tx, id, func(u *domain.User) { u.ReferrerEarnings = amount })
}

func (r userRepo) SetPlan(_ context.Context, tx pgx.Tx, id uuid.UUID, name string, amount decimal.Decimal) error {
	return r.update(tx, id, func(u *domain.User) {
		u.PlanName = name
		u.PlanAmount = amount
	})
}

func (r userRepo) SetVerificationStatus(_ context.Context, tx pgx.Tx, id uuid.UUID, status domain.VerificationStatus) error {
	return r.update(tx, id, func(u *domain.User) { u.VerificationStatus = status })
}
