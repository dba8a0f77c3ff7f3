package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role model.Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == model.RoleAdmin
}

func requireAdmin(actor Actor) error {
	if !actor.IsAdmin() {
		return fmt.Errorf("%w: admin role required", apperrors.ErrForbidden)
	}
	return nil
}

func requireRole(actor Actor, role model.Role) error {
	if actor.Role != role {
		return fmt.Errorf("%w: %s role required", apperrors.ErrForbidden, role)
	}
	return nil
}

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", apperrors.ErrValidation, fmt.Sprintf(format, args...))
}

func orNop(log *zap.Logger) *zap.Logger {
	if log == nil {
		return zap.NewNop()
	}
	return log
}

// AverageRating returns the mean of ratings rounded to two decimals, and the
// number of ratings. No ratings give 0.
func AverageRating(ratings []int) (float64, int) {
	if len(ratings) == 0 {
		return 0, 0
	}
	var sum int64
	for _, r := range ratings {
		sum += int64(r)
	}
	avg := decimal.NewFromInt(sum).
		DivRound(decimal.NewFromInt(int64(len(ratings))), 4).
		Round(2)
	return avg.InexactFloat64(), len(ratings)
}

// recomputeRating refreshes an institute's aggregate from its counted reviews.
func recomputeRating(ctx context.Context, store repository.Store, instituteID uuid.UUID) error {
	ratings, err := store.Reviews().CountedRatings(ctx, instituteID)
	if err != nil {
		return fmt.Errorf("load ratings: %w", err)
	}
	avg, n := AverageRating(ratings)
	if err := store.Institutes().UpdateRating(ctx, instituteID, avg, n); err != nil {
		return fmt.Errorf("update rating: %w", err)
	}
	return nil
}
