package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"

	apperrors "edulist/internal/errors"
)

func TestTranslate(t *testing.T) {
	other := errors.New("connection refused")
	tests := []struct {
		name string
		in   error
		want error
	}{
		{"nil", nil, nil},
		{"not found", gorm.ErrRecordNotFound, apperrors.ErrReviewNotFound},
		{"wrapped not found", fmt.Errorf("query: %w", gorm.ErrRecordNotFound), apperrors.ErrReviewNotFound},
		{"duplicate key", gorm.ErrDuplicatedKey, apperrors.ErrDuplicateEntity},
		{"other", other, other},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, translate(tt.in, apperrors.ErrReviewNotFound))
		})
	}
}

func TestContainsPattern(t *testing.T) {
	assert.Equal(t, "%delhi%", containsPattern("  Delhi "))
	assert.Equal(t, `%50\% off\_now%`, containsPattern("50% OFF_now"))
}
