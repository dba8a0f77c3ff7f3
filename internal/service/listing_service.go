package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"edulist/internal/cache"
	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

const (
	DefaultPageSize = 12
	MaxPageSize     = 100

	DefaultFeaturedLimit = 10
	MaxFeaturedLimit     = 50

	// DefaultFeaturedTTL is how long the featured listing stays cached.
	DefaultFeaturedTTL = 5 * time.Minute

	featuredCacheKey = "institutes:featured"
)

// InstituteQuery is a public listing request. Page and PageSize are
// normalised: page defaults to 1, page size to DefaultPageSize capped at
// MaxPageSize.
type InstituteQuery struct {
	Search    string
	Category  string
	City      string
	MinRating float64
	Page      int
	PageSize  int
}

// InstitutePage is one page of a listing.
type InstitutePage struct {
	Institutes []model.Institute `json:"institutes"`
	Total      int64             `json:"total"`
	Page       int               `json:"page"`
	PageSize   int               `json:"page_size"`
	TotalPages int               `json:"total_pages"`
}

// InstituteDetail is the public view of one institute.
type InstituteDetail struct {
	*model.Institute
	Courses []model.Course `json:"courses"`
	Reviews []model.Review `json:"reviews"`
}

// ListingService serves public institute listings.
type ListingService interface {
	ListInstitutes(ctx context.Context, q InstituteQuery) (*InstitutePage, error)
	// AdminListInstitutes lists institutes of any status; an empty status
	// matches all of them.
	AdminListInstitutes(ctx context.Context, actor Actor, status string, q InstituteQuery) (*InstitutePage, error)
	GetFeatured(ctx context.Context, limit int) ([]model.Institute, error)
	GetInstitute(ctx context.Context, id uuid.UUID) (*InstituteDetail, error)
}

type listingService struct {
	store repository.Store
	cache cache.Cache
	ttl   time.Duration
	log   *zap.Logger
}

// NewListingService creates a listing service. A non-positive ttl falls back
// to DefaultFeaturedTTL.
func NewListingService(store repository.Store, cache cache.Cache, ttl time.Duration, log *zap.Logger) ListingService {
	if ttl <= 0 {
		ttl = DefaultFeaturedTTL
	}
	return &listingService{store: store, cache: cache, ttl: ttl, log: orNop(log)}
}

func (s *listingService) ListInstitutes(ctx context.Context, q InstituteQuery) (*InstitutePage, error) {
	return s.list(ctx, model.StatusApproved, q)
}

func (s *listingService) AdminListInstitutes(ctx context.Context, actor Actor, status string, q InstituteQuery) (*InstitutePage, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	var st model.Status
	if strings.TrimSpace(status) != "" {
		parsed, ok := model.ParseStatus(status)
		if !ok {
			return nil, fmt.Errorf("%w: %q", apperrors.ErrInvalidStatus, status)
		}
		st = parsed
	}
	return s.list(ctx, st, q)
}

func (s *listingService) list(ctx context.Context, status model.Status, q InstituteQuery) (*InstitutePage, error) {
	filter, err := buildFilter(q)
	if err != nil {
		return nil, err
	}
	filter.Status = status

	page, pageSize := normalizePage(q.Page, q.PageSize)
	total, err := s.store.Institutes().Count(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("count institutes: %w", err)
	}

	filter.Offset = (page - 1) * pageSize
	filter.Limit = pageSize
	items, err := s.store.Institutes().List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("list institutes: %w", err)
	}

	return &InstitutePage{
		Institutes: nonNil(items),
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages(total, pageSize),
	}, nil
}

func buildFilter(q InstituteQuery) (repository.InstituteFilter, error) {
	filter := repository.InstituteFilter{
		Search: strings.TrimSpace(q.Search),
		City:   strings.TrimSpace(q.City),
	}
	if c := strings.ToLower(strings.TrimSpace(q.Category)); c != "" {
		category := model.Category(c)
		if !category.Valid() {
			return filter, validationError("unknown category %q", q.Category)
		}
		filter.Category = category
	}
	if q.MinRating < 0 || q.MinRating > model.MaxRating {
		return filter, validationError("min rating must be between 0 and %d", model.MaxRating)
	}
	filter.MinRating = q.MinRating
	return filter, nil
}

func normalizePage(page, pageSize int) (int, int) {
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageSize > MaxPageSize {
		pageSize = MaxPageSize
	}
	return page, pageSize
}

func totalPages(total int64, pageSize int) int {
	if total == 0 {
		return 0
	}
	return int((total + int64(pageSize) - 1) / int64(pageSize))
}

// GetFeatured returns approved featured institutes, newest first. The
// listing is cached as a whole and trimmed to limit.
func (s *listingService) GetFeatured(ctx context.Context, limit int) ([]model.Institute, error) {
	if limit <= 0 {
		limit = DefaultFeaturedLimit
	}
	if limit > MaxFeaturedLimit {
		limit = MaxFeaturedLimit
	}

	var featured []model.Institute
	if !cache.GetJSON(ctx, s.cache, featuredCacheKey, &featured) {
		var err error
		featured, err = s.store.Institutes().List(ctx, repository.InstituteFilter{
			Status:   model.StatusApproved,
			Featured: true,
			Limit:    MaxFeaturedLimit,
		})
		if err != nil {
			return nil, fmt.Errorf("list featured institutes: %w", err)
		}
		featured = nonNil(featured)
		if err := cache.SetJSON(ctx, s.cache, featuredCacheKey, featured, s.ttl); err != nil {
			s.log.Warn("cache featured institutes", zap.Error(err))
		}
	}

	if len(featured) > limit {
		featured = featured[:limit]
	}
	return featured, nil
}

// GetInstitute returns an approved institute with its courses and approved
// reviews. Unapproved institutes are reported as not found.
func (s *listingService) GetInstitute(ctx context.Context, id uuid.UUID) (*InstituteDetail, error) {
	inst, err := s.store.Institutes().FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if inst.Status != model.StatusApproved {
		return nil, apperrors.ErrInstituteNotFound
	}

	courses, err := s.store.Courses().ListByInstitute(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	reviews, err := s.store.Reviews().List(ctx, repository.ReviewFilter{
		InstituteID: id,
		Status:      model.StatusApproved,
		ActiveOnly:  true,
	})
	if err != nil {
		return nil, fmt.Errorf("list reviews: %w", err)
	}
	return &InstituteDetail{Institute: inst, Courses: nonNil(courses), Reviews: nonNil(reviews)}, nil
}

// invalidateFeatured drops the cached featured listing. Cache errors are
// ignored.
func invalidateFeatured(ctx context.Context, c cache.Cache) {
	if c == nil {
		return
	}
	_ = c.Delete(ctx, featuredCacheKey)
}
