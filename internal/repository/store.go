package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	apperrors "edulist/internal/errors"
)

// Store groups the repositories of every collection so that a service can run
// writes across several of them inside one transaction.
type Store interface {
	Users() UserRepository
	Institutes() InstituteRepository
	Courses() CourseRepository
	Reviews() ReviewRepository
	Enquiries() EnquiryRepository
	Facilities() FacilityRepository
	// WithTransaction runs fn inside a database transaction. The Store handed
	// to fn is bound to the transaction; returning an error rolls back every
	// write made through it.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error
}

type gormStore struct {
	db *gorm.DB
}

// NewStore creates a GORM backed store.
func NewStore(db *gorm.DB) Store {
	return &gormStore{db: db}
}

func (s *gormStore) Users() UserRepository           { return &userRepository{db: s.db} }
func (s *gormStore) Institutes() InstituteRepository { return &instituteRepository{db: s.db} }
func (s *gormStore) Courses() CourseRepository       { return &courseRepository{db: s.db} }
func (s *gormStore) Reviews() ReviewRepository       { return &reviewRepository{db: s.db} }
func (s *gormStore) Enquiries() EnquiryRepository    { return &enquiryRepository{db: s.db} }
func (s *gormStore) Facilities() FacilityRepository  { return &facilityRepository{db: s.db} }

// WithTransaction executes a function within a database transaction.
func (s *gormStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx Store) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(ctx, &gormStore{db: tx})
	})
}

// translate maps gorm sentinel errors onto domain errors.
func translate(err error, notFound error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		return notFound
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return apperrors.ErrDuplicateEntity
	}
	return err
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// containsPattern builds a lower-cased LIKE pattern matching s anywhere.
func containsPattern(s string) string {
	return "%" + likeEscaper.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

// publicUserColumns limits preloaded owners and reviewers to public fields.
func publicUserColumns(db *gorm.DB) *gorm.DB {
	return db.Select("id", "name", "email", "phone", "role", "status")
}
