package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"edulist/internal/config"
	"edulist/internal/db"
	apperrors "edulist/internal/errors"
	"edulist/internal/logger"
	"edulist/internal/model"
	"edulist/internal/repository"
	"edulist/internal/service"
)

const demoPassword = "password123"

// seedAccount is an account the seeder creates when its email is unknown.
type seedAccount struct {
	Name  string
	Email string
	Phone string
	Role  model.Role
}

var demoInstitutes = []struct {
	Owner     seedAccount
	Institute model.Institute
	Courses   []model.Course
}{
	{
		Owner: seedAccount{Name: "Delhi Public School", Email: "dps@edulist.local", Phone: "+91-11-5550001", Role: model.RoleInstitute},
		Institute: model.Institute{
			Name:        "Delhi Public School",
			Category:    model.CategorySchool,
			Affiliation: "CBSE",
			Address:     "Mathura Road",
			City:        "New Delhi",
			State:       "Delhi",
			Description: "Co-educational senior secondary school.",
			Facilities:  []string{"library", "sports ground", "science labs"},
			IsFeatured:  true,
		},
		Courses: []model.Course{
			{Title: "Senior Secondary Science", Duration: "2 years", Fees: decimal.NewFromInt(85000), Category: "science"},
			{Title: "Senior Secondary Commerce", Duration: "2 years", Fees: decimal.NewFromInt(78000), Category: "commerce"},
		},
	},
	{
		Owner: seedAccount{Name: "Apex Coaching", Email: "apex@edulist.local", Phone: "+91-22-5550002", Role: model.RoleInstitute},
		Institute: model.Institute{
			Name:        "Apex Coaching Centre",
			Category:    model.CategoryCoaching,
			Address:     "Andheri West",
			City:        "Mumbai",
			State:       "Maharashtra",
			Description: "Entrance exam preparation.",
			Facilities:  []string{"test series", "doubt sessions"},
		},
		Courses: []model.Course{
			{Title: "Engineering Entrance", Duration: "1 year", Fees: decimal.NewFromInt(120000), Category: "engineering"},
		},
	},
}

var demoFacilities = []model.Facility{
	{Name: "Library", Icon: "book"},
	{Name: "Laboratory", Icon: "flask"},
	{Name: "Sports Ground", Icon: "trophy"},
	{Name: "Hostel", Icon: "bed"},
	{Name: "Transport", Icon: "bus"},
}

var demoStudent = seedAccount{Name: "Asha Verma", Email: "asha@edulist.local", Phone: "+91-98-5550003", Role: model.RoleUser}

func main() {
	cfg := config.Load()
	log := logger.InitLogger(cfg.Environment, cfg.LogLevel)
	defer func() { _ = log.Sync() }()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatal("database init", zap.Error(err))
	}
	if err := db.Migrate(gormDB); err != nil {
		log.Fatal("migrate", zap.Error(err))
	}

	store := repository.NewStore(gormDB)
	ctx := context.Background()

	admin := seedAccount{Name: "Administrator", Email: cfg.AdminEmail, Role: model.RoleAdmin}
	if _, created, err := ensureUser(ctx, store, admin, cfg.AdminPassword); err != nil {
		log.Fatal("seed admin", zap.Error(err))
	} else if created {
		log.Info("admin created", zap.String("email", cfg.AdminEmail))
	}

	student, _, err := ensureUser(ctx, store, demoStudent, demoPassword)
	if err != nil {
		log.Fatal("seed student", zap.Error(err))
	}

	for i := range demoFacilities {
		err := store.Facilities().Create(ctx, &demoFacilities[i])
		if err != nil && !errors.Is(err, apperrors.ErrDuplicateEntity) {
			log.Fatal("seed facility", zap.String("name", demoFacilities[i].Name), zap.Error(err))
		}
	}

	for _, demo := range demoInstitutes {
		inst, err := ensureInstitute(ctx, store, demo.Owner, demo.Institute, demo.Courses)
		if err != nil {
			log.Fatal("seed institute", zap.String("name", demo.Institute.Name), zap.Error(err))
		}
		if err := ensureReview(ctx, store, student, inst); err != nil {
			log.Fatal("seed review", zap.String("institute", inst.Name), zap.Error(err))
		}
		log.Info("institute seeded", zap.String("id", inst.ID.String()), zap.String("name", inst.Name))
	}

	log.Info("seed completed")
}

// ensureUser returns the account with the given email, creating it approved
// when missing.
func ensureUser(ctx context.Context, store repository.Store, acc seedAccount, password string) (*model.User, bool, error) {
	existing, err := store.Users().FindByEmail(ctx, acc.Email)
	if err == nil {
		return existing, false, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, false, fmt.Errorf("find %s: %w", acc.Email, err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, false, fmt.Errorf("hash password: %w", err)
	}
	user := &model.User{
		Name:         acc.Name,
		Email:        acc.Email,
		Phone:        acc.Phone,
		PasswordHash: string(hash),
		Role:         acc.Role,
		Status:       model.StatusApproved,
		IsActive:     true,
	}
	if err := store.Users().Create(ctx, user); err != nil {
		return nil, false, fmt.Errorf("create %s: %w", acc.Email, err)
	}
	return user, true, nil
}

func ensureInstitute(ctx context.Context, store repository.Store, owner seedAccount, inst model.Institute, courses []model.Course) (*model.Institute, error) {
	user, _, err := ensureUser(ctx, store, owner, demoPassword)
	if err != nil {
		return nil, err
	}
	existing, err := store.Institutes().FindByUserID(ctx, user.ID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("find institute: %w", err)
	}

	inst.UserID = user.ID
	inst.Status = model.StatusApproved
	inst.Phone = user.Phone
	inst.Email = user.Email
	err = store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Institutes().Create(ctx, &inst); err != nil {
			return err
		}
		for _, course := range courses {
			course.InstituteID = inst.ID
			if err := tx.Courses().Create(ctx, &course); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("create institute: %w", err)
	}
	return &inst, nil
}

// ensureReview adds an approved review by the student and refreshes the
// institute rating.
func ensureReview(ctx context.Context, store repository.Store, student *model.User, inst *model.Institute) error {
	if _, err := store.Reviews().FindByUserAndInstitute(ctx, student.ID, inst.ID); err == nil {
		return nil
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	review := &model.Review{
		UserID:      student.ID,
		InstituteID: inst.ID,
		Rating:      5,
		Text:        "Helpful staff and good facilities.",
		Status:      model.StatusApproved,
		IsActive:    true,
	}
	return store.WithTransaction(ctx, func(ctx context.Context, tx repository.Store) error {
		if err := tx.Reviews().Create(ctx, review); err != nil {
			return err
		}
		ratings, err := tx.Reviews().CountedRatings(ctx, inst.ID)
		if err != nil {
			return err
		}
		avg, n := service.AverageRating(ratings)
		return tx.Institutes().UpdateRating(ctx, inst.ID, avg, n)
	})
}
