// Package memstore is an in-memory repository.Store. It mirrors the
// semantics of the GORM store that the services rely on: uniqueness
// constraints, conditional status updates and transactions that roll back
// every write when the callback fails. Transactions are serialised.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	apperrors "edulist/internal/errors"
	"edulist/internal/model"
	"edulist/internal/repository"
)

type state struct {
	users      map[uuid.UUID]model.User
	institutes map[uuid.UUID]model.Institute
	courses    map[uuid.UUID]model.Course
	reviews    map[uuid.UUID]model.Review
	enquiries  map[uuid.UUID]model.Enquiry
	facilities map[uuid.UUID]model.Facility
}

func newState() *state {
	return &state{
		users:      map[uuid.UUID]model.User{},
		institutes: map[uuid.UUID]model.Institute{},
		courses:    map[uuid.UUID]model.Course{},
		reviews:    map[uuid.UUID]model.Review{},
		enquiries:  map[uuid.UUID]model.Enquiry{},
		facilities: map[uuid.UUID]model.Facility{},
	}
}

func (s *state) clone() *state {
	c := newState()
	for k, v := range s.users {
		c.users[k] = v
	}
	for k, v := range s.institutes {
		c.institutes[k] = v
	}
	for k, v := range s.courses {
		c.courses[k] = v
	}
	for k, v := range s.reviews {
		c.reviews[k] = v
	}
	for k, v := range s.enquiries {
		c.enquiries[k] = v
	}
	for k, v := range s.facilities {
		c.facilities[k] = v
	}
	return c
}

type shared struct {
	mu       sync.Mutex
	data     *state
	failures map[string]error
	clock    time.Time
}

// Store is an in-memory repository.Store.
type Store struct {
	sh   *shared
	inTx bool
}

var _ repository.Store = (*Store)(nil)

// New creates an empty store.
func New() *Store {
	return &Store{sh: &shared{
		data:     newState(),
		failures: map[string]error{},
		clock:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	}}
}

// FailOn makes the next call of op return err. Operation names are
// "<collection>.<Method>", e.g. "users.SetStatus".
func (s *Store) FailOn(op string, err error) {
	unlock := s.lock()
	defer unlock()
	s.sh.failures[op] = err
}

func (s *Store) Users() repository.UserRepository           { return &users{s} }
func (s *Store) Institutes() repository.InstituteRepository { return &institutes{s} }
func (s *Store) Courses() repository.CourseRepository       { return &courses{s} }
func (s *Store) Reviews() repository.ReviewRepository       { return &reviews{s} }
func (s *Store) Enquiries() repository.EnquiryRepository    { return &enquiries{s} }
func (s *Store) Facilities() repository.FacilityRepository  { return &facilities{s} }

// WithTransaction runs fn against a snapshot-protected view of the data.
func (s *Store) WithTransaction(ctx context.Context, fn func(ctx context.Context, tx repository.Store) error) error {
	if s.inTx {
		return fn(ctx, s)
	}
	s.sh.mu.Lock()
	defer s.sh.mu.Unlock()

	snapshot := s.sh.data.clone()
	err := fn(ctx, &Store{sh: s.sh, inTx: true})
	if err == nil {
		err = ctx.Err()
	}
	if err != nil {
		s.sh.data = snapshot
		return err
	}
	return nil
}

func (s *Store) lock() func() {
	if s.inTx {
		return func() {}
	}
	s.sh.mu.Lock()
	return s.sh.mu.Unlock
}

// begin locks the store and checks context and injected failures.
func (s *Store) begin(ctx context.Context, op string) (func(), error) {
	unlock := s.lock()
	if err := ctx.Err(); err != nil {
		unlock()
		return nil, err
	}
	if err, ok := s.sh.failures[op]; ok {
		delete(s.sh.failures, op)
		unlock()
		return nil, err
	}
	return unlock, nil
}

// now hands out strictly increasing timestamps so ordering is deterministic.
func (s *Store) now() time.Time {
	s.sh.clock = s.sh.clock.Add(time.Second)
	return s.sh.clock
}

func containsFold(haystack, needle string) bool {
	return strings.Contains(strings.ToLower(haystack), strings.ToLower(strings.TrimSpace(needle)))
}

func newestFirst[T any](items []T, created func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return created(items[i]).After(created(items[j]))
	})
}

func window[T any](items []T, offset, limit int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && limit < len(items) {
		items = items[:limit]
	}
	return items
}

// ---- users ----

type users struct{ s *Store }

func (r *users) Create(ctx context.Context, user *model.User) error {
	unlock, err := r.s.begin(ctx, "users.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	user.Email = model.NormalizeEmail(user.Email)
	for _, existing := range r.s.sh.data.users {
		if existing.Email == user.Email {
			return apperrors.ErrDuplicateEntity
		}
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.s.now()
	}
	user.UpdatedAt = user.CreatedAt
	r.s.sh.data.users[user.ID] = *user
	return nil
}

func (r *users) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	unlock, err := r.s.begin(ctx, "users.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	u, ok := r.s.sh.data.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r *users) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	unlock, err := r.s.begin(ctx, "users.FindByEmail")
	if err != nil {
		return nil, err
	}
	defer unlock()
	email = model.NormalizeEmail(email)
	for _, u := range r.s.sh.data.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (r *users) UpdateProfile(ctx context.Context, id uuid.UUID, name, phone string) error {
	unlock, err := r.s.begin(ctx, "users.UpdateProfile")
	if err != nil {
		return err
	}
	defer unlock()
	u, ok := r.s.sh.data.users[id]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	u.Name, u.Phone, u.UpdatedAt = name, phone, r.s.now()
	r.s.sh.data.users[id] = u
	return nil
}

func (r *users) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error) {
	unlock, err := r.s.begin(ctx, "users.UpdateStatus")
	if err != nil {
		return false, err
	}
	defer unlock()
	u, ok := r.s.sh.data.users[id]
	if !ok || u.Status != from {
		return false, nil
	}
	u.Status, u.UpdatedAt = to, r.s.now()
	r.s.sh.data.users[id] = u
	return true, nil
}

func (r *users) SetStatus(ctx context.Context, id uuid.UUID, to model.Status) error {
	unlock, err := r.s.begin(ctx, "users.SetStatus")
	if err != nil {
		return err
	}
	defer unlock()
	if u, ok := r.s.sh.data.users[id]; ok {
		u.Status, u.UpdatedAt = to, r.s.now()
		r.s.sh.data.users[id] = u
	}
	return nil
}

func (r *users) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.s.begin(ctx, "users.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.s.sh.data.users[id]; !ok {
		return apperrors.ErrUserNotFound
	}
	delete(r.s.sh.data.users, id)
	return nil
}

func (r *users) match(ctx context.Context, op string, filter repository.UserFilter) ([]model.User, func(), error) {
	unlock, err := r.s.begin(ctx, op)
	if err != nil {
		return nil, nil, err
	}
	var out []model.User
	for _, u := range r.s.sh.data.users {
		if filter.Role != "" && u.Role != filter.Role {
			continue
		}
		if filter.Status != "" && u.Status != filter.Status {
			continue
		}
		out = append(out, u)
	}
	return out, unlock, nil
}

func (r *users) List(ctx context.Context, filter repository.UserFilter) ([]model.User, error) {
	out, unlock, err := r.match(ctx, "users.List", filter)
	if err != nil {
		return nil, err
	}
	defer unlock()
	newestFirst(out, func(u model.User) time.Time { return u.CreatedAt })
	return out, nil
}

func (r *users) Count(ctx context.Context, filter repository.UserFilter) (int64, error) {
	out, unlock, err := r.match(ctx, "users.Count", filter)
	if err != nil {
		return 0, err
	}
	defer unlock()
	return int64(len(out)), nil
}

// ---- institutes ----

type institutes struct{ s *Store }

// load attaches the owner and derived fields, as the GORM preload does.
func (r *institutes) load(inst model.Institute) model.Institute {
	if owner, ok := r.s.sh.data.users[inst.UserID]; ok {
		owner.PasswordHash = ""
		inst.Owner = &owner
	}
	inst.Derive()
	return inst
}

func (r *institutes) Create(ctx context.Context, inst *model.Institute) error {
	unlock, err := r.s.begin(ctx, "institutes.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if inst.ID == uuid.Nil {
		inst.ID = uuid.New()
	}
	for _, existing := range r.s.sh.data.institutes {
		if existing.UserID == inst.UserID {
			return apperrors.ErrDuplicateEntity
		}
	}
	if inst.Status == "" {
		inst.Status = model.StatusPending
	}
	if inst.CreatedAt.IsZero() {
		inst.CreatedAt = r.s.now()
	}
	inst.UpdatedAt = inst.CreatedAt
	stored := *inst
	stored.Owner, stored.OwnerInfo = nil, nil
	r.s.sh.data.institutes[inst.ID] = stored
	return nil
}

func (r *institutes) FindByID(ctx context.Context, id uuid.UUID) (*model.Institute, error) {
	unlock, err := r.s.begin(ctx, "institutes.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	inst, ok := r.s.sh.data.institutes[id]
	if !ok {
		return nil, apperrors.ErrInstituteNotFound
	}
	inst = r.load(inst)
	return &inst, nil
}

func (r *institutes) FindByUserID(ctx context.Context, userID uuid.UUID) (*model.Institute, error) {
	unlock, err := r.s.begin(ctx, "institutes.FindByUserID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, inst := range r.s.sh.data.institutes {
		if inst.UserID == userID {
			inst = r.load(inst)
			return &inst, nil
		}
	}
	return nil, apperrors.ErrInstituteNotFound
}

func (r *institutes) UpdateProfile(ctx context.Context, in *model.Institute) error {
	unlock, err := r.s.begin(ctx, "institutes.UpdateProfile")
	if err != nil {
		return err
	}
	defer unlock()
	inst, ok := r.s.sh.data.institutes[in.ID]
	if !ok {
		return apperrors.ErrInstituteNotFound
	}
	inst.Name, inst.Category, inst.Affiliation = in.Name, in.Category, in.Affiliation
	inst.Address, inst.City, inst.State = in.Address, in.City, in.State
	inst.Phone, inst.Email, inst.Website = in.Phone, in.Email, in.Website
	inst.Description, inst.LogoURL = in.Description, in.LogoURL
	inst.Images, inst.Facilities = in.Images, in.Facilities
	inst.UpdatedAt = r.s.now()
	r.s.sh.data.institutes[in.ID] = inst
	return nil
}

func (r *institutes) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status) (bool, error) {
	unlock, err := r.s.begin(ctx, "institutes.UpdateStatus")
	if err != nil {
		return false, err
	}
	defer unlock()
	inst, ok := r.s.sh.data.institutes[id]
	if !ok || inst.Status != from {
		return false, nil
	}
	inst.Status, inst.UpdatedAt = to, r.s.now()
	if to != model.StatusApproved {
		inst.IsFeatured = false
	}
	r.s.sh.data.institutes[id] = inst
	return true, nil
}

func (r *institutes) SetFeatured(ctx context.Context, id uuid.UUID, featured bool) error {
	unlock, err := r.s.begin(ctx, "institutes.SetFeatured")
	if err != nil {
		return err
	}
	defer unlock()
	if inst, ok := r.s.sh.data.institutes[id]; ok {
		inst.IsFeatured = featured
		r.s.sh.data.institutes[id] = inst
	}
	return nil
}

func (r *institutes) UpdateRating(ctx context.Context, id uuid.UUID, rating float64, reviewCount int) error {
	unlock, err := r.s.begin(ctx, "institutes.UpdateRating")
	if err != nil {
		return err
	}
	defer unlock()
	if inst, ok := r.s.sh.data.institutes[id]; ok {
		inst.Rating, inst.ReviewCount = rating, reviewCount
		r.s.sh.data.institutes[id] = inst
	}
	return nil
}

func (r *institutes) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.s.begin(ctx, "institutes.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.s.sh.data.institutes[id]; !ok {
		return apperrors.ErrInstituteNotFound
	}
	delete(r.s.sh.data.institutes, id)
	return nil
}

func (r *institutes) match(filter repository.InstituteFilter) []model.Institute {
	var out []model.Institute
	for _, inst := range r.s.sh.data.institutes {
		if filter.Status != "" && inst.Status != filter.Status {
			continue
		}
		if filter.Search != "" && !containsFold(inst.Name, filter.Search) {
			continue
		}
		if filter.Category != "" && inst.Category != filter.Category {
			continue
		}
		if filter.City != "" && !containsFold(inst.City, filter.City) {
			continue
		}
		if filter.MinRating > 0 && inst.Rating < filter.MinRating {
			continue
		}
		if filter.Featured && !inst.IsFeatured {
			continue
		}
		out = append(out, inst)
	}
	return out
}

func (r *institutes) List(ctx context.Context, filter repository.InstituteFilter) ([]model.Institute, error) {
	unlock, err := r.s.begin(ctx, "institutes.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := r.match(filter)
	newestFirst(out, func(i model.Institute) time.Time { return i.CreatedAt })
	out = window(out, filter.Offset, filter.Limit)
	for i := range out {
		out[i] = r.load(out[i])
	}
	return out, nil
}

func (r *institutes) Count(ctx context.Context, filter repository.InstituteFilter) (int64, error) {
	unlock, err := r.s.begin(ctx, "institutes.Count")
	if err != nil {
		return 0, err
	}
	defer unlock()
	return int64(len(r.match(filter))), nil
}

// ---- courses ----

type courses struct{ s *Store }

func (r *courses) Create(ctx context.Context, c *model.Course) error {
	unlock, err := r.s.begin(ctx, "courses.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = r.s.now()
	}
	c.UpdatedAt = c.CreatedAt
	r.s.sh.data.courses[c.ID] = *c
	return nil
}

func (r *courses) FindByID(ctx context.Context, id uuid.UUID) (*model.Course, error) {
	unlock, err := r.s.begin(ctx, "courses.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	c, ok := r.s.sh.data.courses[id]
	if !ok {
		return nil, apperrors.ErrCourseNotFound
	}
	return &c, nil
}

func (r *courses) Update(ctx context.Context, c *model.Course) error {
	unlock, err := r.s.begin(ctx, "courses.Update")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.s.sh.data.courses[c.ID]; !ok {
		return apperrors.ErrCourseNotFound
	}
	c.UpdatedAt = r.s.now()
	r.s.sh.data.courses[c.ID] = *c
	return nil
}

func (r *courses) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.s.begin(ctx, "courses.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.s.sh.data.courses[id]; !ok {
		return apperrors.ErrCourseNotFound
	}
	delete(r.s.sh.data.courses, id)
	return nil
}

func (r *courses) DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error {
	unlock, err := r.s.begin(ctx, "courses.DeleteByInstitute")
	if err != nil {
		return err
	}
	defer unlock()
	for id, c := range r.s.sh.data.courses {
		if c.InstituteID == instituteID {
			delete(r.s.sh.data.courses, id)
		}
	}
	return nil
}

func (r *courses) ListByInstitute(ctx context.Context, instituteID uuid.UUID) ([]model.Course, error) {
	unlock, err := r.s.begin(ctx, "courses.ListByInstitute")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var out []model.Course
	for _, c := range r.s.sh.data.courses {
		if c.InstituteID == instituteID {
			out = append(out, c)
		}
	}
	newestFirst(out, func(c model.Course) time.Time { return c.CreatedAt })
	return out, nil
}

func (r *courses) CountByInstitute(ctx context.Context, instituteID uuid.UUID) (int64, error) {
	list, err := r.ListByInstitute(ctx, instituteID)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

// ---- reviews ----

type reviews struct{ s *Store }

func (r *reviews) Create(ctx context.Context, rv *model.Review) error {
	unlock, err := r.s.begin(ctx, "reviews.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if rv.ID == uuid.Nil {
		rv.ID = uuid.New()
	}
	for _, existing := range r.s.sh.data.reviews {
		if existing.UserID == rv.UserID && existing.InstituteID == rv.InstituteID {
			return apperrors.ErrDuplicateEntity
		}
	}
	if rv.CreatedAt.IsZero() {
		rv.CreatedAt = r.s.now()
	}
	rv.UpdatedAt = rv.CreatedAt
	stored := *rv
	stored.User, stored.Institute = nil, nil
	r.s.sh.data.reviews[rv.ID] = stored
	return nil
}

func (r *reviews) FindByID(ctx context.Context, id uuid.UUID) (*model.Review, error) {
	unlock, err := r.s.begin(ctx, "reviews.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	rv, ok := r.s.sh.data.reviews[id]
	if !ok {
		return nil, apperrors.ErrReviewNotFound
	}
	return &rv, nil
}

func (r *reviews) FindByUserAndInstitute(ctx context.Context, userID, instituteID uuid.UUID) (*model.Review, error) {
	unlock, err := r.s.begin(ctx, "reviews.FindByUserAndInstitute")
	if err != nil {
		return nil, err
	}
	defer unlock()
	for _, rv := range r.s.sh.data.reviews {
		if rv.UserID == userID && rv.InstituteID == instituteID {
			return &rv, nil
		}
	}
	return nil, apperrors.ErrReviewNotFound
}

func (r *reviews) UpdateContent(ctx context.Context, in *model.Review) (bool, error) {
	unlock, err := r.s.begin(ctx, "reviews.UpdateContent")
	if err != nil {
		return false, err
	}
	defer unlock()
	rv, ok := r.s.sh.data.reviews[in.ID]
	if !ok || rv.Status != model.StatusPending {
		return false, nil
	}
	rv.Rating, rv.Text = in.Rating, in.Text
	rv.UpdatedAt = r.s.now()
	r.s.sh.data.reviews[in.ID] = rv
	return true, nil
}

func (r *reviews) UpdateStatus(ctx context.Context, id uuid.UUID, from, to model.Status, active bool) (bool, error) {
	unlock, err := r.s.begin(ctx, "reviews.UpdateStatus")
	if err != nil {
		return false, err
	}
	defer unlock()
	rv, ok := r.s.sh.data.reviews[id]
	if !ok || rv.Status != from {
		return false, nil
	}
	rv.Status, rv.IsActive, rv.UpdatedAt = to, active, r.s.now()
	r.s.sh.data.reviews[id] = rv
	return true, nil
}

func (r *reviews) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.s.begin(ctx, "reviews.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.s.sh.data.reviews[id]; !ok {
		return apperrors.ErrReviewNotFound
	}
	delete(r.s.sh.data.reviews, id)
	return nil
}

func (r *reviews) DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error {
	unlock, err := r.s.begin(ctx, "reviews.DeleteByInstitute")
	if err != nil {
		return err
	}
	defer unlock()
	for id, rv := range r.s.sh.data.reviews {
		if rv.InstituteID == instituteID {
			delete(r.s.sh.data.reviews, id)
		}
	}
	return nil
}

func (r *reviews) match(filter repository.ReviewFilter) []model.Review {
	var out []model.Review
	for _, rv := range r.s.sh.data.reviews {
		if filter.InstituteID != uuid.Nil && rv.InstituteID != filter.InstituteID {
			continue
		}
		if filter.UserID != uuid.Nil && rv.UserID != filter.UserID {
			continue
		}
		if filter.Status != "" && rv.Status != filter.Status {
			continue
		}
		if filter.ActiveOnly && !rv.IsActive {
			continue
		}
		out = append(out, rv)
	}
	return out
}

func (r *reviews) List(ctx context.Context, filter repository.ReviewFilter) ([]model.Review, error) {
	unlock, err := r.s.begin(ctx, "reviews.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := r.match(filter)
	newestFirst(out, func(rv model.Review) time.Time { return rv.CreatedAt })
	for i := range out {
		if u, ok := r.s.sh.data.users[out[i].UserID]; ok {
			out[i].User = &model.User{ID: u.ID, Name: u.Name}
		}
		if inst, ok := r.s.sh.data.institutes[out[i].InstituteID]; ok {
			out[i].Institute = &model.Institute{ID: inst.ID, Name: inst.Name}
		}
		out[i].Derive()
	}
	return out, nil
}

func (r *reviews) Count(ctx context.Context, filter repository.ReviewFilter) (int64, error) {
	unlock, err := r.s.begin(ctx, "reviews.Count")
	if err != nil {
		return 0, err
	}
	defer unlock()
	return int64(len(r.match(filter))), nil
}

func (r *reviews) CountedRatings(ctx context.Context, instituteID uuid.UUID) ([]int, error) {
	unlock, err := r.s.begin(ctx, "reviews.CountedRatings")
	if err != nil {
		return nil, err
	}
	defer unlock()
	var ratings []int
	for _, rv := range r.s.sh.data.reviews {
		if rv.InstituteID == instituteID && rv.Counts() {
			ratings = append(ratings, rv.Rating)
		}
	}
	return ratings, nil
}

// ---- enquiries ----

type enquiries struct{ s *Store }

func (r *enquiries) Create(ctx context.Context, e *model.Enquiry) error {
	unlock, err := r.s.begin(ctx, "enquiries.Create")
	if err != nil {
		return err
	}
	defer unlock()
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	if e.Status == "" {
		e.Status = model.EnquiryStatusNew
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = r.s.now()
	}
	e.UpdatedAt = e.CreatedAt
	r.s.sh.data.enquiries[e.ID] = *e
	return nil
}

func (r *enquiries) FindByID(ctx context.Context, id uuid.UUID) (*model.Enquiry, error) {
	unlock, err := r.s.begin(ctx, "enquiries.FindByID")
	if err != nil {
		return nil, err
	}
	defer unlock()
	e, ok := r.s.sh.data.enquiries[id]
	if !ok {
		return nil, apperrors.ErrEnquiryNotFound
	}
	return &e, nil
}

func (r *enquiries) UpdateFollowUp(ctx context.Context, id uuid.UUID, from, to model.EnquiryStatus, response *string) (bool, error) {
	unlock, err := r.s.begin(ctx, "enquiries.UpdateFollowUp")
	if err != nil {
		return false, err
	}
	defer unlock()
	e, ok := r.s.sh.data.enquiries[id]
	if !ok || e.Status != from {
		return false, nil
	}
	e.Status, e.UpdatedAt = to, r.s.now()
	if response != nil {
		e.Response = *response
	}
	r.s.sh.data.enquiries[id] = e
	return true, nil
}

func (r *enquiries) DeleteByInstitute(ctx context.Context, instituteID uuid.UUID) error {
	unlock, err := r.s.begin(ctx, "enquiries.DeleteByInstitute")
	if err != nil {
		return err
	}
	defer unlock()
	for id, e := range r.s.sh.data.enquiries {
		if e.InstituteID == instituteID {
			delete(r.s.sh.data.enquiries, id)
		}
	}
	return nil
}

func (r *enquiries) match(filter repository.EnquiryFilter) []model.Enquiry {
	var out []model.Enquiry
	for _, e := range r.s.sh.data.enquiries {
		if filter.InstituteID != uuid.Nil && e.InstituteID != filter.InstituteID {
			continue
		}
		if filter.UserID != uuid.Nil && (e.UserID == nil || *e.UserID != filter.UserID) {
			continue
		}
		if filter.Status != "" && e.Status != filter.Status {
			continue
		}
		out = append(out, e)
	}
	return out
}

func (r *enquiries) List(ctx context.Context, filter repository.EnquiryFilter) ([]model.Enquiry, error) {
	unlock, err := r.s.begin(ctx, "enquiries.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := r.match(filter)
	newestFirst(out, func(e model.Enquiry) time.Time { return e.CreatedAt })
	return out, nil
}

func (r *enquiries) Count(ctx context.Context, filter repository.EnquiryFilter) (int64, error) {
	unlock, err := r.s.begin(ctx, "enquiries.Count")
	if err != nil {
		return 0, err
	}
	defer unlock()
	return int64(len(r.match(filter))), nil
}

// ---- facilities ----

type facilities struct{ s *Store }

func (r *facilities) Create(ctx context.Context, f *model.Facility) error {
	unlock, err := r.s.begin(ctx, "facilities.Create")
	if err != nil {
		return err
	}
	defer unlock()
	for _, existing := range r.s.sh.data.facilities {
		if strings.EqualFold(existing.Name, f.Name) {
			return apperrors.ErrDuplicateEntity
		}
	}
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	f.CreatedAt = r.s.now()
	f.UpdatedAt = f.CreatedAt
	r.s.sh.data.facilities[f.ID] = *f
	return nil
}

func (r *facilities) Delete(ctx context.Context, id uuid.UUID) error {
	unlock, err := r.s.begin(ctx, "facilities.Delete")
	if err != nil {
		return err
	}
	defer unlock()
	if _, ok := r.s.sh.data.facilities[id]; !ok {
		return apperrors.ErrFacilityNotFound
	}
	delete(r.s.sh.data.facilities, id)
	return nil
}

func (r *facilities) List(ctx context.Context) ([]model.Facility, error) {
	unlock, err := r.s.begin(ctx, "facilities.List")
	if err != nil {
		return nil, err
	}
	defer unlock()
	out := make([]model.Facility, 0, len(r.s.sh.data.facilities))
	for _, f := range r.s.sh.data.facilities {
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}
