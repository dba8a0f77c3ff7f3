package handler

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"edulist/internal/errors"
	"edulist/internal/service"
)

// InstituteHandler serves the public catalogue and the owner's institute.
type InstituteHandler struct {
	listing    service.ListingService
	institutes service.InstituteService
	courses    service.CourseService
	reviews    service.ReviewService
	analytics  service.AnalyticsService
}

// NewInstituteHandler creates an institute handler.
func NewInstituteHandler(
	listing service.ListingService,
	institutes service.InstituteService,
	courses service.CourseService,
	reviews service.ReviewService,
	analytics service.AnalyticsService,
) *InstituteHandler {
	return &InstituteHandler{
		listing:    listing,
		institutes: institutes,
		courses:    courses,
		reviews:    reviews,
		analytics:  analytics,
	}
}

// InstituteRequest carries the owner editable institute profile.
type InstituteRequest struct {
	Name        string   `json:"name" validate:"omitempty,max=200"`
	Category    string   `json:"category" validate:"required,oneof=school college coaching preschool university"`
	Affiliation string   `json:"affiliation"`
	Address     string   `json:"address"`
	City        string   `json:"city" validate:"omitempty,max=100"`
	State       string   `json:"state" validate:"omitempty,max=100"`
	Phone       string   `json:"phone" validate:"omitempty,max=32"`
	Email       string   `json:"email" validate:"omitempty,email"`
	Website     string   `json:"website" validate:"omitempty,url"`
	Description string   `json:"description"`
	LogoURL     string   `json:"logo_url" validate:"omitempty,url"`
	Images      []string `json:"images" validate:"omitempty,dive,url"`
	Facilities  []string `json:"facilities"`
}

func (r *InstituteRequest) toInput() service.InstituteInput {
	return service.InstituteInput{
		Name:        r.Name,
		Category:    r.Category,
		Affiliation: r.Affiliation,
		Address:     r.Address,
		City:        r.City,
		State:       r.State,
		Phone:       r.Phone,
		Email:       r.Email,
		Website:     r.Website,
		Description: r.Description,
		LogoURL:     r.LogoURL,
		Images:      r.Images,
		Facilities:  r.Facilities,
	}
}

// parseQuery reads the listing filters shared by the public and admin lists.
func parseQuery(c echo.Context) (service.InstituteQuery, error) {
	q := service.InstituteQuery{
		Search:   c.QueryParam("search"),
		Category: c.QueryParam("category"),
		City:     c.QueryParam("city"),
	}
	var err error
	if raw := c.QueryParam("min_rating"); raw != "" {
		if q.MinRating, err = strconv.ParseFloat(raw, 64); err != nil {
			return q, badQuery("min_rating")
		}
	}
	if raw := c.QueryParam("page"); raw != "" {
		if q.Page, err = strconv.Atoi(raw); err != nil {
			return q, badQuery("page")
		}
	}
	if raw := c.QueryParam("page_size"); raw != "" {
		if q.PageSize, err = strconv.Atoi(raw); err != nil {
			return q, badQuery("page_size")
		}
	}
	return q, nil
}

func badQuery(name string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
		Error: "invalid " + name,
		Code:  "INVALID_REQUEST",
	})
}

// List godoc
// @Summary List approved institutes
// @Tags institutes
// @Produce json
// @Param search query string false "Name contains"
// @Param category query string false "Category"
// @Param city query string false "City"
// @Param min_rating query number false "Minimum rating"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 12)"
// @Success 200 {object} service.InstitutePage
// @Failure 400 {object} errors.ErrorResponse
// @Router /institutes [get]
func (h *InstituteHandler) List(c echo.Context) error {
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	page, err := h.listing.ListInstitutes(c.Request().Context(), q)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Featured godoc
// @Summary Featured institutes
// @Tags institutes
// @Produce json
// @Param limit query int false "Maximum items (default 10)"
// @Success 200 {array} model.Institute
// @Router /institutes/featured [get]
func (h *InstituteHandler) Featured(c echo.Context) error {
	limit := 0
	if raw := c.QueryParam("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return badQuery("limit")
		}
		limit = n
	}
	institutes, err := h.listing.GetFeatured(c.Request().Context(), limit)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, institutes)
}

// Get godoc
// @Summary Get an approved institute
// @Tags institutes
// @Produce json
// @Param id path string true "Institute ID"
// @Success 200 {object} service.InstituteDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /institutes/{id} [get]
func (h *InstituteHandler) Get(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	detail, err := h.listing.GetInstitute(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, detail)
}

// Courses godoc
// @Summary Courses of an institute
// @Tags institutes
// @Produce json
// @Param id path string true "Institute ID"
// @Success 200 {array} model.Course
// @Failure 404 {object} errors.ErrorResponse
// @Router /institutes/{id}/courses [get]
func (h *InstituteHandler) Courses(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	courses, err := h.courses.ListByInstitute(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, courses)
}

// Reviews godoc
// @Summary Approved reviews of an institute
// @Tags institutes
// @Produce json
// @Param id path string true "Institute ID"
// @Success 200 {array} model.Review
// @Failure 404 {object} errors.ErrorResponse
// @Router /institutes/{id}/reviews [get]
func (h *InstituteHandler) Reviews(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	reviews, err := h.reviews.ListApproved(c.Request().Context(), id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// Create godoc
// @Summary Register the caller's institute
// @Tags institutes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InstituteRequest true "Institute"
// @Success 201 {object} model.Institute
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /institutes [post]
func (h *InstituteHandler) Create(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req InstituteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	inst, err := h.institutes.Register(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, inst)
}

// Mine godoc
// @Summary The caller's institute
// @Tags institutes
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.Institute
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /institutes/me [get]
func (h *InstituteHandler) Mine(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	inst, err := h.institutes.Mine(c.Request().Context(), actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, inst)
}

// UpdateMine godoc
// @Summary Update the caller's institute profile
// @Tags institutes
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body InstituteRequest true "Institute"
// @Success 200 {object} model.Institute
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /institutes/me [put]
func (h *InstituteHandler) UpdateMine(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req InstituteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	inst, err := h.institutes.UpdateProfile(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, inst)
}

// Stats godoc
// @Summary Statistics for one institute
// @Description Visible to the owning account and to admins.
// @Tags institutes
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institute ID"
// @Success 200 {object} service.InstituteStats
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /institutes/{id}/stats [get]
func (h *InstituteHandler) Stats(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	stats, err := h.analytics.InstituteStats(c.Request().Context(), actor, id)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}
