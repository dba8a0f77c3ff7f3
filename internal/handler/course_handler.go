package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"edulist/internal/service"
)

// CourseHandler manages the caller's courses.
type CourseHandler struct {
	svc service.CourseService
}

// NewCourseHandler creates a course handler.
func NewCourseHandler(svc service.CourseService) *CourseHandler {
	return &CourseHandler{svc: svc}
}

// CourseRequest represents a course create or update request.
type CourseRequest struct {
	Title       string          `json:"title" validate:"required,max=200"`
	Description string          `json:"description"`
	Duration    string          `json:"duration" validate:"omitempty,max=100"`
	Fees        decimal.Decimal `json:"fees" swaggertype:"string" example:"12500.00"`
	Category    string          `json:"category" validate:"omitempty,max=100"`
	ImageURL    string          `json:"image_url" validate:"omitempty,url"`
	Facilities  []string        `json:"facilities"`
	Syllabus    []string        `json:"syllabus"`
}

func (r *CourseRequest) toInput() service.CourseInput {
	return service.CourseInput{
		Title:       r.Title,
		Description: r.Description,
		Duration:    r.Duration,
		Fees:        r.Fees,
		Category:    r.Category,
		ImageURL:    r.ImageURL,
		Facilities:  r.Facilities,
		Syllabus:    r.Syllabus,
	}
}

// Mine godoc
// @Summary Courses of the caller's institute
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Course
// @Failure 403 {object} errors.ErrorResponse
// @Router /courses/mine [get]
func (h *CourseHandler) Mine(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	courses, err := h.svc.ListMine(c.Request().Context(), actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, courses)
}

// Create godoc
// @Summary Create a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CourseRequest true "Course"
// @Success 201 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /courses [post]
func (h *CourseHandler) Create(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req CourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	course, err := h.svc.Create(c.Request().Context(), actor, req.toInput())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, course)
}

// Update godoc
// @Summary Update a course
// @Tags courses
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Param request body CourseRequest true "Course"
// @Success 200 {object} model.Course
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{id} [put]
func (h *CourseHandler) Update(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req CourseRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	course, err := h.svc.Update(c.Request().Context(), actor, id, req.toInput())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, course)
}

// Delete godoc
// @Summary Delete a course
// @Tags courses
// @Produce json
// @Security BearerAuth
// @Param id path string true "Course ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /courses/{id} [delete]
func (h *CourseHandler) Delete(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), actor, id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "course deleted"})
}
