package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"edulist/internal/service"
)

// ReviewHandler handles review submission and editing.
type ReviewHandler struct {
	svc service.ReviewService
}

// NewReviewHandler creates a review handler.
func NewReviewHandler(svc service.ReviewService) *ReviewHandler {
	return &ReviewHandler{svc: svc}
}

// CreateReviewRequest represents a new review.
type CreateReviewRequest struct {
	InstituteID string `json:"institute_id" validate:"required,uuid"`
	CourseID    string `json:"course_id" validate:"omitempty,uuid"`
	Rating      int    `json:"rating" validate:"required,min=1,max=5"`
	Text        string `json:"text" validate:"max=2000"`
}

// UpdateReviewRequest changes rating and/or text.
type UpdateReviewRequest struct {
	Rating *int    `json:"rating" validate:"omitempty,min=1,max=5"`
	Text   *string `json:"text" validate:"omitempty,max=2000"`
}

// Create godoc
// @Summary Submit a review
// @Description Reviews are pending until an admin approves them.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /reviews [post]
func (h *ReviewHandler) Create(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req CreateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	instituteID, err := parseOptionalID(req.InstituteID, "institute_id")
	if err != nil {
		return err
	}
	courseID, err := parseOptionalID(req.CourseID, "course_id")
	if err != nil {
		return err
	}

	review, err := h.svc.Create(c.Request().Context(), actor, service.ReviewInput{
		InstituteID: *instituteID,
		CourseID:    courseID,
		Rating:      req.Rating,
		Text:        req.Text,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, review)
}

// Mine godoc
// @Summary The caller's reviews
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Review
// @Router /reviews/mine [get]
func (h *ReviewHandler) Mine(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	reviews, err := h.svc.ListMine(c.Request().Context(), actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// Update godoc
// @Summary Edit own review
// @Description Only pending reviews can be edited.
// @Tags reviews
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Param request body UpdateReviewRequest true "Changes"
// @Success 200 {object} model.Review
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /reviews/{id} [put]
func (h *ReviewHandler) Update(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req UpdateReviewRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	review, err := h.svc.Update(c.Request().Context(), actor, id, service.ReviewUpdate{
		Rating: req.Rating,
		Text:   req.Text,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, review)
}

// Delete godoc
// @Summary Delete a review
// @Tags reviews
// @Produce json
// @Security BearerAuth
// @Param id path string true "Review ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /reviews/{id} [delete]
func (h *ReviewHandler) Delete(c echo.Context) error {
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
	return c.JSON(http.StatusOK, MessageResponse{Message: "review deleted"})
}
