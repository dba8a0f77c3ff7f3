package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"edulist/internal/service"
)

// EnquiryHandler handles enquiries and their follow-up.
type EnquiryHandler struct {
	svc service.EnquiryService
}

// NewEnquiryHandler creates an enquiry handler.
func NewEnquiryHandler(svc service.EnquiryService) *EnquiryHandler {
	return &EnquiryHandler{svc: svc}
}

// CreateEnquiryRequest represents a contact request. Contact fields may be
// omitted by signed-in callers.
type CreateEnquiryRequest struct {
	InstituteID string `json:"institute_id" validate:"required,uuid"`
	CourseID    string `json:"course_id" validate:"omitempty,uuid"`
	Name        string `json:"name" validate:"max=200"`
	Email       string `json:"email" validate:"omitempty,email"`
	Phone       string `json:"phone" validate:"max=32"`
	Message     string `json:"message" validate:"required,max=5000"`
}

// RespondRequest carries the owner's response.
type RespondRequest struct {
	Response string `json:"response" validate:"required"`
}

// EnquiryStatusRequest moves an enquiry forward.
type EnquiryStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Create godoc
// @Summary Send an enquiry
// @Tags enquiries
// @Accept json
// @Produce json
// @Param request body CreateEnquiryRequest true "Enquiry"
// @Success 201 {object} model.Enquiry
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /enquiries [post]
func (h *EnquiryHandler) Create(c echo.Context) error {
	var req CreateEnquiryRequest
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

	var actor *service.Actor
	if a, ok := CurrentActor(c); ok {
		actor = &a
	}
	enquiry, err := h.svc.Create(c.Request().Context(), actor, service.EnquiryInput{
		InstituteID: *instituteID,
		CourseID:    courseID,
		Name:        req.Name,
		Email:       req.Email,
		Phone:       req.Phone,
		Message:     req.Message,
	})
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, enquiry)
}

// Mine godoc
// @Summary Enquiries sent by the caller
// @Tags enquiries
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Enquiry
// @Router /enquiries/mine [get]
func (h *EnquiryHandler) Mine(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	enquiries, err := h.svc.ListMine(c.Request().Context(), actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, enquiries)
}

// ForInstitute godoc
// @Summary Enquiries received by the caller's institute
// @Tags enquiries
// @Produce json
// @Security BearerAuth
// @Param status query string false "new, contacted or resolved"
// @Success 200 {array} model.Enquiry
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /enquiries/institute [get]
func (h *EnquiryHandler) ForInstitute(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	enquiries, err := h.svc.ListForOwner(c.Request().Context(), actor, c.QueryParam("status"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, enquiries)
}

// Respond godoc
// @Summary Respond to an enquiry
// @Tags enquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enquiry ID"
// @Param request body RespondRequest true "Response"
// @Success 200 {object} model.Enquiry
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /enquiries/{id}/respond [put]
func (h *EnquiryHandler) Respond(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req RespondRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	enquiry, err := h.svc.Respond(c.Request().Context(), actor, id, req.Response)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, enquiry)
}

// UpdateStatus godoc
// @Summary Advance an enquiry
// @Description Status only moves forward: new, contacted, resolved.
// @Tags enquiries
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Enquiry ID"
// @Param request body EnquiryStatusRequest true "Status"
// @Success 200 {object} model.Enquiry
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /enquiries/{id}/status [put]
func (h *EnquiryHandler) UpdateStatus(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req EnquiryStatusRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	enquiry, err := h.svc.Advance(c.Request().Context(), actor, id, req.Status)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, enquiry)
}
