package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"edulist/internal/service"
)

// FacilityHandler serves the facility catalogue.
type FacilityHandler struct {
	svc service.FacilityService
}

// NewFacilityHandler creates a facility handler.
func NewFacilityHandler(svc service.FacilityService) *FacilityHandler {
	return &FacilityHandler{svc: svc}
}

// FacilityRequest is a new catalogue entry.
type FacilityRequest struct {
	Name string `json:"name" validate:"required,max=100"`
	Icon string `json:"icon" validate:"omitempty,max=255"`
}

// List godoc
// @Summary List facilities
// @Tags facilities
// @Produce json
// @Success 200 {array} model.Facility
// @Router /facilities [get]
func (h *FacilityHandler) List(c echo.Context) error {
	facilities, err := h.svc.List(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, facilities)
}

// Create godoc
// @Summary Add a facility
// @Tags facilities
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body FacilityRequest true "Facility"
// @Success 201 {object} model.Facility
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /facilities [post]
func (h *FacilityHandler) Create(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req FacilityRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	facility, err := h.svc.Create(c.Request().Context(), actor, req.Name, req.Icon)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusCreated, facility)
}

// Delete godoc
// @Summary Remove a facility
// @Tags facilities
// @Produce json
// @Security BearerAuth
// @Param id path string true "Facility ID"
// @Success 200 {object} MessageResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /facilities/{id} [delete]
func (h *FacilityHandler) Delete(c echo.Context) error {
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
	return c.JSON(http.StatusOK, MessageResponse{Message: "facility deleted"})
}
