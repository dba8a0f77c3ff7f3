package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"edulist/internal/errors"
	"edulist/internal/service"
	"edulist/internal/workflow"
)

// AdminHandler serves moderation and administration endpoints.
type AdminHandler struct {
	moderation service.ModerationService
	analytics  service.AnalyticsService
	listing    service.ListingService
	users      service.UserService
	reviews    service.ReviewService
	enquiries  service.EnquiryService
}

// AdminServices groups the services behind the admin endpoints.
type AdminServices struct {
	Moderation service.ModerationService
	Analytics  service.AnalyticsService
	Listing    service.ListingService
	Users      service.UserService
	Reviews    service.ReviewService
	Enquiries  service.EnquiryService
}

// NewAdminHandler creates an admin handler.
func NewAdminHandler(s AdminServices) *AdminHandler {
	return &AdminHandler{
		moderation: s.Moderation,
		analytics:  s.Analytics,
		listing:    s.Listing,
		users:      s.Users,
		reviews:    s.Reviews,
		enquiries:  s.Enquiries,
	}
}

// DecisionRequest carries a moderation verdict. Either field is accepted;
// status wins when both are set.
type DecisionRequest struct {
	Status   string `json:"status"`
	Decision string `json:"decision"`
}

func (r DecisionRequest) value() string {
	if r.Status != "" {
		return r.Status
	}
	return r.Decision
}

// FeaturedRequest toggles the featured flag.
type FeaturedRequest struct {
	Featured *bool `json:"featured" validate:"required"`
}

func parseEntity(c echo.Context) (workflow.EntityType, error) {
	entity, err := workflow.ParseEntityType(c.Param("entity"))
	if err != nil {
		return "", echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{
			Error: "unknown entity " + c.Param("entity"),
			Code:  "INVALID_ENTITY",
		})
	}
	return entity, nil
}

// Analytics godoc
// @Summary Dashboard statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.DashboardStats
// @Failure 403 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/analytics [get]
func (h *AdminHandler) Analytics(c echo.Context) error {
	stats, err := h.analytics.ComputeDashboardStats(c.Request().Context())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Pending godoc
// @Summary Pending entities of one kind
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param entity path string true "users, institutes or reviews"
// @Success 200 {object} service.PendingList
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/pending/{entity} [get]
func (h *AdminHandler) Pending(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	entity, err := parseEntity(c)
	if err != nil {
		return err
	}
	list, err := h.moderation.ListPending(c.Request().Context(), actor, entity)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, list)
}

// Decide godoc
// @Summary Approve or reject a pending entity
// @Description Body is {"status":"approved"} or {"decision":"approve"}.
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param entity path string true "users, institutes or reviews"
// @Param id path string true "Entity ID"
// @Param request body DecisionRequest true "Decision"
// @Success 200 {object} service.ModerationResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /admin/{entity}/{id}/status [put]
func (h *AdminHandler) Decide(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	entity, err := parseEntity(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req DecisionRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	result, err := h.moderation.ApproveOrReject(c.Request().Context(), actor, entity, id, req.value())
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

// SetFeatured godoc
// @Summary Feature or unfeature an approved institute
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Institute ID"
// @Param request body FeaturedRequest true "Featured flag"
// @Success 200 {object} model.Institute
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/institutes/{id}/featured [put]
func (h *AdminHandler) SetFeatured(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	var req FeaturedRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	inst, err := h.moderation.SetFeatured(c.Request().Context(), actor, id, *req.Featured)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, inst)
}

// Institutes godoc
// @Summary List institutes of any status
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Param search query string false "Search"
// @Param category query string false "Category"
// @Param city query string false "City"
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} service.InstitutePage
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/institutes [get]
func (h *AdminHandler) Institutes(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	q, err := parseQuery(c)
	if err != nil {
		return err
	}
	page, err := h.listing.AdminListInstitutes(c.Request().Context(), actor, c.QueryParam("status"), q)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, page)
}

// Users godoc
// @Summary List accounts
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param role query string false "user, institute or admin"
// @Param status query string false "pending, approved or rejected"
// @Success 200 {array} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) Users(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	users, err := h.users.ListUsers(c.Request().Context(), actor, c.QueryParam("role"), c.QueryParam("status"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, users)
}

// Reviews godoc
// @Summary List reviews
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param status query string false "pending, approved or rejected"
// @Success 200 {array} model.Review
// @Router /admin/reviews [get]
func (h *AdminHandler) Reviews(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	reviews, err := h.reviews.ListAll(c.Request().Context(), actor, c.QueryParam("status"))
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, reviews)
}

// Enquiries godoc
// @Summary List all enquiries
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Enquiry
// @Router /admin/enquiries [get]
func (h *AdminHandler) Enquiries(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	enquiries, err := h.enquiries.ListAll(c.Request().Context(), actor)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, enquiries)
}

// DeleteUser godoc
// @Summary Delete an account and everything it owns
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param id path string true "User ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/users/{id} [delete]
func (h *AdminHandler) DeleteUser(c echo.Context) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	id, err := paramID(c, "id")
	if err != nil {
		return err
	}
	if err := h.users.DeleteUser(c.Request().Context(), actor, id); err != nil {
		return serviceError(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "user deleted"})
}
