package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/caseworks/licensure-materials/internal/services"
	"github.com/caseworks/licensure-materials/internal/utils"
	"gorm.io/gorm"
)

// PlanHandler handles materials-plan routes
type PlanHandler struct {
	DB *gorm.DB
}

// RecomputePlan handles POST /api/materials/applications/:application/plan
// @Summary Recompute the materials plan from disclosure answers
// @Description Derive incidents and document slots from the questionnaire; idempotent per answer set
// @Tags Plan
// @Accept json
// @Produce json
// @Param application path string true "Application ID"
// @Param answers body services.DisclosureAnswers true "Disclosure answers"
// @Success 200 {object} services.Checklist
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /materials/applications/{application}/plan [post]
func (h *PlanHandler) RecomputePlan(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "materials.plan.recompute")
	}
	applicationID := c.Params("application")

	var answers services.DisclosureAnswers
	if err := decodeStrict(c, &answers); err != nil {
		return utils.ErrorResponse(c, "Invalid answers payload: "+err.Error(),
			fiber.StatusBadRequest, "materials.plan.recompute")
	}

	// Ownership gate: the checklist query 404s for apps the caller does not
	// own, so run it first and reuse its result as the response body.
	if _, err := services.ApplicationChecklist(h.DB, applicationID, userID); err != nil {
		return serviceErrorResponse(c, err, "materials.plan.recompute")
	}

	if err := services.RecomputePlan(h.DB, applicationID, answers); err != nil {
		return serviceErrorResponse(c, err, "materials.plan.recompute")
	}

	checklist, err := services.ApplicationChecklist(h.DB, applicationID, userID)
	if err != nil {
		return serviceErrorResponse(c, err, "materials.plan.recompute")
	}
	return utils.SuccessResponse(c, checklist, fiber.StatusOK)
}

// GetChecklist handles GET /api/materials/applications/:application/checklist
// @Summary Get the materials checklist
// @Description Active incidents, slots, and current files for an application
// @Tags Plan
// @Produce json
// @Param application path string true "Application ID"
// @Success 200 {object} services.Checklist
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /materials/applications/{application}/checklist [get]
func (h *PlanHandler) GetChecklist(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "materials.checklist")
	}

	checklist, err := services.ApplicationChecklist(h.DB, c.Params("application"), userID)
	if err != nil {
		return serviceErrorResponse(c, err, "materials.checklist")
	}
	return utils.SuccessResponse(c, checklist, fiber.StatusOK)
}
