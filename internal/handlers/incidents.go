package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/caseworks/licensure-materials/internal/services"
	"github.com/caseworks/licensure-materials/internal/utils"
	"gorm.io/gorm"
)

// IncidentHandler handles applicant-added incident routes
type IncidentHandler struct {
	DB *gorm.DB
}

// CreateIncident handles POST /api/materials/applications/:application/incidents
// @Summary Add an incident manually
// @Description Record an incident the questionnaire did not derive and generate its document slots
// @Tags Incidents
// @Accept json
// @Produce json
// @Param application path string true "Application ID"
// @Param incident body services.UserIncidentInput true "Incident detail"
// @Success 201 {object} models.Incident
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /materials/applications/{application}/incidents [post]
func (h *IncidentHandler) CreateIncident(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "materials.incident.create")
	}

	var input services.UserIncidentInput
	if err := decodeStrict(c, &input); err != nil {
		return utils.ErrorResponse(c, "Invalid incident payload: "+err.Error(),
			fiber.StatusBadRequest, "materials.incident.create")
	}

	incident, err := services.CreateUserIncident(h.DB, c.Params("application"), userID, input)
	if err != nil {
		return serviceErrorResponse(c, err, "materials.incident.create")
	}
	return utils.SuccessResponse(c, incident, fiber.StatusCreated)
}
