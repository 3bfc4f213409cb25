package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/caseworks/licensure-materials/internal/blob"
	"github.com/caseworks/licensure-materials/internal/services"
	"github.com/caseworks/licensure-materials/internal/utils"
	"gorm.io/gorm"
)

// UploadHandler handles slot upload and file routes
type UploadHandler struct {
	DB     *gorm.DB
	Signer blob.Signer
}

// beginUploadRequest is the client's upload announcement.
type beginUploadRequest struct {
	OriginalFilename string `json:"original_filename"`
	MimeType         string `json:"mime_type"`
}

// waiveRequest carries the applicant's reason for waiving a slot.
type waiveRequest struct {
	Reason string `json:"reason"`
}

// BeginUpload handles POST /api/materials/slots/:slot/uploads
// @Summary Begin an upload into a slot
// @Description Reserve the next version and return a signed PUT URL; nothing is persisted until completion
// @Tags Uploads
// @Accept json
// @Produce json
// @Param slot path string true "Slot ID"
// @Param upload body beginUploadRequest true "Upload announcement"
// @Success 200 {object} services.BeginUploadResult
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /materials/slots/{slot}/uploads [post]
func (h *UploadHandler) BeginUpload(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "materials.upload.begin")
	}

	var req beginUploadRequest
	if err := decodeStrict(c, &req); err != nil {
		return utils.ErrorResponse(c, "Invalid upload payload: "+err.Error(),
			fiber.StatusBadRequest, "materials.upload.begin")
	}

	result, err := services.BeginUpload(c.Context(), h.DB, h.Signer,
		c.Params("slot"), userID, req.OriginalFilename, req.MimeType)
	if err != nil {
		return serviceErrorResponse(c, err, "materials.upload.begin")
	}
	return utils.SuccessResponse(c, result, fiber.StatusOK)
}

// CompleteUpload handles POST /api/materials/slots/:slot/uploads/complete
// @Summary Complete an upload
// @Description Record the uploaded file as the slot's active version, superseding prior versions
// @Tags Uploads
// @Accept json
// @Produce json
// @Param slot path string true "Slot ID"
// @Param upload body services.CompleteUploadInput true "Completed upload detail"
// @Success 201 {object} services.FileSummary
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 409 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /materials/slots/{slot}/uploads/complete [post]
func (h *UploadHandler) CompleteUpload(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "materials.upload.complete")
	}

	var input services.CompleteUploadInput
	if err := decodeStrict(c, &input); err != nil {
		return utils.ErrorResponse(c, "Invalid completion payload: "+err.Error(),
			fiber.StatusBadRequest, "materials.upload.complete")
	}

	file, err := services.CompleteUpload(h.DB, c.Params("slot"), userID, input)
	if err != nil {
		return serviceErrorResponse(c, err, "materials.upload.complete")
	}
	return utils.SuccessResponse(c, file, fiber.StatusCreated)
}

// ListSlotFiles handles GET /api/materials/slots/:slot/files
// @Summary List a slot's file versions
// @Description Full version history for a slot, oldest first, active version flagged
// @Tags Uploads
// @Produce json
// @Param slot path string true "Slot ID"
// @Success 200 {array} services.FileSummary
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /materials/slots/{slot}/files [get]
func (h *UploadHandler) ListSlotFiles(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "materials.slot.files")
	}

	files, err := services.SlotFiles(h.DB, c.Params("slot"), userID)
	if err != nil {
		return serviceErrorResponse(c, err, "materials.slot.files")
	}
	return utils.SuccessResponse(c, files, fiber.StatusOK)
}

// WaiveSlot handles POST /api/materials/slots/:slot/waive
// @Summary Waive a document slot
// @Description Mark a slot waived with a reason; slots holding an upload cannot be waived
// @Tags Uploads
// @Accept json
// @Produce json
// @Param slot path string true "Slot ID"
// @Param waiver body waiveRequest true "Waive reason"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} utils.ErrorResponseStruct
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /materials/slots/{slot}/waive [post]
func (h *UploadHandler) WaiveSlot(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "materials.slot.waive")
	}

	var req waiveRequest
	if err := decodeStrict(c, &req); err != nil {
		return utils.ErrorResponse(c, "Invalid waive payload: "+err.Error(),
			fiber.StatusBadRequest, "materials.slot.waive")
	}

	if err := services.WaiveSlot(h.DB, c.Params("slot"), userID, req.Reason); err != nil {
		return serviceErrorResponse(c, err, "materials.slot.waive")
	}
	return utils.SuccessResponse(c, fiber.Map{"ok": true}, fiber.StatusOK)
}

// DownloadFile handles GET /api/materials/files/:file/download
// @Summary Get a download URL for a file
// @Description Issue a time-limited signed GET URL for a recorded file version
// @Tags Uploads
// @Produce json
// @Param file path string true "File ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} utils.ErrorResponseStruct
// @Failure 500 {object} utils.ErrorResponseStruct
// @Router /materials/files/{file}/download [get]
func (h *UploadHandler) DownloadFile(c *fiber.Ctx) error {
	userID, err := currentUserID(c)
	if err != nil {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusForbidden, "materials.file.download")
	}

	url, err := services.FileDownloadURL(c.Context(), h.DB, h.Signer, c.Params("file"), userID)
	if err != nil {
		return serviceErrorResponse(c, err, "materials.file.download")
	}
	return utils.SuccessResponse(c, fiber.Map{"download_url": url}, fiber.StatusOK)
}
