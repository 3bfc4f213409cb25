package handlers

import (
	"bytes"
	"encoding/json"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/caseworks/licensure-materials/internal/types"
	"github.com/caseworks/licensure-materials/internal/utils"
)

// currentUserID reads the authenticated user id the auth middleware stored.
func currentUserID(c *fiber.Ctx) (string, error) {
	id, _ := c.Locals("userID").(string)
	if id == "" {
		return "", errors.New("no authenticated user in request context")
	}
	return id, nil
}

// decodeStrict unmarshals a JSON request body rejecting unknown fields, so a
// misspelled questionnaire key fails loudly instead of silently reading as
// "no".
func decodeStrict(c *fiber.Ctx, out interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(c.Body()))
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return err
	}
	return nil
}

// serviceErrorResponse maps an engine error kind onto the response envelope.
func serviceErrorResponse(c *fiber.Ctx, err error, fallbackType string) error {
	var ce *types.CustomError
	if !errors.As(err, &ce) {
		return utils.ErrorResponse(c, err.Error(), fiber.StatusInternalServerError, fallbackType)
	}
	switch ce.Kind {
	case types.KindNotFound:
		return utils.NotFoundResponse(c, ce.Message)
	case types.KindValidation:
		return utils.ErrorResponse(c, ce.Message, fiber.StatusBadRequest, ce.Type)
	case types.KindConflict:
		return utils.ConflictResponse(c, ce.Message, ce.Type)
	case types.KindForbidden:
		return utils.ErrorResponse(c, ce.Message, fiber.StatusForbidden, ce.Type)
	default:
		return utils.ErrorResponse(c, ce.Message, fiber.StatusInternalServerError, ce.Type)
	}
}
