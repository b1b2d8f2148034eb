package validate

import (
	"errors"

	"lab_storage/constants"
	"lab_storage/model"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
)

func AdjustOccupancy() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.AdjustOccupancyInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		if err := validate.Struct(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}
		if input.Delta == 0 {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, errors.New("delta must not be zero"))
		}

		c.Locals("adjustOccupancyInput", input)

		return c.Next()
	}
}

func AssignPosition() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.AssignPositionInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		if err := validate.Struct(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}
		if input.ClearClient && input.ClientId != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, errors.New("clientId and clearClient are mutually exclusive"))
		}

		c.Locals("assignPositionInput", input)

		return c.Next()
	}
}

func BulkAssign() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.BulkAssignInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		if err := validate.Struct(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}
		if input.ClearClient && input.ClientId != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, errors.New("clientId and clearClient are mutually exclusive"))
		}

		c.Locals("bulkAssignInput", input)

		return c.Next()
	}
}
