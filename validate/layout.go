package validate

import (
	"lab_storage/constants"
	"lab_storage/model"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
)

func SaveLayout() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.SaveLayoutInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		if err := validate.Struct(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		c.Locals("saveLayoutInput", input)

		return c.Next()
	}
}
