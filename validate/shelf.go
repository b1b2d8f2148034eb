package validate

import (
	"errors"
	"fmt"

	"lab_storage/constants"
	"lab_storage/model"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
)

// Shelf dimension ceilings. Generous, they only keep obviously broken
// payloads out of the provisioning loop.
const (
	MaxShelfRows     = 100
	MaxShelfColumns  = 100
	MaxShelfCapacity = 1000
)

func shelfDimensionsValid(rows, cols, capacity int) error {
	if rows < 1 || cols < 1 || capacity < 1 {
		return errors.New("rows, columns and capacity must be at least 1")
	}
	if rows > MaxShelfRows || cols > MaxShelfColumns || capacity > MaxShelfCapacity {
		return fmt.Errorf("dimensions exceed limits (%dx%d, capacity %d)", MaxShelfRows, MaxShelfColumns, MaxShelfCapacity)
	}
	return nil
}

func shelfLetterValid(letter string) error {
	if len(letter) != 1 || letter[0] < 'A' || letter[0] > 'Z' {
		return errors.New("shelf letter must be a single uppercase character")
	}
	return nil
}

func CreateShelf() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.CreateShelfInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		if err := validate.Struct(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		if err := shelfLetterValid(input.Letter); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_INVALID_DIMENSIONS, "Invalid shelf letter", err)
		}
		if err := shelfDimensionsValid(input.Rows, input.Columns, input.Capacity); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_INVALID_DIMENSIONS, "Invalid shelf dimensions", err)
		}

		c.Locals("createShelfInput", input)

		return c.Next()
	}
}

func EditShelf() fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input model.EditShelfInput
		if err := c.BodyParser(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		if err := validate.Struct(&input); err != nil {
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_BAD_INPUT, constants.ERROR_INPUT, err)
		}

		if input.Letter != nil {
			if err := shelfLetterValid(*input.Letter); err != nil {
				return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_INVALID_DIMENSIONS, "Invalid shelf letter", err)
			}
		}
		if input.Rows != nil || input.Columns != nil || input.Capacity != nil {
			rows, cols, capacity := 1, 1, 1
			if input.Rows != nil {
				rows = *input.Rows
			}
			if input.Columns != nil {
				cols = *input.Columns
			}
			if input.Capacity != nil {
				capacity = *input.Capacity
			}
			if err := shelfDimensionsValid(rows, cols, capacity); err != nil {
				return utils.ErrorResponseKind(c, fiber.StatusBadRequest, constants.KIND_INVALID_DIMENSIONS, "Invalid shelf dimensions", err)
			}
		}

		c.Locals("editShelfInput", input)

		return c.Next()
	}
}
