package handler

import (
	"errors"

	"lab_storage/constants"
	"lab_storage/database"
	"lab_storage/helper"
	"lab_storage/model"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Laboratories are created by lab management, not here; the storage
// engine only reads them and moves their entrance on floor-plan edits.
func GetLaboratories(c *fiber.Ctx) error {
	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}

	db := database.DB
	var labs []model.Laboratory

	query := db.Order("name ASC")
	switch role {
	case constants.ROLE_ADMIN, constants.ROLE_QUALITY_ADMIN:
		// all laboratories
	case constants.ROLE_QUALITY_MANAGER, constants.ROLE_STAFF:
		if accountInfo.LabId == nil {
			return utils.SuccessResponse(c, fiber.StatusOK, []model.Laboratory{})
		}
		query = query.Where("id = ?", *accountInfo.LabId)
	default:
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	if err := query.Find(&labs).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, labs)
}

func GetLaboratoryById(c *fiber.Ctx) error {
	labId := c.Locals("labId").(uint)
	db := database.DB

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !canViewLab(role, accountInfo.LabId, labId) {
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	var lab model.Laboratory
	if err := db.First(&lab, labId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Laboratory not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	layout, err := buildStorageLayout(db, lab)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, layout)
}
