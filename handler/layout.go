package handler

import (
	"errors"
	"fmt"
	"log"
	"strconv"

	"lab_storage/constants"
	"lab_storage/database"
	"lab_storage/helper"
	"lab_storage/model"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func buildStorageLayout(db *gorm.DB, lab model.Laboratory) (model.StorageLayout, error) {
	var shelves []model.Shelf
	if err := db.Where("lab_id = ?", lab.ID).Order("number ASC").Find(&shelves).Error; err != nil {
		return model.StorageLayout{}, err
	}

	layout := model.StorageLayout{
		LabId:     lab.ID,
		Name:      lab.Name,
		EntranceX: lab.EntranceX,
		EntranceY: lab.EntranceY,
		Shelves:   make([]model.ShelfSummary, 0, len(shelves)),
	}
	for _, shelf := range shelves {
		summary, err := shelfSummary(db, shelf)
		if err != nil {
			return model.StorageLayout{}, err
		}
		layout.Shelves = append(layout.Shelves, summary)
		layout.TotalCapacity += summary.TotalCapacity
		layout.TotalOccupancy += summary.Occupancy
	}
	if pct, err := helper.Utilization(layout.TotalOccupancy, layout.TotalCapacity); err == nil {
		layout.Utilization = utils.Ptr(pct)
	}
	return layout, nil
}

// GetStorageLayout returns the floor plan: entrance, shelves with
// coordinates and utilization, and — when the caller passes viewportW /
// viewportH query params — the fitted rendering scale.
func GetStorageLayout(c *fiber.Ctx) error {
	labId := c.Locals("labId").(uint)
	db := database.DB

	// visibility is decided from the path alone, before any lookup can
	// leak whether the laboratory exists
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

	response := fiber.Map{"layout": layout}
	vw, errW := strconv.ParseFloat(c.Query("viewportW"), 64)
	vh, errH := strconv.ParseFloat(c.Query("viewportH"), 64)
	if errW == nil && errH == nil && vw > 0 && vh > 0 {
		drawableW := vw - 2*helper.LayoutPadding
		drawableH := vh - 2*helper.LayoutPadding
		response["scale"] = helper.FitScale(layout.Shelves, lab.EntranceX, lab.EntranceY, drawableW, drawableH)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, response)
}

// SaveStorageLayout persists a floor-plan edit session: the entrance
// move and every shelf coordinate in one transaction. A failing shelf
// rolls back the whole batch and is named in the response.
func SaveStorageLayout(c *fiber.Ctx) error {
	labId := c.Locals("labId").(uint)
	input, ok := c.Locals("saveLayoutInput").(model.SaveLayoutInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}
	db := database.DB

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !helper.CanManageStorage(role, accountInfo.LabId, labId) {
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	// Advisory lease: warn when another editor holds the floor plan.
	// Correctness does not depend on it (shelf versions do that), so a
	// missing redis only logs.
	if held, err := helper.HoldsLayoutLease(c.Context(), labId, accountInfo.Username); err != nil {
		log.Printf("layout lease check unavailable: %v", err)
	} else if !held {
		return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_CONFLICT,
			"Floor-plan edit lease not held, acquire it before saving", errors.New("lease not held"))
	}

	tx := db.Begin()

	res := tx.Model(&model.Laboratory{}).Where("id = ?", labId).
		Updates(map[string]interface{}{
			"entrance_x": input.Entrance.X,
			"entrance_y": input.Entrance.Y,
		})
	if res.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Laboratory not found", errors.New("laboratory does not exist"))
	}

	for _, sc := range input.Shelves {
		res := tx.Model(&model.Shelf{}).
			Where("id = ? AND lab_id = ? AND version = ?", sc.ID, labId, sc.Version).
			Updates(map[string]interface{}{
				"x":       sc.X,
				"y":       sc.Y,
				"version": sc.Version + 1,
			})
		if res.Error != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, res.Error)
		}
		if res.RowsAffected == 0 {
			tx.Rollback()
			return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_CONFLICT,
				fmt.Sprintf("Shelf %d is missing or was modified by someone else, nothing was saved", sc.ID),
				errors.New("stale shelf version in layout batch"))
		}
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	var lab model.Laboratory
	if err := db.First(&lab, labId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	layout, err := buildStorageLayout(db, lab)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, layout)
}

// AcquireLayoutLease takes or renews the advisory floor-plan edit lease.
func AcquireLayoutLease(c *fiber.Ctx) error {
	labId := c.Locals("labId").(uint)

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !helper.CanManageStorage(role, accountInfo.LabId, labId) {
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	ok, holder, err := helper.AcquireLayoutLease(c.Context(), labId, accountInfo.Username)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Lease service unavailable", err)
	}
	if !ok {
		return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_CONFLICT,
			fmt.Sprintf("Floor plan is being edited by %s", holder), errors.New("lease held by someone else"))
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"labId":  labId,
		"holder": holder,
		"ttl":    helper.LayoutLeaseTTL.Seconds(),
	})
}

func ReleaseLayoutLease(c *fiber.Ctx) error {
	labId := c.Locals("labId").(uint)

	accountInfo, _, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}

	if err := helper.ReleaseLayoutLease(c.Context(), labId, accountInfo.Username); err != nil {
		return utils.ErrorResponse(c, fiber.StatusServiceUnavailable, "Lease service unavailable", err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{"released": true})
}
