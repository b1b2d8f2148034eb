package handler

import (
	"errors"
	"fmt"

	"lab_storage/constants"
	"lab_storage/database"
	"lab_storage/helper"
	"lab_storage/model"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jinzhu/copier"
	"gorm.io/gorm"
)

// provisionPositions creates every missing cell of the shelf grid inside
// tx. Cells that already exist (same shelf, same code) are left alone,
// so a retried create is idempotent and a grow only adds the new cells.
func provisionPositions(tx *gorm.DB, shelf *model.Shelf, actor string) error {
	var existing []model.Position
	if err := tx.Where("shelf_id = ?", shelf.ID).Find(&existing).Error; err != nil {
		return err
	}
	have := make(map[string]bool, len(existing))
	for _, p := range existing {
		have[p.Code] = true
	}

	positionsToCreate := []model.Position{}
	historyToCreate := []model.StorageHistory{}
	for row := 0; row < shelf.Rows; row++ {
		for col := 1; col <= shelf.Columns; col++ {
			code := helper.PositionCode(shelf.Letter, row, col)
			if have[code] {
				continue
			}
			positionsToCreate = append(positionsToCreate, model.Position{
				ShelfId:     shelf.ID,
				Row:         row,
				Column:      col,
				Code:        code,
				Capacity:    shelf.Capacity,
				Occupancy:   0,
				IsAvailable: true,
				ClientId:    shelf.ClientId,
				AllowView:   shelf.AllowView,
			})
		}
	}

	if len(positionsToCreate) == 0 {
		return nil
	}
	if err := tx.Create(&positionsToCreate).Error; err != nil {
		return err
	}
	for _, p := range positionsToCreate {
		historyToCreate = append(historyToCreate, model.StorageHistory{
			Ref:        uuid.NewString(),
			PositionId: p.ID,
			Code:       p.Code,
			Action:     constants.ACTION_PROVISION,
			Actor:      actor,
		})
	}
	return tx.Create(&historyToCreate).Error
}

// shelfAggregate sums occupancy and capacity over the shelf's positions.
func shelfAggregate(db *gorm.DB, shelfId uint) (occupancy int64, capacity int64, err error) {
	row := struct {
		Occ int64
		Cap int64
	}{}
	err = db.Model(&model.Position{}).
		Select("COALESCE(SUM(occupancy),0) as occ, COALESCE(SUM(capacity),0) as cap").
		Where("shelf_id = ?", shelfId).
		Scan(&row).Error
	return row.Occ, row.Cap, err
}

func shelfSummary(db *gorm.DB, shelf model.Shelf) (model.ShelfSummary, error) {
	occ, cap, err := shelfAggregate(db, shelf.ID)
	if err != nil {
		return model.ShelfSummary{}, err
	}
	var summary model.ShelfSummary
	if err := copier.Copy(&summary, &shelf); err != nil {
		return model.ShelfSummary{}, err
	}
	summary.TotalCapacity = cap
	summary.Occupancy = occ
	if pct, err := helper.Utilization(occ, cap); err == nil {
		summary.Utilization = utils.Ptr(pct)
		summary.Band = helper.UtilizationBand(pct)
	}
	return summary, nil
}

// canViewLab: reads are staff-wide within the caller's laboratory;
// admins and quality admins see every laboratory.
func canViewLab(role string, callerLabId *uint, targetLabId uint) bool {
	switch role {
	case constants.ROLE_ADMIN, constants.ROLE_QUALITY_ADMIN:
		return true
	case constants.ROLE_QUALITY_MANAGER, constants.ROLE_STAFF:
		return callerLabId != nil && *callerLabId == targetLabId
	default:
		return false
	}
}

func GetShelvesByLab(c *fiber.Ctx) error {
	labId := c.Locals("labId").(uint)

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !canViewLab(role, accountInfo.LabId, labId) {
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	db := database.DB
	var shelves []model.Shelf
	if err := db.Where("lab_id = ?", labId).Order("number ASC").Find(&shelves).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	summaries := make([]model.ShelfSummary, 0, len(shelves))
	for _, shelf := range shelves {
		summary, err := shelfSummary(db, shelf)
		if err != nil {
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		summaries = append(summaries, summary)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summaries)
}

func CreateShelf(c *fiber.Ctx) error {
	db := database.DB
	input, ok := c.Locals("createShelfInput").(model.CreateShelfInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !helper.CanManageStorage(role, accountInfo.LabId, input.LabId) {
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	var lab model.Laboratory
	if err := db.First(&lab, input.LabId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Laboratory not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if input.ClientId != nil {
		var client model.Client
		if err := db.First(&client, *input.ClientId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Client not found", err)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
	}

	tx := db.Begin()

	var letterCount int64
	if err := tx.Model(&model.Shelf{}).Where("lab_id = ? AND letter = ?", input.LabId, input.Letter).Count(&letterCount).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if letterCount > 0 {
		tx.Rollback()
		return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_DUPLICATE_SHELF_LETTER,
			fmt.Sprintf("Shelf letter %q is already used in this laboratory", input.Letter), errors.New("duplicate shelf letter"))
	}

	var maxNumber int64
	if err := tx.Model(&model.Shelf{}).Where("lab_id = ?", input.LabId).
		Select("COALESCE(MAX(number),0)").Scan(&maxNumber).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	allowView := false
	if input.AllowView != nil {
		allowView = *input.AllowView
	}
	newShelf := &model.Shelf{
		LabId:     input.LabId,
		Number:    uint(maxNumber) + 1,
		Letter:    input.Letter,
		Rows:      input.Rows,
		Columns:   input.Columns,
		Capacity:  input.Capacity,
		X:         input.X,
		Y:         input.Y,
		ClientId:  input.ClientId,
		AllowView: allowView,
	}

	if err := tx.Create(newShelf).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_CREATE, err)
	}

	if err := provisionPositions(tx, newShelf, accountInfo.Username); err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Provisioning positions failed", err)
	}

	var createdShelf model.Shelf
	if err := tx.Preload("Positions").Preload("Client").First(&createdShelf, newShelf.ID).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusCreated, createdShelf)
}

func GetShelfById(c *fiber.Ctx) error {
	shelfId := c.Locals("shelfId").(uint)
	db := database.DB

	var shelf model.Shelf
	if err := db.Preload("Client").First(&shelf, shelfId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Shelf not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !canViewLab(role, accountInfo.LabId, shelf.LabId) {
		// invisible resources are indistinguishable from missing ones
		return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Shelf not found", errors.New("not permission"))
	}

	summary, err := shelfSummary(db, shelf)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, summary)
}

func ShelfUtilization(c *fiber.Ctx) error {
	shelfId := c.Locals("shelfId").(uint)
	db := database.DB

	var shelf model.Shelf
	if err := db.First(&shelf, shelfId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Shelf not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !canViewLab(role, accountInfo.LabId, shelf.LabId) {
		// invisible resources are indistinguishable from missing ones
		return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Shelf not found", errors.New("not permission"))
	}

	occ, cap, err := shelfAggregate(db, shelfId)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	pct, err := helper.Utilization(occ, cap)
	if err != nil {
		// a shelf with zero governed capacity has no defined utilization
		return utils.ErrorResponseKind(c, fiber.StatusUnprocessableEntity, constants.KIND_ZERO_CAPACITY, "Shelf has no capacity", err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"shelfId":     shelfId,
		"occupancy":   occ,
		"capacity":    cap,
		"utilization": pct,
		"band":        helper.UtilizationBand(pct),
	})
}

func EditShelf(c *fiber.Ctx) error {
	db := database.DB
	shelfId := c.Locals("shelfId").(uint)
	input, ok := c.Locals("editShelfInput").(model.EditShelfInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	tx := db.Begin()
	var shelf model.Shelf
	if err := tx.Preload("Positions").First(&shelf, shelfId).Error; err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Shelf not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		tx.Rollback()
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !canViewLab(role, accountInfo.LabId, shelf.LabId) {
		tx.Rollback()
		// invisible resources are indistinguishable from missing ones
		return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Shelf not found", errors.New("not permission"))
	}
	if !helper.CanManageStorage(role, accountInfo.LabId, shelf.LabId) {
		tx.Rollback()
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	if input.Version != shelf.Version {
		tx.Rollback()
		return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_CONFLICT,
			"Shelf was modified by someone else, re-fetch and retry", errors.New("stale version"))
	}

	newRows := shelf.Rows
	newCols := shelf.Columns
	if input.Rows != nil {
		newRows = *input.Rows
	}
	if input.Columns != nil {
		newCols = *input.Columns
	}

	// Shrinking may only remove empty cells.
	if newRows < shelf.Rows || newCols < shelf.Columns {
		var occupiedOutside int64
		if err := tx.Model(&model.Position{}).
			Where("shelf_id = ? AND occupancy > 0 AND (row_index >= ? OR col_index > ?)", shelf.ID, newRows, newCols).
			Count(&occupiedOutside).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		if occupiedOutside > 0 {
			tx.Rollback()
			return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_CONFLICT,
				fmt.Sprintf("Cannot shrink shelf: %d removed position(s) still hold samples", occupiedOutside),
				errors.New("occupied positions outside new dimensions"))
		}

		var removed []model.Position
		if err := tx.Where("shelf_id = ? AND (row_index >= ? OR col_index > ?)", shelf.ID, newRows, newCols).
			Find(&removed).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		if len(removed) > 0 {
			if err := tx.Where("shelf_id = ? AND (row_index >= ? OR col_index > ?)", shelf.ID, newRows, newCols).
				Delete(&model.Position{}).Error; err != nil {
				tx.Rollback()
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
			}
			audit := make([]model.StorageHistory, 0, len(removed))
			for _, p := range removed {
				audit = append(audit, model.StorageHistory{
					Ref:        uuid.NewString(),
					PositionId: p.ID,
					Code:       p.Code,
					Action:     constants.ACTION_SHRINK_DELETE,
					Actor:      accountInfo.Username,
					Note:       "position removed by shelf resize",
				})
			}
			if err := tx.Create(&audit).Error; err != nil {
				tx.Rollback()
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
			}
		}
	}

	// Default capacity may not drop below any position's current load.
	if input.Capacity != nil && *input.Capacity != shelf.Capacity {
		var overloaded int64
		if err := tx.Model(&model.Position{}).
			Where("shelf_id = ? AND occupancy > ?", shelf.ID, *input.Capacity).
			Count(&overloaded).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		if overloaded > 0 {
			tx.Rollback()
			return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_CONFLICT,
				fmt.Sprintf("Cannot lower capacity: %d position(s) hold more samples than the new capacity", overloaded),
				errors.New("occupancy above new capacity"))
		}
		// positions still on the old default follow the shelf; diverged
		// positions keep their own capacity
		if err := tx.Model(&model.Position{}).
			Where("shelf_id = ? AND capacity = ?", shelf.ID, shelf.Capacity).
			UpdateColumn("capacity", *input.Capacity).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
		}
		shelf.Capacity = *input.Capacity
	}

	// Letter rename regenerates every position code on the shelf.
	if input.Letter != nil && *input.Letter != shelf.Letter {
		var letterCount int64
		if err := tx.Model(&model.Shelf{}).
			Where("lab_id = ? AND letter = ? AND id <> ?", shelf.LabId, *input.Letter, shelf.ID).
			Count(&letterCount).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		if letterCount > 0 {
			tx.Rollback()
			return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_DUPLICATE_SHELF_LETTER,
				fmt.Sprintf("Shelf letter %q is already used in this laboratory", *input.Letter), errors.New("duplicate shelf letter"))
		}

		var positions []model.Position
		if err := tx.Where("shelf_id = ?", shelf.ID).Find(&positions).Error; err != nil {
			tx.Rollback()
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		for _, p := range positions {
			newCode := helper.PositionCode(*input.Letter, p.Row, p.Column)
			if err := tx.Model(&model.Position{}).Where("id = ?", p.ID).
				UpdateColumn("code", newCode).Error; err != nil {
				tx.Rollback()
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
			}
			if err := tx.Create(&model.StorageHistory{
				Ref:        uuid.NewString(),
				PositionId: p.ID,
				Code:       newCode,
				Action:     constants.ACTION_CODE_RENAME,
				Actor:      accountInfo.Username,
				Note:       fmt.Sprintf("code %s renamed to %s", p.Code, newCode),
			}).Error; err != nil {
				tx.Rollback()
				return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
			}
		}
		shelf.Letter = *input.Letter
	}

	if input.ClearClient {
		shelf.ClientId = nil
	} else if input.ClientId != nil {
		var client model.Client
		if err := tx.First(&client, *input.ClientId).Error; err != nil {
			tx.Rollback()
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Client not found", err)
			}
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
		}
		shelf.ClientId = input.ClientId
	}
	if input.AllowView != nil {
		shelf.AllowView = *input.AllowView
	}
	if input.X != nil {
		shelf.X = *input.X
	}
	if input.Y != nil {
		shelf.Y = *input.Y
	}

	shelf.Rows = newRows
	shelf.Columns = newCols

	// Optimistic write: the version column guards against a concurrent
	// editor that slipped in after our initial read.
	res := tx.Model(&model.Shelf{}).
		Where("id = ? AND version = ?", shelf.ID, input.Version).
		Updates(map[string]interface{}{
			"letter":     shelf.Letter,
			"rows":       shelf.Rows,
			"columns":    shelf.Columns,
			"capacity":   shelf.Capacity,
			"x":          shelf.X,
			"y":          shelf.Y,
			"client_id":  shelf.ClientId,
			"allow_view": shelf.AllowView,
			"version":    input.Version + 1,
		})
	if res.Error != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, res.Error)
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_CONFLICT,
			"Shelf was modified by someone else, re-fetch and retry", errors.New("stale version"))
	}
	shelf.Version = input.Version + 1

	// Grow provisions only the cells that do not exist yet.
	if err := provisionPositions(tx, &shelf, accountInfo.Username); err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, "Provisioning positions failed", err)
	}

	var updatedShelf model.Shelf
	if err := tx.Preload("Positions").Preload("Client").First(&updatedShelf, shelf.ID).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, updatedShelf)
}

func DeleteShelf(c *fiber.Ctx) error {
	db := database.DB
	arrayId := c.Locals("deleteIds").(model.ArrayId)
	ids := arrayId.IDs

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}

	tx := db.Begin()

	var shelves []model.Shelf
	if err := tx.Where("id IN ?", ids).Find(&shelves).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if len(shelves) != len(ids) {
		tx.Rollback()
		return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, constants.NOT_FOUND_RECORDS, errors.New("some shelves do not exist"))
	}
	for _, shelf := range shelves {
		if !canViewLab(role, accountInfo.LabId, shelf.LabId) {
			tx.Rollback()
			// invisible resources are indistinguishable from missing ones
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, constants.NOT_FOUND_RECORDS, errors.New("not permission"))
		}
		if !helper.CanManageStorage(role, accountInfo.LabId, shelf.LabId) {
			tx.Rollback()
			return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
		}
	}

	// Server-side guard: a shelf that still holds samples cannot go.
	var occupied int64
	if err := tx.Model(&model.Position{}).
		Where("shelf_id IN ? AND occupancy > 0", ids).
		Count(&occupied).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	if occupied > 0 {
		tx.Rollback()
		return utils.ErrorResponseKind(c, fiber.StatusConflict, constants.KIND_CONFLICT,
			fmt.Sprintf("Cannot delete: %d position(s) still hold samples", occupied),
			errors.New("occupied positions exist"))
	}

	if err := tx.Where("shelf_id IN ?", ids).Delete(&model.Position{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_DELETE, err)
	}
	if err := tx.Where("id IN ?", ids).Delete(&model.Shelf{}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_DELETE, err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, fiber.Map{
		"ids":     ids,
		"deleted": true,
	})
}
