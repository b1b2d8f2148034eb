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
	"gorm.io/gorm"
)

// GetShelfPositions returns the shelf metadata, the R×C grid (nil cells
// where no governed position exists, possible after a shrink) and the
// flat position list.
func GetShelfPositions(c *fiber.Ctx) error {
	shelfId := c.Locals("shelfId").(uint)
	db := database.DB

	var shelf model.Shelf
	if err := db.Preload("Positions", func(db *gorm.DB) *gorm.DB {
		return db.Order("row_index ASC, col_index ASC")
	}).First(&shelf, shelfId).Error; err != nil {
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

	grid := make([][]*model.Position, shelf.Rows)
	for r := range grid {
		grid[r] = make([]*model.Position, shelf.Columns)
	}
	for i := range shelf.Positions {
		p := &shelf.Positions[i]
		if p.Row < shelf.Rows && p.Column >= 1 && p.Column <= shelf.Columns {
			grid[p.Row][p.Column-1] = p
		}
	}

	summary, err := shelfSummary(db, shelf)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, model.PositionGrid{
		Shelf:     summary,
		Grid:      grid,
		Positions: shelf.Positions,
	})
}

// AdjustOccupancy applies a sample intake/removal delta as one
// conditional UPDATE, so two concurrent movements on the same position
// cannot lose each other's write.
func AdjustOccupancy(c *fiber.Ctx) error {
	db := database.DB
	positionId := c.Locals("positionId").(uint)
	input, ok := c.Locals("adjustOccupancyInput").(model.AdjustOccupancyInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	var position model.Position
	if err := db.Preload("Shelf").First(&position, positionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Position not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !canViewLab(role, accountInfo.LabId, position.Shelf.LabId) {
		// invisible resources are indistinguishable from missing ones
		return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Position not found", errors.New("not permission"))
	}
	if !helper.CanManageStorage(role, accountInfo.LabId, position.Shelf.LabId) {
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	tx := db.Begin()

	kind, err := applyOccupancyDelta(tx, positionId, input.Delta)
	if err != nil {
		tx.Rollback()
		switch kind {
		case constants.KIND_NOT_FOUND:
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, kind, "Position not found", err)
		case constants.KIND_CAPACITY_EXCEEDED:
			return utils.ErrorResponseKind(c, fiber.StatusConflict, kind,
				fmt.Sprintf("Position %s cannot take %d more sample(s)", position.Code, input.Delta), err)
		case constants.KIND_NEGATIVE_OCCUPANCY:
			return utils.ErrorResponseKind(c, fiber.StatusConflict, kind,
				fmt.Sprintf("Position %s does not hold %d sample(s)", position.Code, -input.Delta), err)
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
		}
	}

	if err := tx.Create(&model.StorageHistory{
		Ref:        uuid.NewString(),
		PositionId: position.ID,
		Code:       position.Code,
		Action:     constants.ACTION_OCCUPANCY,
		Actor:      accountInfo.Username,
		Delta:      input.Delta,
		Note:       input.Note,
	}).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
	}

	var updated model.Position
	if err := tx.First(&updated, positionId).Error; err != nil {
		tx.Rollback()
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	if err := tx.Commit().Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, updated)
}

// applyOccupancyDelta is the conditional movement write: one UPDATE that
// only lands while occupancy + delta stays in [0, capacity]. A zero-row
// result is classified by re-reading the row, because the position may
// also have been deleted between the caller's load and the UPDATE.
func applyOccupancyDelta(tx *gorm.DB, positionId uint, delta int) (string, error) {
	res := tx.Model(&model.Position{}).
		Where("id = ? AND occupancy + ? >= 0 AND occupancy + ? <= capacity", positionId, delta, delta).
		UpdateColumn("occupancy", gorm.Expr("occupancy + ?", delta))
	if res.Error != nil {
		return constants.KIND_INTERNAL, res.Error
	}
	if res.RowsAffected > 0 {
		return "", nil
	}

	var current model.Position
	if err := tx.First(&current, positionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return constants.KIND_NOT_FOUND, errors.New("position does not exist")
		}
		return constants.KIND_INTERNAL, err
	}
	if delta > 0 {
		return constants.KIND_CAPACITY_EXCEEDED, errors.New("occupancy would exceed capacity")
	}
	return constants.KIND_NEGATIVE_OCCUPANCY, errors.New("occupancy would go negative")
}

// assignOne applies an assignment payload to a single position. Used by
// both the single and the bulk endpoint; the bulk path passes a nil
// version because its ids are attempted independently.
func assignOne(db *gorm.DB, positionId uint, clientId *uint, clearClient bool, allowView *bool, isAvailable *bool, version *uint, accountInfo model.TokenClaim, role string) (string, error) {
	var position model.Position
	if err := db.Preload("Shelf").First(&position, positionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return constants.KIND_NOT_FOUND, errors.New("position does not exist")
		}
		return constants.KIND_INTERNAL, err
	}

	if !canViewLab(role, accountInfo.LabId, position.Shelf.LabId) {
		// invisible positions read as missing
		return constants.KIND_NOT_FOUND, errors.New("position does not exist")
	}
	if !helper.CanManageStorage(role, accountInfo.LabId, position.Shelf.LabId) {
		return constants.KIND_FORBIDDEN, errors.New("not permission")
	}

	if clientId != nil {
		var client model.Client
		if err := db.First(&client, *clientId).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return constants.KIND_NOT_FOUND, errors.New("client does not exist")
			}
			return constants.KIND_INTERNAL, err
		}
	}

	updates := map[string]interface{}{}
	action := constants.ACTION_VISIBILITY
	if clearClient {
		updates["client_id"] = nil
		action = constants.ACTION_UNASSIGN
	} else if clientId != nil {
		updates["client_id"] = *clientId
		action = constants.ACTION_ASSIGN
	}
	if allowView != nil {
		updates["allow_view"] = *allowView
	}
	if isAvailable != nil {
		updates["is_available"] = *isAvailable
	}
	if len(updates) == 0 {
		return constants.KIND_BAD_INPUT, errors.New("nothing to update")
	}

	tx := db.Begin()

	query := tx.Model(&model.Position{}).Where("id = ?", positionId)
	if version != nil {
		query = query.Where("version = ?", *version)
	}
	updates["version"] = gorm.Expr("version + 1")
	res := query.Updates(updates)
	if res.Error != nil {
		tx.Rollback()
		return constants.KIND_INTERNAL, res.Error
	}
	if res.RowsAffected == 0 {
		tx.Rollback()
		return constants.KIND_CONFLICT, errors.New("stale version")
	}

	note := ""
	if clientId != nil {
		note = fmt.Sprintf("assigned to client %d", *clientId)
	}
	if err := tx.Create(&model.StorageHistory{
		Ref:        uuid.NewString(),
		PositionId: position.ID,
		Code:       position.Code,
		Action:     action,
		Actor:      accountInfo.Username,
		Note:       note,
	}).Error; err != nil {
		tx.Rollback()
		return constants.KIND_INTERNAL, err
	}

	if err := tx.Commit().Error; err != nil {
		return constants.KIND_INTERNAL, err
	}
	return "", nil
}

func AssignPosition(c *fiber.Ctx) error {
	db := database.DB
	positionId := c.Locals("positionId").(uint)
	input, ok := c.Locals("assignPositionInput").(model.AssignPositionInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}

	kind, err := assignOne(db, positionId, input.ClientId, input.ClearClient, input.AllowView, input.IsAvailable, &input.Version, accountInfo, role)
	if err != nil {
		switch kind {
		case constants.KIND_NOT_FOUND:
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, kind, "Position not found", err)
		case constants.KIND_FORBIDDEN:
			return utils.ErrorResponseKind(c, fiber.StatusForbidden, kind, constants.ACCOUNT_NOT_PERMISSION, err)
		case constants.KIND_CONFLICT:
			return utils.ErrorResponseKind(c, fiber.StatusConflict, kind, "Position was modified by someone else, re-fetch and retry", err)
		case constants.KIND_BAD_INPUT:
			return utils.ErrorResponseKind(c, fiber.StatusBadRequest, kind, constants.ERROR_INPUT, err)
		default:
			return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_EDIT, err)
		}
	}

	var updated model.Position
	if err := db.Preload("Client").First(&updated, positionId).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, updated)
}

// BulkAssignPositions applies one payload to many positions. Each id is
// attempted on its own: a position deleted underneath us fails alone and
// never aborts the others. The response names every failed id.
func BulkAssignPositions(c *fiber.Ctx) error {
	db := database.DB
	input, ok := c.Locals("bulkAssignInput").(model.BulkAssignInput)
	if !ok {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_PARSE_DATA_TO_LOCALS, errors.New("PARSE DATA TO LOCALS FAIL"))
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}

	result := model.BulkAssignResult{
		Succeeded: []uint{},
		Failed:    []model.BulkAssignFailure{},
	}
	for _, id := range input.IDs {
		kind, err := assignOne(db, id, input.ClientId, input.ClearClient, input.AllowView, nil, nil, accountInfo, role)
		if err != nil {
			result.Failed = append(result.Failed, model.BulkAssignFailure{ID: id, Kind: kind})
			continue
		}
		result.Succeeded = append(result.Succeeded, id)
	}
	result.Summary = fmt.Sprintf("%d of %d succeeded", len(result.Succeeded), len(input.IDs))

	if len(result.Failed) > 0 {
		return c.Status(fiber.StatusMultiStatus).JSON(fiber.Map{
			"status":  "partial",
			"kind":    constants.KIND_PARTIAL_BULK_FAILURE,
			"message": result.Summary,
			"data":    result,
		})
	}
	return utils.SuccessResponse(c, fiber.StatusOK, result)
}

func GetPositionHistory(c *fiber.Ctx) error {
	positionId := c.Locals("positionId").(uint)
	db := database.DB

	var position model.Position
	if err := db.Preload("Shelf").First(&position, positionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Position not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !canViewLab(role, accountInfo.LabId, position.Shelf.LabId) {
		// invisible resources are indistinguishable from missing ones
		return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Position not found", errors.New("not permission"))
	}

	var history []model.StorageHistory
	if err := db.Where("position_id = ?", positionId).Order("id DESC").Find(&history).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, history)
}

// PositionQR renders the position code as a printable PNG label.
func PositionQR(c *fiber.Ctx) error {
	positionId := c.Locals("positionId").(uint)
	db := database.DB

	var position model.Position
	if err := db.Preload("Shelf").First(&position, positionId).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Position not found", err)
		}
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if !canViewLab(role, accountInfo.LabId, position.Shelf.LabId) {
		// invisible resources are indistinguishable from missing ones
		return utils.ErrorResponseKind(c, fiber.StatusNotFound, constants.KIND_NOT_FOUND, "Position not found", errors.New("not permission"))
	}

	png, err := utils.GenerateQRCode(position.Code, 256)
	if err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	c.Set("Content-Type", "image/png")
	return c.Send(png)
}
