package handler

import (
	"errors"

	"lab_storage/constants"
	"lab_storage/database"
	"lab_storage/helper"
	"lab_storage/model"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
)

// GetClients lists the assignable client directory for staff.
func GetClients(c *fiber.Ctx) error {
	_, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if role == constants.ROLE_CLIENT || role == "" {
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("not permission"))
	}

	db := database.DB
	var clients []model.Client
	if err := db.Where("active = ?", true).Order("name ASC").Find(&clients).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}
	return utils.SuccessResponse(c, fiber.StatusOK, clients)
}

type clientShelfView struct {
	ShelfId   uint             `json:"shelfId"`
	LabId     uint             `json:"labId"`
	Letter    string           `json:"letter"`
	Number    uint             `json:"number"`
	Rows      int              `json:"rows"`
	Columns   int              `json:"columns"`
	Positions []model.Position `json:"positions"`
}

// GetClientStorageView is the client-scoped read. A position is visible
// when, at the finest granularity that carries an assignment:
//   - it is assigned to the caller and allowView is set, or
//   - it inherits a shelf assigned to the caller with allowView set, or
//   - neither the position nor its shelf is assigned (open).
// allowView=false always hides the contents, even from the assigned
// client and even when samples are stored there.
func GetClientStorageView(c *fiber.Ctx) error {
	accountInfo, role, err := helper.GetInfoAccountFromToken(c)
	if err != nil {
		return utils.ErrorResponseKind(c, fiber.StatusUnauthorized, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, err)
	}
	if role != constants.ROLE_CLIENT || accountInfo.ClientId == nil {
		return utils.ErrorResponseKind(c, fiber.StatusForbidden, constants.KIND_FORBIDDEN, constants.ACCOUNT_NOT_PERMISSION, errors.New("caller has no client identity"))
	}
	me := *accountInfo.ClientId

	db := database.DB
	var positions []model.Position
	if err := db.Joins("Shelf").
		Where(`(positions.client_id = ? AND positions.allow_view)
			OR (positions.client_id IS NULL AND "Shelf".client_id = ? AND "Shelf".allow_view)
			OR (positions.client_id IS NULL AND "Shelf".client_id IS NULL)`, me, me).
		Order("positions.shelf_id ASC, positions.row_index ASC, positions.col_index ASC").
		Find(&positions).Error; err != nil {
		return utils.ErrorResponse(c, fiber.StatusInternalServerError, constants.ERROR_INTERNAL_ERROR, err)
	}

	// group by shelf, keeping shelf order stable
	views := []clientShelfView{}
	index := map[uint]int{}
	for _, p := range positions {
		i, ok := index[p.ShelfId]
		if !ok {
			views = append(views, clientShelfView{
				ShelfId: p.ShelfId,
				LabId:   p.Shelf.LabId,
				Letter:  p.Shelf.Letter,
				Number:  p.Shelf.Number,
				Rows:    p.Shelf.Rows,
				Columns: p.Shelf.Columns,
			})
			i = len(views) - 1
			index[p.ShelfId] = i
		}
		p.Shelf = model.Shelf{}
		views[i].Positions = append(views[i].Positions, p)
	}

	return utils.SuccessResponse(c, fiber.StatusOK, views)
}
