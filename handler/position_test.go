package handler_test

import (
	"fmt"
	"testing"

	"lab_storage/constants"
	"lab_storage/model"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAdjustOccupancyBounds(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.manager)

	shelf := createShelf(t, app, bearer(t, f.admin), model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 10,
	})
	id := positionID(t, shelf, "A-A1")

	// fill to capacity
	resp := request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d/occupancy", id), auth,
		model.AdjustOccupancyInput{Delta: 10, Note: "intake batch 12"})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 10, decode(t, resp)["data"].(map[string]any)["occupancy"])

	// one more does not fit, and the refusal changes nothing
	resp = request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d/occupancy", id), auth,
		model.AdjustOccupancyInput{Delta: 1})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, constants.KIND_CAPACITY_EXCEEDED, decode(t, resp)["kind"])

	var position model.Position
	require.NoError(t, db.First(&position, id).Error)
	assert.Equal(t, 10, position.Occupancy)

	// removing more than is stored is refused the same way
	resp = request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d/occupancy", id), auth,
		model.AdjustOccupancyInput{Delta: -11})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, constants.KIND_NEGATIVE_OCCUPANCY, decode(t, resp)["kind"])

	// emptying exactly is fine
	resp = request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d/occupancy", id), auth,
		model.AdjustOccupancyInput{Delta: -10})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.EqualValues(t, 0, decode(t, resp)["data"].(map[string]any)["occupancy"])

	resp = request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d/occupancy", id), auth,
		model.AdjustOccupancyInput{Delta: 0})
	require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestPositionHistoryRecordsMovements(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.manager)

	shelf := createShelf(t, app, bearer(t, f.admin), model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 10,
	})
	id := positionID(t, shelf, "A-A1")

	for _, delta := range []int{3, -1} {
		resp := request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d/occupancy", id), auth,
			model.AdjustOccupancyInput{Delta: delta})
		require.Equal(t, fiber.StatusOK, resp.StatusCode)
		resp.Body.Close()
	}

	resp := request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/position/%d/history", id), auth, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	entries := decode(t, resp)["data"].([]any)
	require.Len(t, entries, 3) // provision + two movements

	// newest first
	first := entries[0].(map[string]any)
	assert.Equal(t, constants.ACTION_OCCUPANCY, first["action"])
	assert.EqualValues(t, -1, first["delta"])
	assert.Equal(t, "central.manager", first["actor"])
	last := entries[2].(map[string]any)
	assert.Equal(t, constants.ACTION_PROVISION, last["action"])
}

func TestAssignPositionStaleVersion(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 5})
	id := positionID(t, shelf, "A-A1")

	resp := request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d", id), auth,
		model.AssignPositionInput{ClientId: &f.client.ID, Version: 99})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, constants.KIND_CONFLICT, decode(t, resp)["kind"])

	resp = request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d", id), auth,
		model.AssignPositionInput{ClientId: &f.client.ID, Version: 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]any)
	assert.EqualValues(t, f.client.ID, data["clientId"])
	assert.EqualValues(t, 2, data["version"])
}

func TestBulkAssignReportsPerId(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 3, Capacity: 5})
	p1 := positionID(t, shelf, "A-A1")
	p2 := positionID(t, shelf, "A-A2")
	p3 := positionID(t, shelf, "A-A3")

	// p2 disappears underneath the batch
	require.NoError(t, db.Delete(&model.Position{}, p2).Error)

	resp := request(t, app, fiber.MethodPatch, "/api/v1/position/assign-bulk", auth,
		model.BulkAssignInput{IDs: []uint{p1, p2, p3}, ClientId: &f.client.ID, AllowView: utils.Ptr(true)})
	require.Equal(t, fiber.StatusMultiStatus, resp.StatusCode)

	body := decode(t, resp)
	assert.Equal(t, constants.KIND_PARTIAL_BULK_FAILURE, body["kind"])
	result := body["data"].(map[string]any)
	assert.Equal(t, "2 of 3 succeeded", result["summary"])
	require.Len(t, result["failed"].([]any), 1)
	failure := result["failed"].([]any)[0].(map[string]any)
	assert.EqualValues(t, p2, failure["id"])
	assert.Equal(t, constants.KIND_NOT_FOUND, failure["kind"])

	// the survivors were assigned anyway
	for _, id := range []uint{p1, p3} {
		var position model.Position
		require.NoError(t, db.First(&position, id).Error)
		require.NotNil(t, position.ClientId)
		assert.Equal(t, f.client.ID, *position.ClientId)
		assert.True(t, position.AllowView)
	}
}

func TestBulkAssignAllSucceed(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 2, Capacity: 5})
	p1 := positionID(t, shelf, "A-A1")
	p2 := positionID(t, shelf, "A-A2")

	resp := request(t, app, fiber.MethodPatch, "/api/v1/position/assign-bulk", auth,
		model.BulkAssignInput{IDs: []uint{p1, p2}, ClientId: &f.client.ID})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	result := decode(t, resp)["data"].(map[string]any)
	assert.Equal(t, "2 of 2 succeeded", result["summary"])
	assert.Len(t, result["succeeded"].([]any), 2)
	assert.Empty(t, result["failed"])
}

func TestGetShelfPositionsGrid(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "B", Rows: 2, Columns: 3, Capacity: 5})

	resp := request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/shelf/%d/positions", shelfID(shelf)), auth, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]any)

	grid := data["grid"].([]any)
	require.Len(t, grid, 2)
	for r, rawRow := range grid {
		row := rawRow.([]any)
		require.Len(t, row, 3)
		for c, cell := range row {
			require.NotNil(t, cell, "cell %d,%d", r, c)
			p := cell.(map[string]any)
			assert.EqualValues(t, r, p["row"])
			assert.EqualValues(t, c+1, p["column"])
		}
	}
}

func TestClientStorageViewVisibility(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	admin := bearer(t, f.admin)

	// shelf A: assigned to our client, viewable
	shelfA := createShelf(t, app, admin, model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 2, Capacity: 5,
		ClientId: &f.client.ID, AllowView: utils.Ptr(true),
	})
	// one of its cells is overridden to another client
	require.NoError(t, db.Model(&model.Position{}).
		Where("id = ?", positionID(t, shelfA, "A-A2")).
		Updates(map[string]interface{}{"client_id": f.otherClient.ID, "allow_view": true}).Error)

	// shelf B: assigned to our client but contents hidden
	createShelf(t, app, admin, model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "B", Rows: 1, Columns: 1, Capacity: 5,
		ClientId: &f.client.ID,
	})

	// shelf C: open, visible to every client
	createShelf(t, app, admin, model.CreateShelfInput{LabId: f.lab.ID, Letter: "C", Rows: 1, Columns: 1, Capacity: 5})

	resp := request(t, app, fiber.MethodGet, "/api/v1/client/me/storage-view", bearer(t, f.clientAccount), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	views := decode(t, resp)["data"].([]any)

	visible := map[string]bool{}
	for _, rawView := range views {
		view := rawView.(map[string]any)
		for _, rawPos := range view["positions"].([]any) {
			visible[rawPos.(map[string]any)["code"].(string)] = true
		}
	}
	assert.Equal(t, map[string]bool{"A-A1": true, "C-A1": true}, visible)

	// staff cannot use the client view, clients cannot use staff reads
	resp = request(t, app, fiber.MethodGet, "/api/v1/client/me/storage-view", admin, nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
	resp = request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/laboratory/%d/shelves", f.lab.ID), bearer(t, f.clientAccount), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestAdjustOccupancyRequiresManagementRole(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)

	shelf := createShelf(t, app, bearer(t, f.admin), model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 10,
	})
	id := positionID(t, shelf, "A-A1")
	staff := bearer(t, f.staff)

	// staff read the grid but do not move samples
	resp := request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/shelf/%d/positions", shelfID(shelf)), staff, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d/occupancy", id), staff,
		model.AdjustOccupancyInput{Delta: 3})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, constants.KIND_FORBIDDEN, decode(t, resp)["kind"])

	var position model.Position
	require.NoError(t, db.First(&position, id).Error)
	assert.Equal(t, 0, position.Occupancy)

	// callers with no lab visibility at all see the position as missing
	resp = request(t, app, fiber.MethodPatch, fmt.Sprintf("/api/v1/position/%d/occupancy", id), bearer(t, f.clientAccount),
		model.AdjustOccupancyInput{Delta: 3})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestPositionQRLabel(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 5})
	id := positionID(t, shelf, "A-A1")

	resp := request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/position/%d/qr", id), auth, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	defer resp.Body.Close()
	assert.Equal(t, "image/png", resp.Header.Get("Content-Type"))
}
