package handler_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"lab_storage/constants"
	"lab_storage/database"
	"lab_storage/helper"
	"lab_storage/model"
	"lab_storage/router"
	"lab_storage/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var dbSeq int64

// setupApp wires the full router against a fresh in-memory database.
// Tests share database.DB, so they must not run in parallel.
func setupApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := fmt.Sprintf("file:handler_test_%d?mode=memory&cache=shared", atomic.AddInt64(&dbSeq, 1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	database.Migrate(db)
	database.DB = db

	app := fiber.New()
	router.SetupRoutes(app)
	return app, db
}

type fixture struct {
	lab           model.Laboratory
	otherLab      model.Laboratory
	client        model.Client
	otherClient   model.Client
	admin         model.Account
	manager       model.Account
	otherManager  model.Account
	staff         model.Account
	clientAccount model.Account
}

func seed(t *testing.T, db *gorm.DB) fixture {
	t.Helper()

	f := fixture{
		lab:         model.Laboratory{Slug: "central-lab", Name: "Central Lab"},
		otherLab:    model.Laboratory{Slug: "north-annex", Name: "North Annex"},
		client:      model.Client{Name: "Altura Foods", Code: "ALT", Active: utils.Ptr(true)},
		otherClient: model.Client{Name: "Boreal Labs", Code: "BOR", Active: utils.Ptr(true)},
	}
	require.NoError(t, db.Create(&f.lab).Error)
	require.NoError(t, db.Create(&f.otherLab).Error)
	require.NoError(t, db.Create(&f.client).Error)
	require.NoError(t, db.Create(&f.otherClient).Error)

	f.admin = model.Account{Username: "administration", Password: "irrelevant", Active: true, Role: constants.ROLE_ADMIN}
	f.manager = model.Account{Username: "central.manager", Password: "irrelevant", Active: true, Role: constants.ROLE_QUALITY_MANAGER, LabId: &f.lab.ID}
	f.otherManager = model.Account{Username: "annex.manager", Password: "irrelevant", Active: true, Role: constants.ROLE_QUALITY_MANAGER, LabId: &f.otherLab.ID}
	f.staff = model.Account{Username: "central.tech", Password: "irrelevant", Active: true, Role: constants.ROLE_STAFF, LabId: &f.lab.ID}
	f.clientAccount = model.Account{Username: "altura.client", Password: "irrelevant", Active: true, Role: constants.ROLE_CLIENT, ClientId: &f.client.ID}
	require.NoError(t, db.Create(&f.admin).Error)
	require.NoError(t, db.Create(&f.manager).Error)
	require.NoError(t, db.Create(&f.otherManager).Error)
	require.NoError(t, db.Create(&f.staff).Error)
	require.NoError(t, db.Create(&f.clientAccount).Error)
	return f
}

func bearer(t *testing.T, account model.Account) string {
	t.Helper()
	token, err := helper.GenerateAccessToken(model.TokenClaim{AccountId: account.ID, Username: account.Username})
	require.NoError(t, err)
	return "Bearer " + token
}

func request(t *testing.T, app *fiber.App, method, path, auth string, body any) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decode(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func createShelf(t *testing.T, app *fiber.App, auth string, input model.CreateShelfInput) map[string]any {
	t.Helper()
	resp := request(t, app, fiber.MethodPost, "/api/v1/shelf/", auth, input)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	return decode(t, resp)["data"].(map[string]any)
}

func shelfID(shelf map[string]any) uint {
	return uint(shelf["id"].(float64))
}

func positionID(t *testing.T, shelf map[string]any, code string) uint {
	t.Helper()
	for _, raw := range shelf["positions"].([]any) {
		p := raw.(map[string]any)
		if p["code"] == code {
			return uint(p["id"].(float64))
		}
	}
	t.Fatalf("no position with code %s", code)
	return 0
}

func TestCreateShelfProvisionsFullGrid(t *testing.T) {
	app, _ := setupApp(t)
	f := seed(t, database.DB)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "B", Rows: 2, Columns: 3, Capacity: 10,
	})
	assert.EqualValues(t, 1, shelf["number"])
	assert.EqualValues(t, 1, shelf["version"])

	positions := shelf["positions"].([]any)
	require.Len(t, positions, 6)

	seen := map[string]bool{}
	for _, raw := range positions {
		p := raw.(map[string]any)
		code := p["code"].(string)
		assert.False(t, seen[code], "duplicate code %s", code)
		seen[code] = true

		letter, row, col, err := helper.ParsePositionCode(code)
		require.NoError(t, err)
		assert.Equal(t, "B", letter)
		assert.EqualValues(t, p["row"], row)
		assert.EqualValues(t, p["column"], col)
		assert.EqualValues(t, 10, p["capacity"])
		assert.EqualValues(t, 0, p["occupancy"])
		assert.Equal(t, true, p["isAvailable"])
	}
	assert.True(t, seen["B-A1"])
	assert.True(t, seen["B-B3"])

	resp := request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/shelf/%d/utilization", shelfID(shelf)), auth, nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data := decode(t, resp)["data"].(map[string]any)
	assert.EqualValues(t, 60, data["capacity"])
	assert.EqualValues(t, 0, data["occupancy"])
	assert.EqualValues(t, 0, data["utilization"])
}

func TestCreateShelfDuplicateLetter(t *testing.T) {
	app, _ := setupApp(t)
	f := seed(t, database.DB)
	auth := bearer(t, f.admin)

	createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 5})

	resp := request(t, app, fiber.MethodPost, "/api/v1/shelf/", auth, model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "A", Rows: 2, Columns: 2, Capacity: 5,
	})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, constants.KIND_DUPLICATE_SHELF_LETTER, decode(t, resp)["kind"])

	// same letter in another laboratory is fine
	createShelf(t, app, auth, model.CreateShelfInput{LabId: f.otherLab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 5})
}

func TestCreateShelfForeignLabForbidden(t *testing.T) {
	app, _ := setupApp(t)
	f := seed(t, database.DB)

	resp := request(t, app, fiber.MethodPost, "/api/v1/shelf/", bearer(t, f.otherManager), model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 5,
	})
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	assert.Equal(t, constants.KIND_FORBIDDEN, decode(t, resp)["kind"])
}

func TestCreateShelfRejectsInvalidDimensions(t *testing.T) {
	app, _ := setupApp(t)
	f := seed(t, database.DB)
	auth := bearer(t, f.admin)

	for _, input := range []model.CreateShelfInput{
		{LabId: f.lab.ID, Letter: "b", Rows: 1, Columns: 1, Capacity: 5},
		{LabId: f.lab.ID, Letter: "AB", Rows: 1, Columns: 1, Capacity: 5},
		{LabId: f.lab.ID, Letter: "A", Rows: 101, Columns: 1, Capacity: 5},
		{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 1001},
	} {
		resp := request(t, app, fiber.MethodPost, "/api/v1/shelf/", auth, input)
		assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
		resp.Body.Close()
	}
}

func TestEditShelfStaleVersionConflict(t *testing.T) {
	app, _ := setupApp(t)
	f := seed(t, database.DB)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 2, Columns: 2, Capacity: 5})

	resp := request(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/shelf/%d", shelfID(shelf)), auth,
		fiber.Map{"rows": 3, "version": 99})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, constants.KIND_CONFLICT, decode(t, resp)["kind"])
}

func TestEditShelfGrowProvisionsNewCells(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 2, Columns: 2, Capacity: 5})

	resp := request(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/shelf/%d", shelfID(shelf)), auth,
		fiber.Map{"rows": 3, "columns": 3, "version": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode(t, resp)["data"].(map[string]any)
	assert.EqualValues(t, 2, updated["version"])
	assert.Len(t, updated["positions"].([]any), 9)

	// the original four cells survived the grow
	var kept int64
	require.NoError(t, db.Model(&model.Position{}).
		Where("shelf_id = ? AND row_index < 2 AND col_index <= 2", shelfID(shelf)).
		Count(&kept).Error)
	assert.EqualValues(t, 4, kept)
}

func TestEditShelfShrinkOccupiedConflict(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "B", Rows: 3, Columns: 3, Capacity: 5})

	// a sample sits in the row the shrink would remove
	require.NoError(t, db.Model(&model.Position{}).
		Where("shelf_id = ? AND code = ?", shelfID(shelf), "B-C1").
		Update("occupancy", 2).Error)

	resp := request(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/shelf/%d", shelfID(shelf)), auth,
		fiber.Map{"rows": 2, "version": 1})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, constants.KIND_CONFLICT, decode(t, resp)["kind"])

	// nothing was deleted, nothing was bumped
	var count int64
	require.NoError(t, db.Model(&model.Position{}).Where("shelf_id = ?", shelfID(shelf)).Count(&count).Error)
	assert.EqualValues(t, 9, count)
	var current model.Shelf
	require.NoError(t, db.First(&current, shelfID(shelf)).Error)
	assert.Equal(t, 3, current.Rows)
	assert.EqualValues(t, 1, current.Version)
}

func TestEditShelfShrinkEmptyRemovesPositions(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "B", Rows: 3, Columns: 3, Capacity: 5})

	resp := request(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/shelf/%d", shelfID(shelf)), auth,
		fiber.Map{"rows": 2, "columns": 2, "version": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode(t, resp)["data"].(map[string]any)
	assert.Len(t, updated["positions"].([]any), 4)

	var audits int64
	require.NoError(t, db.Model(&model.StorageHistory{}).
		Where("action = ?", constants.ACTION_SHRINK_DELETE).
		Count(&audits).Error)
	assert.EqualValues(t, 5, audits)
}

func TestEditShelfLetterRenameRegeneratesCodes(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "B", Rows: 2, Columns: 2, Capacity: 5})

	resp := request(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/shelf/%d", shelfID(shelf)), auth,
		fiber.Map{"letter": "D", "version": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	updated := decode(t, resp)["data"].(map[string]any)
	assert.Equal(t, "D", updated["letter"])

	codes := map[string]bool{}
	for _, raw := range updated["positions"].([]any) {
		codes[raw.(map[string]any)["code"].(string)] = true
	}
	assert.Equal(t, map[string]bool{"D-A1": true, "D-A2": true, "D-B1": true, "D-B2": true}, codes)

	var renames int64
	require.NoError(t, db.Model(&model.StorageHistory{}).
		Where("action = ?", constants.ACTION_CODE_RENAME).
		Count(&renames).Error)
	assert.EqualValues(t, 4, renames)
}

func TestEditShelfCapacityPropagatesToDefaultPositions(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 3, Capacity: 10})

	// one position diverged from the shelf default
	require.NoError(t, db.Model(&model.Position{}).
		Where("shelf_id = ? AND code = ?", shelfID(shelf), "A-A2").
		Update("capacity", 4).Error)

	resp := request(t, app, fiber.MethodPut, fmt.Sprintf("/api/v1/shelf/%d", shelfID(shelf)), auth,
		fiber.Map{"capacity": 20, "version": 1})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var caps []int
	require.NoError(t, db.Model(&model.Position{}).
		Where("shelf_id = ?", shelfID(shelf)).
		Order("col_index ASC").
		Pluck("capacity", &caps).Error)
	assert.Equal(t, []int{20, 4, 20}, caps)
}

func TestDeleteShelfOccupiedConflict(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 2, Capacity: 5})
	id := shelfID(shelf)

	require.NoError(t, db.Model(&model.Position{}).
		Where("shelf_id = ? AND code = ?", id, "A-A1").
		Update("occupancy", 1).Error)

	resp := request(t, app, fiber.MethodDelete, "/api/v1/shelf/", auth, model.ArrayId{IDs: []uint{id}})
	require.Equal(t, fiber.StatusConflict, resp.StatusCode)
	assert.Equal(t, constants.KIND_CONFLICT, decode(t, resp)["kind"])

	// emptied, the shelf and its positions go together
	require.NoError(t, db.Model(&model.Position{}).
		Where("shelf_id = ?", id).
		Update("occupancy", 0).Error)
	resp = request(t, app, fiber.MethodDelete, "/api/v1/shelf/", auth, model.ArrayId{IDs: []uint{id}})
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	resp.Body.Close()

	var remaining int64
	require.NoError(t, db.Model(&model.Position{}).Where("shelf_id = ?", id).Count(&remaining).Error)
	assert.EqualValues(t, 0, remaining)
}

func TestGetShelvesByLabScopedRead(t *testing.T) {
	app, _ := setupApp(t)
	f := seed(t, database.DB)
	admin := bearer(t, f.admin)

	createShelf(t, app, admin, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 5})

	// a manager reads their own laboratory
	resp := request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/laboratory/%d/shelves", f.lab.ID), bearer(t, f.manager), nil)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Len(t, decode(t, resp)["data"].([]any), 1)

	// but not a foreign one
	resp = request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/laboratory/%d/shelves", f.lab.ID), bearer(t, f.otherManager), nil)
	require.Equal(t, fiber.StatusForbidden, resp.StatusCode)
	resp.Body.Close()
}

func TestForeignResourcesReadAsMissing(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)

	shelf := createShelf(t, app, bearer(t, f.admin), model.CreateShelfInput{
		LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 10,
	})
	sid := shelfID(shelf)
	pid := positionID(t, shelf, "A-A1")
	foreign := bearer(t, f.otherManager)

	// a caller without visibility gets the same answer for an existing
	// id as for one that never existed
	reads := []struct {
		method string
		path   string
		body   any
	}{
		{fiber.MethodGet, "/api/v1/shelf/%d", nil},
		{fiber.MethodGet, "/api/v1/shelf/%d/utilization", nil},
		{fiber.MethodGet, "/api/v1/shelf/%d/positions", nil},
		{fiber.MethodPut, "/api/v1/shelf/%d", fiber.Map{"rows": 2, "version": 1}},
	}
	for _, r := range reads {
		resp := request(t, app, r.method, fmt.Sprintf(r.path, sid), foreign, r.body)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode, r.path)
		assert.Equal(t, constants.KIND_NOT_FOUND, decode(t, resp)["kind"], r.path)

		resp = request(t, app, r.method, fmt.Sprintf(r.path, 99999), foreign, r.body)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode, r.path)
		resp.Body.Close()
	}

	positionRoutes := []struct {
		method string
		path   string
		body   any
	}{
		{fiber.MethodPatch, "/api/v1/position/%d/occupancy", model.AdjustOccupancyInput{Delta: 1}},
		{fiber.MethodPatch, "/api/v1/position/%d", model.AssignPositionInput{ClientId: &f.client.ID, Version: 1}},
		{fiber.MethodGet, "/api/v1/position/%d/history", nil},
		{fiber.MethodGet, "/api/v1/position/%d/qr", nil},
	}
	for _, r := range positionRoutes {
		resp := request(t, app, r.method, fmt.Sprintf(r.path, pid), foreign, r.body)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode, r.path)
		resp.Body.Close()

		resp = request(t, app, r.method, fmt.Sprintf(r.path, 99999), foreign, r.body)
		require.Equal(t, fiber.StatusNotFound, resp.StatusCode, r.path)
		resp.Body.Close()
	}

	// bulk delete hides foreign shelves the same way
	resp := request(t, app, fiber.MethodDelete, "/api/v1/shelf/", foreign, model.ArrayId{IDs: []uint{sid}})
	require.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	resp.Body.Close()

	// nothing was touched
	var current model.Shelf
	require.NoError(t, db.First(&current, sid).Error)
	assert.EqualValues(t, 1, current.Version)
}

func TestShelfUtilizationZeroCapacity(t *testing.T) {
	app, db := setupApp(t)
	f := seed(t, db)
	auth := bearer(t, f.admin)

	shelf := createShelf(t, app, auth, model.CreateShelfInput{LabId: f.lab.ID, Letter: "A", Rows: 1, Columns: 1, Capacity: 5})

	// governed capacity can reach zero when every position diverges to 0
	require.NoError(t, db.Model(&model.Position{}).
		Where("shelf_id = ?", shelfID(shelf)).
		Update("capacity", 0).Error)

	resp := request(t, app, fiber.MethodGet, fmt.Sprintf("/api/v1/shelf/%d/utilization", shelfID(shelf)), auth, nil)
	require.Equal(t, fiber.StatusUnprocessableEntity, resp.StatusCode)
	assert.Equal(t, constants.KIND_ZERO_CAPACITY, decode(t, resp)["kind"])
}
