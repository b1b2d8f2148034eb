package router

import (
	"lab_storage/handler"
	"lab_storage/middleware"
	"lab_storage/validate"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
)

func SetupRoutes(app *fiber.App) {
	api := app.Group("/api", logger.New())
	v1 := api.Group("/v1", logger.New())

	auth := v1.Group("/auth")
	auth.Post("/login", handler.Login)
	auth.Post("/refresh-token", handler.RefreshToken)

	account := v1.Group("/account", logger.New())
	account.Get("/me", middleware.Protected(), handler.Me)

	laboratory := v1.Group("/laboratory", logger.New())
	laboratory.Get("/", middleware.Protected(), handler.GetLaboratories)
	laboratory.Get("/:labId", middleware.Protected(), validate.GetById("labId"), handler.GetLaboratoryById)
	laboratory.Get("/:labId/shelves", middleware.Protected(), validate.GetById("labId"), handler.GetShelvesByLab)
	laboratory.Get("/:labId/storage-layout", middleware.Protected(), validate.GetById("labId"), handler.GetStorageLayout)
	laboratory.Put("/:labId/storage-layout", middleware.Protected(), validate.GetById("labId"), validate.SaveLayout(), handler.SaveStorageLayout)
	laboratory.Post("/:labId/storage-layout/lease", middleware.Protected(), validate.GetById("labId"), handler.AcquireLayoutLease)
	laboratory.Delete("/:labId/storage-layout/lease", middleware.Protected(), validate.GetById("labId"), handler.ReleaseLayoutLease)

	shelf := v1.Group("/shelf", logger.New())
	shelf.Post("/", middleware.Protected(), validate.CreateShelf(), handler.CreateShelf)
	shelf.Get("/:shelfId", middleware.Protected(), validate.GetById("shelfId"), handler.GetShelfById)
	shelf.Put("/:shelfId", middleware.Protected(), validate.GetById("shelfId"), validate.EditShelf(), handler.EditShelf)
	shelf.Delete("/", middleware.Protected(), validate.Delete(), handler.DeleteShelf)
	shelf.Get("/:shelfId/positions", middleware.Protected(), validate.GetById("shelfId"), handler.GetShelfPositions)
	shelf.Get("/:shelfId/utilization", middleware.Protected(), validate.GetById("shelfId"), handler.ShelfUtilization)

	position := v1.Group("/position", logger.New())
	position.Patch("/assign-bulk", middleware.Protected(), validate.BulkAssign(), handler.BulkAssignPositions)
	position.Patch("/:positionId", middleware.Protected(), validate.GetById("positionId"), validate.AssignPosition(), handler.AssignPosition)
	position.Patch("/:positionId/occupancy", middleware.Protected(), validate.GetById("positionId"), validate.AdjustOccupancy(), handler.AdjustOccupancy)
	position.Get("/:positionId/history", middleware.Protected(), validate.GetById("positionId"), handler.GetPositionHistory)
	position.Get("/:positionId/qr", middleware.Protected(), validate.GetById("positionId"), handler.PositionQR)

	client := v1.Group("/client", logger.New())
	client.Get("/", middleware.Protected(), handler.GetClients)
	client.Get("/me/storage-view", middleware.Protected(), handler.GetClientStorageView)
}
