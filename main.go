package main

import (
	"log"

	"lab_storage/database"
	"lab_storage/helper"
	"lab_storage/router"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
)

func main() {
	app := fiber.New()

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:5173",
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Authorization, Accept",
		AllowCredentials: true,
		ExposeHeaders:    "Set-Cookie",
		MaxAge:           600,
	}))

	database.ConnectDB()

	helper.StartOccupancyAuditScheduler()
	defer helper.StopOccupancyAuditScheduler()

	router.SetupRoutes(app)
	log.Fatal(app.Listen(":8002"))
}
