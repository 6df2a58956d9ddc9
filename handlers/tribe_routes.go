// handlers/tribe_routes.go
package handlers

import (
	"bounty-board-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupTribeRoutes(app *fiber.App, bountyService *services.BountyService) {
	app.Get("/api/tribes", bountyService.ListTribes)
	app.Post("/api/tribes", bountyService.CreateTribe)
	app.Get("/api/tribes/:id", bountyService.GetTribe)

	app.Post("/api/tribes/:id/join", bountyService.JoinTribe)
	app.Post("/api/tribes/:id/leave", bountyService.LeaveTribe)
}
