// handlers/bounty_routes.go
package handlers

import (
	"bounty-board-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupBountyRoutes(app *fiber.App, bountyService *services.BountyService) {
	app.Get("/api/bounties", bountyService.ListBounties)
	app.Post("/api/bounties", bountyService.CreateBounty)

	// Registered before /:id so the literal paths are not captured as IDs.
	app.Get("/api/bounties/discover", bountyService.DiscoverBounties)
	app.Get("/api/bounties/stats", bountyService.BountyStats)

	app.Get("/api/bounties/:id", bountyService.GetBounty)
	app.Put("/api/bounties/:id", bountyService.UpdateBounty)
	app.Delete("/api/bounties/:id", bountyService.DeleteBounty)

	app.Post("/api/bounties/:id/claim", bountyService.ClaimBounty)
	app.Post("/api/bounties/:id/join", bountyService.JoinBounty)
	app.Post("/api/bounties/:id/leave", bountyService.LeaveBounty)
	app.Post("/api/bounties/:id/submit", bountyService.SubmitBounty)
	app.Post("/api/bounties/:id/review", bountyService.ReviewBounty)
	app.Post("/api/bounties/:id/reward", bountyService.RewardBounty)
}
