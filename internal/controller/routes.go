package controller

import (
	"github.com/benbeisheim/minechess-engine/internal/middleware"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

func RegisterRoutes(app *fiber.App, searchController *SearchController, wsController *WebSocketController, origins []string) {
	app.Use("/ws/*", middleware.EnsureClientID())
	app.Get("/ws/engine", middleware.WebSocketUpgrade(), websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         origins,
	}))

	api := app.Group("/api", middleware.EnsureClientID())

	api.Post("/search", searchController.StartSearch)
	api.Post("/search/best-move", searchController.BestMove)
	api.Get("/search/:searchId", searchController.GetSearch)
	api.Post("/search/:searchId/stop", searchController.StopSearch)
	api.Post("/evaluate", searchController.Evaluate)
	api.Get("/perft", searchController.Perft)
}
