package controller

import (
	"github.com/benbeisheim/minechess-engine/internal/middleware"
	"github.com/benbeisheim/minechess-engine/internal/service"
	"github.com/gofiber/fiber/v2"
)

type SearchController struct {
	searchService *service.SearchService
}

func NewSearchController(searchService *service.SearchService) *SearchController {
	return &SearchController{searchService: searchService}
}

type evaluateRequest struct {
	service.PositionRequest
	Rating *int `json:"rating,omitempty"`
}

func (sc *SearchController) StartSearch(c *fiber.Ctx) error {
	var req service.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	job, err := sc.searchService.StartSearch(middleware.ClientID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"message":   "Search queued",
		"search_id": job.ID,
	})
}

// BestMove runs a search and answers with its result in the same request.
func (sc *SearchController) BestMove(c *fiber.Ctx) error {
	var req service.SearchRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	// The fasthttp request context is done once the server shuts down, which
	// stops the search instead of holding shutdown for its full budget.
	result, err := sc.searchService.BestMove(c.Context(), middleware.ClientID(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(result)
}

func (sc *SearchController) GetSearch(c *fiber.Ctx) error {
	status, err := sc.searchService.GetSearch(c.Params("searchId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(status)
}

func (sc *SearchController) StopSearch(c *fiber.Ctx) error {
	searchID := c.Params("searchId")
	if err := sc.searchService.StopSearch(searchID, middleware.ClientID(c)); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"message":   "Search stopping",
		"search_id": searchID,
	})
}

func (sc *SearchController) Evaluate(c *fiber.Ctx) error {
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body: " + err.Error(),
		})
	}

	evaluation, err := sc.searchService.Evaluate(req.PositionRequest, req.Rating)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(evaluation)
}

func (sc *SearchController) Perft(c *fiber.Ctx) error {
	fen := c.Query("fen")
	depth := c.QueryInt("depth", 1)

	nodes, err := sc.searchService.Perft(fen, depth)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"fen":   fen,
		"depth": depth,
		"nodes": nodes,
	})
}
