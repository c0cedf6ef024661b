package controller

import (
	"errors"

	"github.com/benbeisheim/chessclock-backend/internal/model"
	"github.com/benbeisheim/chessclock-backend/internal/service"
	"github.com/benbeisheim/chessclock-backend/internal/ws"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type GameController struct {
	gameService         *service.GameService
	defaultClockSeconds int
	logger              *zap.Logger
}

func NewGameController(gameService *service.GameService, defaultClockSeconds int, logger *zap.Logger) *GameController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &GameController{gameService: gameService, defaultClockSeconds: defaultClockSeconds, logger: logger}
}

// Register mounts the game routes on router.
func (gc *GameController) Register(router fiber.Router) {
	router.Post("/new", gc.NewGame)
	router.Get("/", gc.GetGameState)
	router.Post("/select", gc.Select)
	router.Post("/move", gc.Move)
	router.Post("/promote", gc.Promote)
	router.Post("/reset", gc.Reset)
}

func (gc *GameController) NewGame(c *fiber.Ctx) error {
	var body ws.NewGamePayload
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid settings body")
	}
	state, err := gc.gameService.NewGame(body.Settings(gc.defaultClockSeconds))
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) GetGameState(c *fiber.Ctx) error {
	state, err := gc.gameService.GetGameState()
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Select(c *fiber.Ctx) error {
	var body ws.SelectPayload
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid select body")
	}
	state, err := gc.gameService.SelectSquare(body.Position())
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Move(c *fiber.Ctx) error {
	var body ws.MovePayload
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid move body")
	}
	state, err := gc.gameService.HandleMove(body.From, body.To, body.Promotion)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Promote(c *fiber.Ctx) error {
	var body ws.PromotePayload
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "invalid promotion body")
	}
	state, err := gc.gameService.ChoosePromotion(body.Piece)
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) Reset(c *fiber.Ctx) error {
	state, err := gc.gameService.Reset()
	if err != nil {
		return gc.fail(c, err)
	}
	return c.JSON(state)
}

func (gc *GameController) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, model.ErrInvalidSettings):
		return badRequest(c, err.Error())
	case errors.Is(err, service.ErrNoActiveGame):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	gc.logger.Error("game request failed", zap.String("path", c.Path()), zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "internal error",
	})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error": msg,
	})
}
