package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/benbeisheim/chessclock-backend/internal/config"
	"github.com/benbeisheim/chessclock-backend/internal/controller"
	"github.com/benbeisheim/chessclock-backend/internal/middleware"
	"github.com/benbeisheim/chessclock-backend/internal/service"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load(os.Args[1:], os.Getenv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	logger, err := newLogger(cfg.Dev)
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	gameManager := service.NewGameManager(cfg.TickInterval, logger.Named("manager"))
	gameService := service.NewGameService(gameManager, logger.Named("service"))
	app := newApp(cfg, gameService, logger)

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
		<-sig
		logger.Info("shutting down")
		gameManager.Shutdown()
		if err := app.Shutdown(); err != nil {
			logger.Error("shutdown failed", zap.Error(err))
		}
	}()

	logger.Info("listening", zap.String("addr", cfg.ListenAddr), zap.Strings("origins", cfg.AllowedOrigins))
	if err := app.Listen(cfg.ListenAddr); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}

func newLogger(dev bool) (*zap.Logger, error) {
	if dev {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newApp(cfg config.Config, gameService *service.GameService, logger *zap.Logger) *fiber.App {
	app := fiber.New(fiber.Config{DisableStartupMessage: true})

	origins := strings.Join(cfg.AllowedOrigins, ",")
	// fiber refuses credentials with a wildcard origin
	allowCredentials := !strings.Contains(origins, "*")
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, " + middleware.ClientIDHeader,
		AllowMethods:     "GET, POST, OPTIONS",
		AllowCredentials: allowCredentials,
	}))
	app.Use(func(c *fiber.Ctx) error {
		logger.Debug("incoming request", zap.String("method", c.Method()), zap.String("path", c.Path()))
		return c.Next()
	})

	gameController := controller.NewGameController(gameService, cfg.DefaultClockSeconds, logger.Named("http"))
	wsController := controller.NewWebSocketController(gameService, cfg.DefaultClockSeconds, logger.Named("ws"))

	app.Use("/ws", middleware.EnsureClientID(logger), middleware.WebSocketUpgrade())
	app.Get("/ws/game", websocket.New(wsController.HandleConnection, websocket.Config{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		Origins:         cfg.AllowedOrigins,
	}))

	api := app.Group("/api", middleware.EnsureClientID(logger))
	gameController.Register(api.Group("/game"))

	return app
}
