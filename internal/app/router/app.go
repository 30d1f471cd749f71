package router

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"

	dashSrv "github.com/dmkhr/mpdgen/internal/service/dash"
	manifestSrv "github.com/dmkhr/mpdgen/internal/service/manifest"

	dashCtr "github.com/dmkhr/mpdgen/internal/controller/dash"
)

type App struct {
	log     *slog.Logger
	address string
	app     *fiber.App
}

// New returns configured router.App
func New(
	log *slog.Logger,
	address string,
	manifest *manifestSrv.Manifest,
	updateFreq time.Duration,
) *App {
	// Create sevices
	dash := dashSrv.New(
		log,
		updateFreq,
		manifest,
	)

	app := fiber.New()

	// Mount controllers to an app
	app.Mount("/dash", dashCtr.New(manifest, dash))

	return &App{
		log:     log,
		address: address,
		app:     app,
	}
}

func (a *App) MustRun() {
	if err := a.Run(); err != nil {
		panic(err)
	}
}

func (a *App) Run() error {
	return a.app.Listen(a.address)
}

func (a *App) Stop() {
	a.app.Shutdown()
}
