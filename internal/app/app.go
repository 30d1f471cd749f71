package app

import (
	"log/slog"
	"os"

	routerApp "github.com/dmkhr/mpdgen/internal/app/router"
	"github.com/dmkhr/mpdgen/internal/config"
	"github.com/dmkhr/mpdgen/internal/lib/logger/sl"
	"github.com/dmkhr/mpdgen/internal/mpd"
	manifestSrv "github.com/dmkhr/mpdgen/internal/service/manifest"
)

type App struct {
	Router routerApp.App
}

func New(
	log *slog.Logger,
	cfg *config.Config,
) *App {
	opts, err := cfg.MpdOptions()
	if err != nil {
		log.Error("invalid dash config", sl.Err(err))
		os.Exit(1)
	}

	manifest := manifestSrv.New(
		log,
		cfg.Dash.ManifestPath,
		opts,
		mpd.SystemClock(),
		cfg.Dash.BaseURLs,
	)

	if err := manifest.AddContent(cfg.ContentItems()); err != nil {
		log.Error("failed to register content", sl.Err(err))
		os.Exit(1)
	}

	routerApp := routerApp.New(
		log,
		cfg.Address,
		manifest,
		cfg.Dash.UpdateFreq,
	)

	return &App{
		Router: *routerApp,
	}
}
