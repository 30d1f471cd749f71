package controller

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

const mpdContentType = "application/dash+xml"

func New(
	manifest ManifestService,
	dash DashService,
) *fiber.App {
	app := fiber.New()

	app.Get("/manifest.mpd", func(c *fiber.Ctx) error {
		out, err := manifest.Manifest()
		if err != nil {
			return c.SendStatus(fiber.StatusInternalServerError)
		}
		c.Set(fiber.HeaderContentType, mpdContentType)
		return c.SendString(out)
	})
	app.Get("/start", func(c *fiber.Ctx) error {
		go dash.Run(context.TODO())
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/stop", func(c *fiber.Ctx) error {
		go dash.Stop()
		return c.SendStatus(fiber.StatusOK)
	})

	return app
}

type ManifestService interface {
	Manifest() (string, error)
}

type DashService interface {
	Run(context.Context) error
	Stop()
}
