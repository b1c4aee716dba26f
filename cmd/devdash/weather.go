package main

import (
	"errors"
	"strings"

	"github.com/urfave/cli/v2"

	api "devdash/internal/adapter/http"
	"devdash/internal/core/domain"
	"devdash/internal/core/model/response"
)

func weatherCommand() *cli.Command {
	return &cli.Command{
		Name:      "weather",
		Usage:     "show current weather for a city",
		ArgsUsage: "[CITY]",
		Action: withContainerConfig(func(c *cli.Context, container *api.Container, defaultCity string) error {
			city := strings.Join(c.Args().Slice(), " ")

			if strings.TrimSpace(city) == "" {
				city = defaultCity
			}

			report, err := container.WeatherService.Fetch(c.Context, city)

			if err != nil {
				if errors.Is(err, domain.ErrEmptyCity) {
					return errors.New(domain.MessageEnterCity)
				}
				return errors.New(domain.MessageWeatherUnavailable)
			}

			renderWeather(c.App.Writer, response.NewWeatherResponse(report))

			return nil
		}),
	}
}

func withContainerConfig(action func(c *cli.Context, container *api.Container, defaultCity string) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		container, cfg, err := open(c)

		if err != nil {
			return err
		}

		defer container.Close()

		return action(c, container, cfg.Weather.DefaultCity)
	}
}
