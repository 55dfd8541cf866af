package httpapi

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/skycast/weather-dashboard/internal/weather"
)

// weatherRequest is the JSON body accepted by POST /api/weather. Exactly one
// of the two variants must be present; the validator enforces that.
type weatherRequest struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	City      string   `json:"city"`
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, provider weather.Provider) {
	api := app.Group("/api")
	api.Post("/weather", handleWeather(provider))
}

// handleWeather runs the request pipeline: parse body, validate, call the
// provider, respond. Any stage failure short-circuits to a single error
// response; nothing propagates to the transport layer unhandled.
func handleWeather(provider weather.Provider) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req weatherRequest
		if err := c.BodyParser(&req); err != nil {
			return respondError(c, weather.NewError(weather.KindValidation, "invalid request format"))
		}

		query, err := weather.Validate(weather.Query{
			Lat:  req.Latitude,
			Lon:  req.Longitude,
			City: req.City,
		})
		if err != nil {
			return respondError(c, weather.AsError(err))
		}

		conditions, err := provider.Current(c.UserContext(), query)
		if err != nil {
			werr := weather.AsError(err)
			// Technical detail stays in the logs; the response body only
			// carries the user-safe message.
			log.Printf("weather fetch via %s failed (%s): %s", provider.Name(), werr.Kind, werr.Message)
			return respondError(c, werr)
		}

		return c.JSON(fiber.Map{
			"success": true,
			"data":    conditions,
		})
	}
}

func respondError(c *fiber.Ctx, werr *weather.Error) error {
	body := fiber.Map{
		"success": false,
		"error":   werr.Message,
		"code":    werr.Kind,
		"retry":   werr.Kind.Retryable(),
	}
	if werr.RetryAfter > 0 {
		body["retryAfter"] = werr.RetryAfter
	}
	return c.Status(werr.Kind.HTTPStatus()).JSON(body)
}
