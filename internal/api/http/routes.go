package httpapi

import (
	"errors"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"

	"github.com/anurag121124/Weather-Forecast/internal/prefs"
	"github.com/anurag121124/Weather-Forecast/internal/store"
	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, preferences *prefs.Store) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return err
		}
		unit, err := parseUnit(c, preferences)
		if err != nil {
			return err
		}

		res, err := service.Lookup(c.UserContext(), q, unit)
		if err != nil {
			return err
		}
		return c.JSON(res)
	})

	v1.Get("/weather/daily", func(c *fiber.Ctx) error {
		q, err := parseLocationQuery(c)
		if err != nil {
			return err
		}
		unit, err := parseUnit(c, preferences)
		if err != nil {
			return err
		}
		loc, err := parseTimezone(c)
		if err != nil {
			return err
		}

		report, err := service.Daily(c.UserContext(), q, unit, loc)
		if err != nil {
			return err
		}
		return c.JSON(report)
	})

	p := v1.Group("/preferences")

	p.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(preferences.Snapshot())
	})

	p.Put("/unit", func(c *fiber.Ctx) error {
		var req unitRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		unit, err := weather.ParseUnit(req.Unit)
		if err != nil {
			return err
		}
		preferences.SetUnit(unit)
		return c.JSON(fiber.Map{"unit": preferences.Unit()})
	})

	p.Get("/favorites", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"favorites": preferences.Favorites()})
	})

	p.Post("/favorites", func(c *fiber.Ctx) error {
		var req favoriteRequest
		if err := bindBody(c, &req); err != nil {
			return err
		}
		preferences.AddFavorite(utils.CopyString(req.Location))
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"favorites": preferences.Favorites()})
	})

	p.Get("/favorites/:location", func(c *fiber.Ctx) error {
		location, err := locationParam(c)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{
			"location": location,
			"favorite": preferences.IsFavorite(location),
		})
	})

	p.Delete("/favorites/:location", func(c *fiber.Ctx) error {
		location, err := locationParam(c)
		if err != nil {
			return err
		}
		preferences.RemoveFavorite(location)
		return c.JSON(fiber.Map{"favorites": preferences.Favorites()})
	})

	p.Get("/recent", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"recentSearches": preferences.RecentSearches()})
	})

	v1.Get("/favorites/latest", func(c *fiber.Ctx) error {
		location := strings.TrimSpace(c.Query("location"))
		if location == "" {
			return weather.InvalidInput("location query parameter is required")
		}

		snapshot, err := service.GetLatest(location)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return weather.NewError(weather.KindLocationNotFound, "no forecast snapshot for requested location", err)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch forecast snapshot")
		}

		return c.JSON(snapshot)
	})

	v1.Get("/favorites/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return weather.InvalidInput("%s", err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return weather.InvalidInput("%s", err.Error())
		}

		snapshots, err := service.GetRange(req.Location, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return weather.NewError(weather.KindLocationNotFound, "no forecast history for requested range", err)
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch forecast history")
		}

		return c.JSON(fiber.Map{
			"location":  req.Location,
			"from":      req.From,
			"to":        req.To,
			"snapshots": snapshots,
		})
	})
}

// ErrorHandler renders every error as {error, kind, message}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	kind := weather.KindUnknown
	message := err.Error()

	var we *weather.Error
	var fe *fiber.Error
	switch {
	case errors.As(err, &we):
		code = we.HTTPStatus()
		kind = we.Kind
		message = we.Message
	case errors.As(err, &fe):
		code = fe.Code
		kind = kindForStatus(code)
	}

	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"kind":    kind,
		"message": message,
	})
}

// kindForStatus tags errors raised by fiber itself.
func kindForStatus(code int) weather.Kind {
	switch code {
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return weather.KindInvalidInput
	case fiber.StatusTooManyRequests:
		return weather.KindRateLimited
	case fiber.StatusServiceUnavailable, fiber.StatusGatewayTimeout:
		return weather.KindNetwork
	default:
		return weather.KindUnknown
	}
}

type unitRequest struct {
	Unit string `json:"unit" form:"unit" validate:"required"`
}

type favoriteRequest struct {
	Location string `json:"location" form:"location" validate:"required,max=100"`
}

func bindBody(c *fiber.Ctx, out any) error {
	if err := c.BodyParser(out); err != nil {
		return weather.InvalidInput("malformed request body")
	}
	if err := validate.Struct(out); err != nil {
		return weather.InvalidInput("%s", err.Error())
	}
	return nil
}

func locationParam(c *fiber.Ctx) (string, error) {
	location, err := url.PathUnescape(c.Params("location"))
	if err != nil || strings.TrimSpace(location) == "" {
		return "", weather.InvalidInput("invalid location")
	}
	return utils.CopyString(strings.TrimSpace(location)), nil
}

// parseLocationQuery reads location, zip or lat/lon. Supplying more than one
// variant is rejected by LocationQuery.Validate.
func parseLocationQuery(c *fiber.Ctx) (weather.LocationQuery, error) {
	// Query values alias the request buffer; the name may outlive the request
	// as a recent search.
	q := weather.LocationQuery{
		Name:       utils.CopyString(strings.TrimSpace(c.Query("location"))),
		PostalCode: utils.CopyString(strings.TrimSpace(c.Query("zip"))),
	}

	if v := c.Query("lat"); v != "" {
		lat, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, weather.InvalidInput("lat must be a number")
		}
		q.Lat = &lat
	}
	if v := c.Query("lon"); v != "" {
		lon, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return q, weather.InvalidInput("lon must be a number")
		}
		q.Lon = &lon
	}

	if err := q.Validate(); err != nil {
		return q, err
	}
	return q, nil
}

// parseUnit reads unit (or its alias units), falling back to the stored preference.
func parseUnit(c *fiber.Ctx, preferences *prefs.Store) (weather.Unit, error) {
	unit, units := c.Query("unit"), c.Query("units")
	if unit != "" && units != "" && !strings.EqualFold(unit, units) {
		return "", weather.InvalidInput("unit and units disagree")
	}
	if unit == "" {
		unit = units
	}
	if unit == "" {
		if preferences == nil {
			return weather.UnitMetric, nil
		}
		return preferences.Unit(), nil
	}
	return weather.ParseUnit(unit)
}

// parseTimezone reads the optional IANA tz used to bucket days; nil means local time.
func parseTimezone(c *fiber.Ctx) (*time.Location, error) {
	tz := c.Query("tz")
	if tz == "" {
		return nil, nil
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return nil, weather.InvalidInput("unknown time zone %q", tz)
	}
	return loc, nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location string    `validate:"required"`
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	h.Location = utils.CopyString(strings.TrimSpace(c.Query("location")))

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
