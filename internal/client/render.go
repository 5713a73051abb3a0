package client

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/anurag121124/Weather-Forecast/internal/weather"
)

const barWidth = 24

// RenderCurrent writes the current conditions block.
func RenderCurrent(w io.Writer, current weather.CurrentConditions, unit weather.Unit) {
	name := current.Name
	if current.Sys.Country != "" {
		name += ", " + current.Sys.Country
	}
	desc := "-"
	if c, ok := current.Primary(); ok {
		desc = c.Description
	}

	sym := unit.Symbol()
	fmt.Fprintln(w, name)
	fmt.Fprintf(w, "  %.1f%s  feels like %.1f%s  %s\n", current.Main.Temp, sym, current.Main.FeelsLike, sym, desc)
	fmt.Fprintf(w, "  humidity %.0f%%  pressure %.0f hPa  wind %.1f %s\n",
		current.Main.Humidity, current.Main.Pressure, current.Wind.Speed, unit.SpeedSymbol())
}

// RenderDaily writes one line per day with a bar spanning the day's low..high
// on a scale shared by all days.
func RenderDaily(w io.Writer, days []weather.DailyForecast, unit weather.Unit) {
	if len(days) == 0 {
		fmt.Fprintln(w, "no forecast available")
		return
	}

	lo, hi := days[0].Low, days[0].High
	for _, d := range days[1:] {
		lo = math.Min(lo, d.Low)
		hi = math.Max(hi, d.High)
	}

	sym := unit.Symbol()
	for _, d := range days {
		fmt.Fprintf(w, "%-3s %s  %-7s %-16s %5.0f%s %s %.0f%s  avg %.0f%s\n",
			d.Day, d.Date, d.Icon, truncate(d.Description, 16),
			d.Low, sym, rangeBar(d.Low, d.High, lo, hi), d.High, sym, d.Avg, sym)
	}
}

// RenderView writes a complete dashboard view.
func RenderView(w io.Writer, v View) {
	if v.Err != nil {
		fmt.Fprintf(w, "error: %s\n", describe(v.Err))
		return
	}
	RenderCurrent(w, v.Result.Current, v.Unit)
	fmt.Fprintln(w)
	RenderDaily(w, v.Days, v.Unit)
}

func rangeBar(low, high, scaleLo, scaleHi float64) string {
	cells := []rune(strings.Repeat(" ", barWidth))
	span := scaleHi - scaleLo
	start, end := 0, barWidth-1
	if span > 0 {
		start = int(math.Round((low - scaleLo) / span * float64(barWidth-1)))
		end = int(math.Round((high - scaleLo) / span * float64(barWidth-1)))
	}
	for i := start; i <= end; i++ {
		cells[i] = '='
	}
	return "[" + string(cells) + "]"
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// describe maps an error to a display message by its kind.
func describe(err error) string {
	e := weather.AsError(err)
	switch e.Kind {
	case weather.KindLocationNotFound:
		return "location not found, check the spelling"
	case weather.KindRateLimited:
		return "too many requests, try again shortly"
	case weather.KindNetwork:
		return "cannot reach the weather service"
	case weather.KindUnauthorized:
		return "the weather service rejected the api key"
	case weather.KindInvalidInput:
		return e.Message
	default:
		return "something went wrong: " + e.Message
	}
}
