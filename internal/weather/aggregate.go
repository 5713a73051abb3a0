package weather

import (
	"math"
	"time"
)

// MaxForecastDays bounds the number of daily summaries produced.
const MaxForecastDays = 5

// AggregateDaily folds a 3-hour forecast series into at most MaxForecastDays
// daily summaries, in first-seen day order. Days are calendar days in loc
// (time.Local when nil), so the same instant may land on different days
// depending on the zone. The representative condition of a day is the one of
// its first entry.
func AggregateDaily(entries []ForecastEntry, loc *time.Location) []DailyForecast {
	if loc == nil {
		loc = time.Local
	}

	type bucket struct {
		day   DailyForecast
		temps []float64
	}

	var order []string
	buckets := make(map[string]*bucket)

	for _, e := range entries {
		ts := time.Unix(e.Dt, 0).In(loc)
		key := ts.Format("2006-01-02")

		b, ok := buckets[key]
		if !ok {
			b = &bucket{day: DailyForecast{
				Date: key,
				Day:  ts.Format("Mon"),
			}}
			if len(e.Weather) > 0 {
				b.day.ConditionID = e.Weather[0].ID
				b.day.Description = e.Weather[0].Description
			}
			b.day.Icon = ConditionFromCode(b.day.ConditionID)
			buckets[key] = b
			order = append(order, key)
		}
		b.temps = append(b.temps, e.Main.Temp)
	}

	if len(order) > MaxForecastDays {
		order = order[:MaxForecastDays]
	}

	days := make([]DailyForecast, 0, len(order))
	for _, key := range order {
		b := buckets[key]
		day := b.day
		day.Temps = b.temps

		high, low, sum := b.temps[0], b.temps[0], 0.0
		for _, t := range b.temps {
			high = math.Max(high, t)
			low = math.Min(low, t)
			sum += t
		}

		// math.Round rounds half away from zero; rounding all three keeps low <= avg <= high.
		day.High = math.Round(high)
		day.Low = math.Round(low)
		day.Avg = math.Round(sum / float64(len(b.temps)))
		day.Range = day.High - day.Low

		days = append(days, day)
	}

	return days
}
