package weather

import (
	"encoding/json"
	"time"
)

// Condition represents a normalized high-level weather condition group.
type Condition string

const (
	ConditionUnknown Condition = "unknown"
	ConditionClear   Condition = "clear"
	ConditionCloudy  Condition = "cloudy"
	ConditionRain    Condition = "rain"
	ConditionSnow    Condition = "snow"
	ConditionStorm   Condition = "storm"
	ConditionMist    Condition = "mist"
)

// ConditionFromCode maps an OpenWeatherMap condition id to its group.
func ConditionFromCode(code int) Condition {
	switch {
	case code >= 200 && code < 300:
		return ConditionStorm
	case code >= 300 && code < 600:
		return ConditionRain
	case code >= 600 && code < 700:
		return ConditionSnow
	case code >= 700 && code < 800:
		return ConditionMist
	case code == 800:
		return ConditionClear
	case code > 800:
		return ConditionCloudy
	default:
		return ConditionUnknown
	}
}

// WeatherCondition is one entry of the upstream "weather" array.
type WeatherCondition struct {
	ID          int    `json:"id"`
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// CurrentConditions is the upstream "now" payload. Only a handful of fields
// are decoded; the body itself is passed through untouched.
type CurrentConditions struct {
	Name    string             `json:"name"`
	Weather []WeatherCondition `json:"weather"`
	Main    struct {
		Temp      float64 `json:"temp"`
		FeelsLike float64 `json:"feels_like"`
		Humidity  float64 `json:"humidity"`
		Pressure  float64 `json:"pressure"`
	} `json:"main"`
	Wind struct {
		Speed float64 `json:"speed"`
	} `json:"wind"`
	Sys struct {
		Country string `json:"country"`
	} `json:"sys"`

	Raw json.RawMessage `json:"-"`
}

// Primary returns the first reported condition, if any.
func (c CurrentConditions) Primary() (WeatherCondition, bool) {
	if len(c.Weather) == 0 {
		return WeatherCondition{}, false
	}
	return c.Weather[0], true
}

// MarshalJSON re-emits the upstream body verbatim when it is known.
func (c CurrentConditions) MarshalJSON() ([]byte, error) {
	if len(c.Raw) > 0 {
		return c.Raw, nil
	}
	type plain CurrentConditions
	return json.Marshal(plain(c))
}

// UnmarshalJSON decodes the known fields and keeps a copy of the body.
func (c *CurrentConditions) UnmarshalJSON(data []byte) error {
	type plain CurrentConditions
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*c = CurrentConditions(p)
	c.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// ForecastEntry is one 3-hour step of the upstream forecast series.
type ForecastEntry struct {
	Dt   int64 `json:"dt"`
	Main struct {
		Temp float64 `json:"temp"`
	} `json:"main"`
	Weather []WeatherCondition `json:"weather"`
}

// Time returns the entry timestamp.
func (e ForecastEntry) Time() time.Time {
	return time.Unix(e.Dt, 0).UTC()
}

// RawForecast is the upstream forecast payload, ordered ascending by Dt.
type RawForecast struct {
	List []ForecastEntry `json:"list"`
	City struct {
		Name     string `json:"name"`
		Country  string `json:"country"`
		Timezone int    `json:"timezone"`
	} `json:"city"`

	Raw json.RawMessage `json:"-"`
}

// MarshalJSON re-emits the upstream body verbatim when it is known.
func (f RawForecast) MarshalJSON() ([]byte, error) {
	if len(f.Raw) > 0 {
		return f.Raw, nil
	}
	type plain RawForecast
	return json.Marshal(plain(f))
}

// UnmarshalJSON decodes the known fields and keeps a copy of the body.
func (f *RawForecast) UnmarshalJSON(data []byte) error {
	type plain RawForecast
	var p plain
	if err := json.Unmarshal(data, &p); err != nil {
		return err
	}
	*f = RawForecast(p)
	f.Raw = append(json.RawMessage(nil), data...)
	return nil
}

// Result is the joined outcome of a location lookup.
type Result struct {
	Current  CurrentConditions `json:"weather"`
	Forecast RawForecast       `json:"forecast"`
}

// DailyForecast summarizes one calendar day of forecast entries.
type DailyForecast struct {
	Date        string    `json:"date"` // YYYY-MM-DD in the aggregation zone
	Day         string    `json:"day"`  // short weekday label for charts
	Temps       []float64 `json:"temps"`
	ConditionID int       `json:"conditionId"`
	Description string    `json:"description"`
	Icon        Condition `json:"icon"`
	High        float64   `json:"high"`
	Low         float64   `json:"low"`
	Avg         float64   `json:"avg"`
	Range       float64   `json:"range"`
}

// DailyReport is the aggregated view of a lookup.
type DailyReport struct {
	Location   string          `json:"location"`
	Unit       Unit            `json:"unit"`
	UnitSymbol string          `json:"unitSymbol"`
	Timezone   string          `json:"timezone"`
	Days       []DailyForecast `json:"days"`
}

// Snapshot is a stored daily report for a favorite location at a point in time.
type Snapshot struct {
	Location  string          `json:"location"`
	Unit      Unit            `json:"unit"`
	Timestamp time.Time       `json:"timestamp"` // always UTC
	Days      []DailyForecast `json:"days"`
}
