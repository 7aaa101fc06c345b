// Package clock provides the simulated calendar: ticks, hours, days,
// seasons, and weather.
package clock

import (
	"fmt"
	"math/rand"
)

// Season of the simulated year.
type Season uint8

const (
	Spring Season = iota
	Summer
	Autumn
	Winter
)

// String returns a human-readable season name.
func (s Season) String() string {
	switch s {
	case Spring:
		return "spring"
	case Summer:
		return "summer"
	case Autumn:
		return "autumn"
	case Winter:
		return "winter"
	default:
		return "unknown"
	}
}

// Weather condition affecting crop growth and outdoor work.
type Weather uint8

const (
	WeatherClear Weather = iota
	WeatherRain
	WeatherFog
	WeatherStorm
	WeatherSnow
)

// String returns a human-readable weather name.
func (w Weather) String() string {
	switch w {
	case WeatherClear:
		return "clear"
	case WeatherRain:
		return "rain"
	case WeatherFog:
		return "fog"
	case WeatherStorm:
		return "storm"
	case WeatherSnow:
		return "snow"
	default:
		return "unknown"
	}
}

// seasonWeather lists the weather conditions possible in each season.
var seasonWeather = map[Season][]Weather{
	Spring: {WeatherClear, WeatherRain, WeatherFog},
	Summer: {WeatherClear, WeatherStorm},
	Autumn: {WeatherClear, WeatherRain, WeatherFog},
	Winter: {WeatherClear, WeatherSnow, WeatherFog},
}

// Calendar constants.
const (
	HoursPerDay    = 24
	DaysPerSeason  = 30
	SeasonsPerYear = 4
)

// TimeSystem tracks simulated time as a monotonic tick counter and derives
// hours, days, seasons, and years from it.
type TimeSystem struct {
	tick         uint64
	ticksPerHour int

	weather             Weather
	weatherChangeChance float64
	rng                 *rand.Rand
}

// New creates a time system starting at tick 0 with clear weather.
func New(ticksPerHour int, seed int64) *TimeSystem {
	if ticksPerHour < 1 {
		ticksPerHour = 1
	}
	return &TimeSystem{
		ticksPerHour:        ticksPerHour,
		weather:             WeatherClear,
		weatherChangeChance: 0.1,
		rng:                 rand.New(rand.NewSource(seed)),
	}
}

// Step advances time by one tick. Weather is re-rolled at midnight.
func (t *TimeSystem) Step() {
	t.tick++
	if t.dayTick() == 0 {
		t.updateWeather()
	}
}

// Tick returns the current absolute tick.
func (t *TimeSystem) Tick() uint64 { return t.tick }

// TicksPerHour returns the tick resolution of one simulated hour.
func (t *TimeSystem) TicksPerHour() int { return t.ticksPerHour }

// Hour returns the current hour of the day (0-23).
func (t *TimeSystem) Hour() int {
	return int(t.tick/uint64(t.ticksPerHour)) % HoursPerDay
}

// dayTick returns the tick offset within the current day.
func (t *TimeSystem) dayTick() uint64 {
	return t.tick % uint64(t.ticksPerHour*HoursPerDay)
}

// TotalDay returns the number of whole days elapsed since the start.
func (t *TimeSystem) TotalDay() int {
	return int(t.tick / uint64(t.ticksPerHour*HoursPerDay))
}

// SeasonDay returns the day within the current season (0-29).
func (t *TimeSystem) SeasonDay() int {
	return t.TotalDay() % DaysPerSeason
}

// Season returns the current season.
func (t *TimeSystem) Season() Season {
	return Season((t.TotalDay() / DaysPerSeason) % SeasonsPerYear)
}

// Year returns the current year, starting at 0.
func (t *TimeSystem) Year() int {
	return t.TotalDay() / (DaysPerSeason * SeasonsPerYear)
}

// Weather returns the current weather condition.
func (t *TimeSystem) Weather() Weather { return t.weather }

// IsDaytime reports whether the hour falls between 6am and 6pm.
func (t *TimeSystem) IsDaytime() bool {
	h := t.Hour()
	return h >= 6 && h < 18
}

// IsHourBoundary reports whether the current tick starts a new hour.
func (t *TimeSystem) IsHourBoundary() bool {
	return t.tick%uint64(t.ticksPerHour) == 0
}

// updateWeather re-rolls the weather with a small daily chance. A season
// change forces a re-roll when the current weather is not in the new
// season's table, so rain never lingers into winter.
func (t *TimeSystem) updateWeather() {
	options := seasonWeather[t.Season()]
	valid := false
	for _, w := range options {
		if w == t.weather {
			valid = true
			break
		}
	}
	if valid && t.rng.Float64() >= t.weatherChangeChance {
		return
	}
	t.weather = options[t.rng.Intn(len(options))]
}

// SeasonRegrowthModifier returns the multiplier applied to resource
// regrowth rates in each season. Spring is the fastest, winter the slowest.
func SeasonRegrowthModifier(s Season) float64 {
	switch s {
	case Spring:
		return 1.5
	case Summer:
		return 1.0
	case Autumn:
		return 0.8
	case Winter:
		return 0.3
	default:
		return 1.0
	}
}

// String returns a formatted date-time string for logs.
func (t *TimeSystem) String() string {
	hour := t.Hour()
	amPM := "AM"
	if hour >= 12 {
		amPM = "PM"
	}
	hour12 := hour % 12
	if hour12 == 0 {
		hour12 = 12
	}
	return fmt.Sprintf("Year %d, %s, Day %d, %d:00 %s",
		t.Year()+1, t.Season(), t.SeasonDay()+1, hour12, amPM)
}
