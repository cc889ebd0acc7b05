package timezone

import "time"

const DefaultTimezone = "America/New_York"

const (
	DateLayout  = "2006-01-02"
	ClockLayout = "15:04"
)

func IsValid(tz string) bool {
	if tz == "" {
		return false
	}
	_, err := time.LoadLocation(tz)
	return err == nil
}

func Location(tz string) *time.Location {
	if IsValid(tz) {
		if loc, err := time.LoadLocation(tz); err == nil {
			return loc
		}
	}

	loc, err := time.LoadLocation(DefaultTimezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func NowIn(tz string) time.Time {
	return time.Now().In(Location(tz))
}

// Today returns the calendar date in tz as YYYY-MM-DD.
func Today(tz string) string {
	return NowIn(tz).Format(DateLayout)
}

// At combines a calendar date and a wall-clock HH:MM in loc.
func At(date, clock string, loc *time.Location) (time.Time, error) {
	return time.ParseInLocation(DateLayout+" "+ClockLayout, date+" "+clock, loc)
}
