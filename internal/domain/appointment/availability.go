package appointment

import "github.com/BruksfildServices01/clinic-scheduler/internal/models"

const (
	MaxRangeDays     = 90
	DefaultNextDays  = 7
	DefaultNextLimit = 5
	MaxNextLimit     = 50
	MaxBulkDays      = 366
	MaxNoteLength    = 500
)

type TimeSlot struct {
	Time      string `json:"time"`
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type DayAvailability struct {
	Date  string     `json:"date"`
	Slots []TimeSlot `json:"slots"`
}

func ToTimeSlot(s models.Slot) TimeSlot {
	return TimeSlot{
		Time:      s.TimeLabel(),
		StartTime: s.StartTime,
		EndTime:   s.EndTime,
	}
}

// GroupByDate expects slots ordered by date then start time.
func GroupByDate(slots []models.Slot) []DayAvailability {
	out := []DayAvailability{}
	for _, s := range slots {
		if n := len(out); n == 0 || out[n-1].Date != s.Date {
			out = append(out, DayAvailability{Date: s.Date})
		}
		last := &out[len(out)-1]
		last.Slots = append(last.Slots, ToTimeSlot(s))
	}
	return out
}

// DatedSlot is a TimeSlot that carries its own date, for flat listings
// spanning several days.
type DatedSlot struct {
	Date string `json:"date"`
	TimeSlot
}

func ToDatedSlot(s models.Slot) DatedSlot {
	return DatedSlot{Date: s.Date, TimeSlot: ToTimeSlot(s)}
}
