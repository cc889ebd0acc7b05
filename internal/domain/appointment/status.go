package appointment

import "strings"

// ===============================
// Appointment Status
// ===============================

type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusRescheduled Status = "rescheduled"
)

func (s Status) IsValid() bool {
	switch s {
	case StatusScheduled, StatusCompleted, StatusCancelled, StatusRescheduled:
		return true
	}
	return false
}

// IsActive is true for every status that still holds a slot.
func (s Status) IsActive() bool {
	return s != StatusCancelled
}

// ParseStatus accepts any enum value. Transitions between values are not
// restricted.
func ParseStatus(raw string) (Status, error) {
	s := Status(strings.ToLower(strings.TrimSpace(raw)))
	if !s.IsValid() {
		return "", ErrInvalidStatus
	}
	return s, nil
}

func InitialStatus() Status {
	return StatusScheduled
}
