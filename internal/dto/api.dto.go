package dto

// ======================================================
// APPOINTMENTS
// ======================================================

type CreateAppointmentRequest struct {
	UserEmail       string `json:"userEmail" binding:"required"`
	AppointmentDate string `json:"appointmentDate" binding:"required,isodate"`
	StartTime       string `json:"startTime" binding:"required,clock"`
	EndTime         string `json:"endTime" binding:"required,clock"`
	Note            string `json:"note"`
	DoctorID        string `json:"doctorId"`
}

// UpdateAppointmentRequest is a partial update; absent fields stay as they are.
type UpdateAppointmentRequest struct {
	UserEmail       *string `json:"userEmail"`
	AppointmentDate *string `json:"appointmentDate" binding:"omitempty,isodate"`
	StartTime       *string `json:"startTime" binding:"omitempty,clock"`
	EndTime         *string `json:"endTime" binding:"omitempty,clock"`
	Note            *string `json:"note"`
	Status          *string `json:"status"`
}

// ======================================================
// SLOTS
// ======================================================

type CreateSlotRequest struct {
	Date      string `json:"date" binding:"required,isodate"`
	StartTime string `json:"startTime" binding:"required,clock"`
	EndTime   string `json:"endTime" binding:"required,clock"`
	DoctorID  string `json:"doctorId"`
}

type TimeRangeRequest struct {
	StartTime string `json:"startTime" binding:"required,clock"`
	EndTime   string `json:"endTime" binding:"required,clock"`
}

type BulkCreateSlotsRequest struct {
	StartDate       string             `json:"startDate" binding:"required,isodate"`
	EndDate         string             `json:"endDate" binding:"required,isodate"`
	TimeSlots       []TimeRangeRequest `json:"timeSlots" binding:"required,min=1,dive"`
	DoctorID        string             `json:"doctorId"`
	ExcludeWeekends bool               `json:"excludeWeekends"`
}

type BulkCreateResult struct {
	Created int `json:"created"`
}
