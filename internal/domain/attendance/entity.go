package attendance

import (
	"time"
)

const (
	StatusCheckedIn  = "checked_in"
	StatusCheckedOut = "checked_out"
)

// Attendance is one daily session per (employee, date). Created by a
// successful check-in, closed exactly once, never deleted.
type Attendance struct {
	ID                 string
	EmployeeID         string
	Date               time.Time
	Status             string
	CheckInTime        time.Time
	CheckOutTime       *time.Time
	CheckInLatitude    float64
	CheckInLongitude   float64
	CheckInLabel       *string
	CheckOutLatitude   *float64
	CheckOutLongitude  *float64
	CheckOutLabel      *string
	DistanceFromOffice float64
	IsLate             bool
	MinutesLate        int
	TotalHours         *float64
	AutoClosed         bool
	CreatedAt          time.Time
	UpdatedAt          time.Time

	// DTO
	EmployeeName *string
}
