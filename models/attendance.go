package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceHalfDay = "half-day"
	AttendanceOnLeave = "on-leave"
)

var AttendanceStatuses = []string{AttendancePresent, AttendanceAbsent, AttendanceLate, AttendanceHalfDay, AttendanceOnLeave}

type Attendance struct {
	ID             primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID     primitive.ObjectID  `json:"employee_id" bson:"employee_id"`
	Date           string              `json:"date" bson:"date"`
	Status         string              `json:"status" bson:"status"`
	ClockIn        *time.Time          `json:"clock_in,omitempty" bson:"clock_in,omitempty"`
	ClockOut       *time.Time          `json:"clock_out,omitempty" bson:"clock_out,omitempty"`
	WorkHours      float64             `json:"work_hours" bson:"work_hours"`
	Note           string              `json:"note,omitempty" bson:"note,omitempty"`
	LeaveRequestID *primitive.ObjectID `json:"leave_request_id,omitempty" bson:"leave_request_id,omitempty"`
	LeaveType      string              `json:"leave_type,omitempty" bson:"leave_type,omitempty"`
	CreatedAt      time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at" bson:"updated_at"`
}

type AttendanceCreatePayload struct {
	EmployeeID string `json:"employee_id" validate:"required,objectid"`
	Date       string `json:"date" validate:"required,yyyymmdd"`
	Status     string `json:"status" validate:"required,oneof=present absent late half-day on-leave"`
	ClockIn    string `json:"clock_in" validate:"omitempty,datetime=15:04"`
	ClockOut   string `json:"clock_out" validate:"omitempty,datetime=15:04"`
	Note       string `json:"note" validate:"omitempty,max=500"`
}

type AttendanceUpdatePayload struct {
	Status   string `json:"status,omitempty" validate:"omitempty,oneof=present absent late half-day on-leave"`
	ClockIn  string `json:"clock_in,omitempty" validate:"omitempty,datetime=15:04"`
	ClockOut string `json:"clock_out,omitempty" validate:"omitempty,datetime=15:04"`
	Note     string `json:"note,omitempty" validate:"omitempty,max=500"`
}

type ClockPayload struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

// AttendanceFilter narrows attendance listings. Dates are inclusive YYYY-MM-DD.
type AttendanceFilter struct {
	EmployeeID *primitive.ObjectID
	From       string
	To         string
	Status     string
	Page       int64
	Limit      int64
}

type AttendanceSummary struct {
	EmployeeID primitive.ObjectID `json:"employee_id"`
	Month      int                `json:"month"`
	Year       int                `json:"year"`
	Counts     map[string]int     `json:"counts"`
	WorkHours  float64            `json:"work_hours"`
	Records    int                `json:"records"`
}
