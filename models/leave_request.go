package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	LeaveAnnual    = "annual"
	LeaveSick      = "sick"
	LeaveCasual    = "casual"
	LeaveMaternity = "maternity"
	LeavePaternity = "paternity"
	LeaveUnpaid    = "unpaid"
)

var LeaveTypes = []string{LeaveAnnual, LeaveSick, LeaveCasual, LeaveMaternity, LeavePaternity, LeaveUnpaid}

const (
	LeavePending   = "pending"
	LeaveApproved  = "approved"
	LeaveRejected  = "rejected"
	LeaveCancelled = "cancelled"
)

type LeaveRequest struct {
	ID           primitive.ObjectID  `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID   primitive.ObjectID  `json:"employee_id" bson:"employee_id"`
	LeaveType    string              `json:"leave_type" bson:"leave_type"`
	StartDate    string              `json:"start_date" bson:"start_date"`
	EndDate      string              `json:"end_date" bson:"end_date"`
	Days         float64             `json:"days" bson:"days"`
	Reason       string              `json:"reason" bson:"reason"`
	Status       string              `json:"status" bson:"status"`
	ReviewedBy   *primitive.ObjectID `json:"reviewed_by,omitempty" bson:"reviewed_by,omitempty"`
	ReviewedAt   *time.Time          `json:"reviewed_at,omitempty" bson:"reviewed_at,omitempty"`
	ReviewNote   string              `json:"review_note,omitempty" bson:"review_note,omitempty"`
	AttachmentID *primitive.ObjectID `json:"attachment_id,omitempty" bson:"attachment_id,omitempty"`
	CreatedAt    time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time           `json:"updated_at" bson:"updated_at"`
}

type LeaveRequestCreatePayload struct {
	LeaveType string `json:"leave_type" validate:"required,oneof=annual sick casual maternity paternity unpaid"`
	StartDate string `json:"start_date" validate:"required,yyyymmdd"`
	EndDate   string `json:"end_date" validate:"required,yyyymmdd"`
	Reason    string `json:"reason" validate:"required,min=5,max=500"`
}

type LeaveReviewPayload struct {
	Note string `json:"note" validate:"omitempty,max=500"`
}

type LeaveRequestFilter struct {
	EmployeeID *primitive.ObjectID
	Status     string
	LeaveType  string
	Year       int
}

type LeaveTypeBalance struct {
	Type    string  `json:"type" bson:"type"`
	Total   float64 `json:"total" bson:"total"`
	Used    float64 `json:"used" bson:"used"`
	Pending float64 `json:"pending" bson:"pending"`
}

// Available is the number of days that can still be requested.
func (b LeaveTypeBalance) Available() float64 {
	return b.Total - b.Used - b.Pending
}

type LeaveBalance struct {
	ID         primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID primitive.ObjectID `json:"employee_id" bson:"employee_id"`
	Year       int                `json:"year" bson:"year"`
	Balances   []LeaveTypeBalance `json:"balances" bson:"balances"`
	Version    int64              `json:"-" bson:"version"`
	CreatedAt  time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time          `json:"updated_at" bson:"updated_at"`
}

// Find returns the entry for leaveType, or nil.
func (lb *LeaveBalance) Find(leaveType string) *LeaveTypeBalance {
	for i := range lb.Balances {
		if lb.Balances[i].Type == leaveType {
			return &lb.Balances[i]
		}
	}
	return nil
}

// DefaultLeaveAllocation is the yearly entitlement given to new balances.
var DefaultLeaveAllocation = map[string]float64{
	LeaveAnnual:    15,
	LeaveSick:      10,
	LeaveCasual:    7,
	LeaveMaternity: 90,
	LeavePaternity: 10,
	LeaveUnpaid:    0,
}

func NewLeaveBalance(employeeID primitive.ObjectID, year int) *LeaveBalance {
	balances := make([]LeaveTypeBalance, 0, len(LeaveTypes))
	for _, t := range LeaveTypes {
		balances = append(balances, LeaveTypeBalance{Type: t, Total: DefaultLeaveAllocation[t]})
	}
	now := time.Now()
	return &LeaveBalance{
		EmployeeID: employeeID,
		Year:       year,
		Balances:   balances,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

type LeaveBalanceUpdatePayload struct {
	Year     int                `json:"year" validate:"omitempty,min=2000,max=2100"`
	Balances []LeaveTotalChange `json:"balances" validate:"required,min=1,dive"`
}

type LeaveTotalChange struct {
	Type  string  `json:"type" validate:"required,oneof=annual sick casual maternity paternity unpaid"`
	Total float64 `json:"total" validate:"min=0"`
}
