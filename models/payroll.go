package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	PayrollDraft     = "draft"
	PayrollProcessed = "processed"
	PayrollPaid      = "paid"
)

type Payroll struct {
	ID               primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	EmployeeID       primitive.ObjectID `json:"employee_id" bson:"employee_id"`
	Month            int                `json:"month" bson:"month"`
	Year             int                `json:"year" bson:"year"`
	BasicSalary      float64            `json:"basic_salary" bson:"basic_salary"`
	HRA              float64            `json:"hra" bson:"hra"`
	Allowances       float64            `json:"allowances" bson:"allowances"`
	Bonus            float64            `json:"bonus" bson:"bonus"`
	GrossPay         float64            `json:"gross_pay" bson:"gross_pay"`
	PF               float64            `json:"pf" bson:"pf"`
	Tax              float64            `json:"tax" bson:"tax"`
	AbsenceDeduction float64            `json:"absence_deduction" bson:"absence_deduction"`
	OtherDeductions  float64            `json:"other_deductions" bson:"other_deductions"`
	NetPay           float64            `json:"net_pay" bson:"net_pay"`
	WorkingDays      int                `json:"working_days" bson:"working_days"`
	AbsentDays       float64            `json:"absent_days" bson:"absent_days"`
	Status           string             `json:"status" bson:"status"`
	PaidAt           *time.Time         `json:"paid_at,omitempty" bson:"paid_at,omitempty"`
	Notes            string             `json:"notes,omitempty" bson:"notes,omitempty"`
	CreatedAt        time.Time          `json:"created_at" bson:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" bson:"updated_at"`
}

// TotalDeductions sums everything subtracted from gross pay.
func (p *Payroll) TotalDeductions() float64 {
	return p.PF + p.Tax + p.AbsenceDeduction + p.OtherDeductions
}

type PayrollGeneratePayload struct {
	EmployeeID      string  `json:"employee_id" validate:"required,objectid"`
	Month           int     `json:"month" validate:"required,min=1,max=12"`
	Year            int     `json:"year" validate:"required,min=2000,max=2100"`
	Allowances      float64 `json:"allowances" validate:"min=0"`
	Bonus           float64 `json:"bonus" validate:"min=0"`
	OtherDeductions float64 `json:"other_deductions" validate:"min=0"`
	Notes           string  `json:"notes" validate:"omitempty,max=500"`
}

type PayrollGenerateAllPayload struct {
	Month int `json:"month" validate:"required,min=1,max=12"`
	Year  int `json:"year" validate:"required,min=2000,max=2100"`
}

type PayrollStatusPayload struct {
	Status string `json:"status" validate:"required,oneof=draft processed paid"`
}

type PayrollFilter struct {
	EmployeeID *primitive.ObjectID
	Month      int
	Year       int
	Status     string
}
