// Package payroll holds the monthly pay formula.
package payroll

import (
	"math"

	"hrms-backend/models"
	util "hrms-backend/pkg/utils"
)

type Rates struct {
	HRA float64
	PF  float64
	Tax float64
}

var DefaultRates = Rates{HRA: 0.40, PF: 0.12, Tax: 0.10}

type Input struct {
	AnnualSalary    float64
	Allowances      float64
	Bonus           float64
	OtherDeductions float64
	WorkingDays     int
	AbsentDays      float64
}

type Breakdown struct {
	Basic            float64
	HRA              float64
	Allowances       float64
	Bonus            float64
	Gross            float64
	PF               float64
	Tax              float64
	AbsenceDeduction float64
	OtherDeductions  float64
	Net              float64
	WorkingDays      int
	AbsentDays       float64
}

// Calculate applies the fixed formula. Every amount is rounded to cents and net pay never goes negative.
func Calculate(in Input, r Rates) Breakdown {
	basic := in.AnnualSalary / 12
	hra := basic * r.HRA
	gross := basic + hra + in.Allowances + in.Bonus
	pf := basic * r.PF
	tax := math.Max(0, gross-pf) * r.Tax

	absent := math.Min(math.Max(0, in.AbsentDays), float64(in.WorkingDays))
	var absence float64
	if in.WorkingDays > 0 {
		absence = basic / float64(in.WorkingDays) * absent
	}

	net := math.Max(0, gross-pf-tax-absence-in.OtherDeductions)

	return Breakdown{
		Basic:            util.Round2(basic),
		HRA:              util.Round2(hra),
		Allowances:       util.Round2(in.Allowances),
		Bonus:            util.Round2(in.Bonus),
		Gross:            util.Round2(gross),
		PF:               util.Round2(pf),
		Tax:              util.Round2(tax),
		AbsenceDeduction: util.Round2(absence),
		OtherDeductions:  util.Round2(in.OtherDeductions),
		Net:              util.Round2(net),
		WorkingDays:      in.WorkingDays,
		AbsentDays:       absent,
	}
}

// AbsentDays counts unpaid days in a month of attendance: absences, half of each half-day, and unpaid leave.
func AbsentDays(records []models.Attendance) float64 {
	var days float64
	for _, a := range records {
		switch a.Status {
		case models.AttendanceAbsent:
			days++
		case models.AttendanceHalfDay:
			days += 0.5
		case models.AttendanceOnLeave:
			if a.LeaveType == models.LeaveUnpaid {
				days++
			}
		}
	}
	return days
}

// Apply copies the breakdown onto a payroll document.
func (b Breakdown) Apply(p *models.Payroll) {
	p.BasicSalary = b.Basic
	p.HRA = b.HRA
	p.Allowances = b.Allowances
	p.Bonus = b.Bonus
	p.GrossPay = b.Gross
	p.PF = b.PF
	p.Tax = b.Tax
	p.AbsenceDeduction = b.AbsenceDeduction
	p.OtherDeductions = b.OtherDeductions
	p.NetPay = b.Net
	p.WorkingDays = b.WorkingDays
	p.AbsentDays = b.AbsentDays
}
