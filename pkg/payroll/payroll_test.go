package payroll

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"hrms-backend/models"
)

func TestCalculateNoAbsence(t *testing.T) {
	b := Calculate(Input{AnnualSalary: 120000, WorkingDays: 22}, DefaultRates)

	assert.Equal(t, 10000.0, b.Basic)
	assert.Equal(t, 4000.0, b.HRA)
	assert.Equal(t, 14000.0, b.Gross)
	assert.Equal(t, 1200.0, b.PF)
	assert.Equal(t, 1280.0, b.Tax) // (14000 - 1200) * 0.10
	assert.Equal(t, 0.0, b.AbsenceDeduction)
	assert.Equal(t, 11520.0, b.Net)
}

func TestCalculateWithAbsenceAllowancesAndDeductions(t *testing.T) {
	b := Calculate(Input{
		AnnualSalary:    240000,
		Allowances:      1000,
		Bonus:           500,
		OtherDeductions: 250,
		WorkingDays:     20,
		AbsentDays:      2.5,
	}, DefaultRates)

	// basic 20000, hra 8000, gross 29500, pf 2400, tax 2710, absence 2500
	assert.Equal(t, 20000.0, b.Basic)
	assert.Equal(t, 29500.0, b.Gross)
	assert.Equal(t, 2400.0, b.PF)
	assert.Equal(t, 2710.0, b.Tax)
	assert.Equal(t, 2500.0, b.AbsenceDeduction)
	assert.Equal(t, 21640.0, b.Net)
}

func TestCalculateClampsAbsenceAndNet(t *testing.T) {
	b := Calculate(Input{AnnualSalary: 12000, WorkingDays: 20, AbsentDays: 45, OtherDeductions: 5000}, DefaultRates)

	assert.Equal(t, 20.0, b.AbsentDays)
	assert.Equal(t, 1000.0, b.AbsenceDeduction)
	assert.Equal(t, 0.0, b.Net)
}

func TestCalculateZeroWorkingDays(t *testing.T) {
	b := Calculate(Input{AnnualSalary: 12000, AbsentDays: 3}, DefaultRates)
	assert.Equal(t, 0.0, b.AbsenceDeduction)
}

func TestAbsentDays(t *testing.T) {
	records := []models.Attendance{
		{Status: models.AttendancePresent},
		{Status: models.AttendanceAbsent},
		{Status: models.AttendanceHalfDay},
		{Status: models.AttendanceLate},
		{Status: models.AttendanceOnLeave, LeaveType: models.LeaveAnnual},
		{Status: models.AttendanceOnLeave, LeaveType: models.LeaveUnpaid},
	}
	assert.Equal(t, 2.5, AbsentDays(records))
}

func TestApply(t *testing.T) {
	var p models.Payroll
	Calculate(Input{AnnualSalary: 120000, WorkingDays: 22}, DefaultRates).Apply(&p)
	assert.Equal(t, 11520.0, p.NetPay)
	assert.Equal(t, 22, p.WorkingDays)
	assert.Equal(t, 2480.0, p.TotalDeductions())
}
