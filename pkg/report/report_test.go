package report

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
)

func TestCountByStatus(t *testing.T) {
	counts := CountByStatus([]models.Attendance{
		{Status: models.AttendancePresent},
		{Status: models.AttendancePresent},
		{Status: models.AttendanceLate},
	})
	assert.Equal(t, 2, counts[models.AttendancePresent])
	assert.Equal(t, 1, counts[models.AttendanceLate])
	assert.Equal(t, 0, counts[models.AttendanceAbsent])
}

func TestBuildAttendanceReport(t *testing.T) {
	a := models.Employee{ID: primitive.NewObjectID(), EmployeeCode: "EMP0002", FirstName: "Ann"}
	b := models.Employee{ID: primitive.NewObjectID(), EmployeeCode: "EMP0001", FirstName: "Bob", LastName: "Ray"}
	records := []models.Attendance{
		{EmployeeID: a.ID, Status: models.AttendancePresent, WorkHours: 8},
		{EmployeeID: a.ID, Status: models.AttendanceHalfDay, WorkHours: 3.5},
		{EmployeeID: a.ID, Status: models.AttendanceAbsent},
		{EmployeeID: b.ID, Status: models.AttendanceLate, WorkHours: 7.25},
	}

	r := BuildAttendanceReport([]models.Employee{a, b}, records, 3, 2026, 4)
	require.Len(t, r.Rows, 2)

	assert.Equal(t, "EMP0001", r.Rows[0].EmployeeCode)
	assert.Equal(t, "Bob Ray", r.Rows[0].Name)
	assert.Equal(t, 1, r.Rows[0].Late)
	assert.Equal(t, 25.0, r.Rows[0].AttendanceRate)

	assert.Equal(t, 1, r.Rows[1].Present)
	assert.Equal(t, 1, r.Rows[1].HalfDay)
	assert.Equal(t, 1, r.Rows[1].Absent)
	assert.Equal(t, 11.5, r.Rows[1].WorkHours)
	assert.Equal(t, 37.5, r.Rows[1].AttendanceRate)
}

func TestBuildLeaveReport(t *testing.T) {
	r := BuildLeaveReport([]models.LeaveRequest{
		{LeaveType: models.LeaveAnnual, Status: models.LeaveApproved, Days: 3},
		{LeaveType: models.LeaveAnnual, Status: models.LeavePending, Days: 2},
		{LeaveType: models.LeaveSick, Status: models.LeaveApproved, Days: 1},
	}, 2026)

	require.Len(t, r.Rows, len(models.LeaveTypes))
	annual := r.Rows[0]
	assert.Equal(t, models.LeaveAnnual, annual.LeaveType)
	assert.Equal(t, 2, annual.Requests)
	assert.Equal(t, 3.0, annual.Days)
	assert.Equal(t, 1, annual.ByStatus[models.LeavePending])
}

func TestBuildPayrollReportGroupsByDepartment(t *testing.T) {
	eng := models.Department{ID: primitive.NewObjectID(), Name: "Engineering"}
	e1 := models.Employee{ID: primitive.NewObjectID(), EmployeeCode: "EMP0001", FirstName: "A", DepartmentID: &eng.ID}
	e2 := models.Employee{ID: primitive.NewObjectID(), EmployeeCode: "EMP0002", FirstName: "B", DepartmentID: &eng.ID}
	e3 := models.Employee{ID: primitive.NewObjectID(), EmployeeCode: "EMP0003", FirstName: "C"}

	payrolls := []models.Payroll{
		{EmployeeID: e1.ID, GrossPay: 1000, PF: 100, Tax: 90, NetPay: 810},
		{EmployeeID: e2.ID, GrossPay: 2000, PF: 200, Tax: 180, NetPay: 1620},
		{EmployeeID: e3.ID, GrossPay: 500, NetPay: 500},
	}

	r := BuildPayrollReport(payrolls, []models.Employee{e1, e2, e3}, []models.Department{eng}, 1, 2026)

	assert.Equal(t, 3, r.Totals.Employees)
	assert.Equal(t, 3500.0, r.Totals.GrossPay)
	assert.Equal(t, 570.0, r.Totals.Deductions)
	assert.Equal(t, 2930.0, r.Totals.NetPay)

	require.Len(t, r.Departments, 2)
	assert.Equal(t, "Engineering", r.Departments[0].DepartmentName)
	assert.Equal(t, 2, r.Departments[0].Employees)
	assert.Equal(t, "Unassigned", r.Departments[1].DepartmentName)
}

func TestBuildDepartmentReport(t *testing.T) {
	hr := models.Department{ID: primitive.NewObjectID(), Name: "HR"}
	ops := models.Department{ID: primitive.NewObjectID(), Name: "Ops"}
	counts := []models.DepartmentCount{
		{DepartmentID: &hr.ID, Count: 2, TotalSalary: 100000},
		{DepartmentID: nil, Count: 1, TotalSalary: 40000},
	}

	rows := BuildDepartmentReport(counts, []models.Department{hr, ops})
	require.Len(t, rows, 3)
	assert.Equal(t, int64(2), rows[0].Headcount)
	assert.Equal(t, int64(0), rows[1].Headcount)
	assert.Equal(t, "Unassigned", rows[2].DepartmentName)
}

func TestPayrollWorkbook(t *testing.T) {
	r := models.PayrollReport{
		Month: 2, Year: 2026,
		Totals: models.PayrollTotals{Employees: 1, GrossPay: 1000, Deductions: 190, NetPay: 810},
		Payrolls: []models.PayrollReportLine{
			{EmployeeCode: "EMP0001", Name: "A", Department: "Eng", GrossPay: 1000, Deductions: 190, NetPay: 810, Status: "paid"},
		},
	}

	buf, err := PayrollWorkbook(r)
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	title, err := f.GetCellValue("Payroll", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Payroll 2026-02", title)

	code, _ := f.GetCellValue("Payroll", "A4")
	assert.Equal(t, "EMP0001", code)
	total, _ := f.GetCellValue("Payroll", "B5")
	assert.Equal(t, "Total", total)
}

func TestAttendanceWorkbook(t *testing.T) {
	buf, err := AttendanceWorkbook(models.AttendanceReport{Month: 1, Year: 2026, WorkingDays: 22, Rows: []models.EmployeeAttendanceRow{
		{EmployeeCode: "EMP0001", Name: "A", Present: 20},
	}})
	require.NoError(t, err)

	f, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer f.Close()

	present, _ := f.GetCellValue("Attendance", "C4")
	assert.Equal(t, "20", present)
}
