// Package report aggregates HR records into report rows and renders them as XLSX workbooks.
package report

import (
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	util "hrms-backend/pkg/utils"
)

// CountByStatus tallies attendance records per status. Every known status is present in the result.
func CountByStatus(records []models.Attendance) map[string]int {
	counts := make(map[string]int, len(models.AttendanceStatuses))
	for _, s := range models.AttendanceStatuses {
		counts[s] = 0
	}
	for _, r := range records {
		counts[r.Status]++
	}
	return counts
}

func BuildAttendanceReport(employees []models.Employee, records []models.Attendance, month, year, workingDays int) models.AttendanceReport {
	byEmployee := make(map[primitive.ObjectID][]models.Attendance)
	for _, r := range records {
		byEmployee[r.EmployeeID] = append(byEmployee[r.EmployeeID], r)
	}

	rows := make([]models.EmployeeAttendanceRow, 0, len(employees))
	for _, e := range employees {
		row := models.EmployeeAttendanceRow{
			EmployeeID:   e.ID,
			EmployeeCode: e.EmployeeCode,
			Name:         e.FullName(),
		}
		for _, r := range byEmployee[e.ID] {
			switch r.Status {
			case models.AttendancePresent:
				row.Present++
			case models.AttendanceLate:
				row.Late++
			case models.AttendanceHalfDay:
				row.HalfDay++
			case models.AttendanceAbsent:
				row.Absent++
			case models.AttendanceOnLeave:
				row.OnLeave++
			}
			row.WorkHours += r.WorkHours
		}
		row.WorkHours = util.Round2(row.WorkHours)
		if workingDays > 0 {
			attended := float64(row.Present+row.Late) + 0.5*float64(row.HalfDay)
			row.AttendanceRate = util.Round2(attended / float64(workingDays) * 100)
		}
		rows = append(rows, row)
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].EmployeeCode < rows[j].EmployeeCode })

	return models.AttendanceReport{Month: month, Year: year, WorkingDays: workingDays, Rows: rows}
}

func BuildLeaveReport(requests []models.LeaveRequest, year int) models.LeaveReport {
	byType := make(map[string]*models.LeaveReportRow, len(models.LeaveTypes))
	rows := make([]models.LeaveReportRow, 0, len(models.LeaveTypes))
	for _, t := range models.LeaveTypes {
		rows = append(rows, models.LeaveReportRow{LeaveType: t, ByStatus: map[string]int{}})
	}
	for i := range rows {
		byType[rows[i].LeaveType] = &rows[i]
	}

	for _, r := range requests {
		row, ok := byType[r.LeaveType]
		if !ok {
			continue
		}
		row.Requests++
		row.ByStatus[r.Status]++
		if r.Status == models.LeaveApproved {
			row.Days += r.Days
		}
	}

	return models.LeaveReport{Year: year, Rows: rows}
}

func BuildPayrollReport(payrolls []models.Payroll, employees []models.Employee, departments []models.Department, month, year int) models.PayrollReport {
	empByID := make(map[primitive.ObjectID]models.Employee, len(employees))
	for _, e := range employees {
		empByID[e.ID] = e
	}
	deptName := make(map[primitive.ObjectID]string, len(departments))
	for _, d := range departments {
		deptName[d.ID] = d.Name
	}

	report := models.PayrollReport{Month: month, Year: year}
	byDept := make(map[string]*models.PayrollDepartmentRow)
	var order []string

	for _, p := range payrolls {
		emp := empByID[p.EmployeeID]
		deductions := p.TotalDeductions()

		key, name := "", "Unassigned"
		if emp.DepartmentID != nil {
			key = emp.DepartmentID.Hex()
			if n, ok := deptName[*emp.DepartmentID]; ok {
				name = n
			}
		}

		row, ok := byDept[key]
		if !ok {
			row = &models.PayrollDepartmentRow{DepartmentID: emp.DepartmentID, DepartmentName: name}
			byDept[key] = row
			order = append(order, key)
		}
		addTotals(&row.PayrollTotals, p.GrossPay, deductions, p.NetPay)
		addTotals(&report.Totals, p.GrossPay, deductions, p.NetPay)

		report.Payrolls = append(report.Payrolls, models.PayrollReportLine{
			EmployeeCode: emp.EmployeeCode,
			Name:         emp.FullName(),
			Department:   name,
			GrossPay:     p.GrossPay,
			Deductions:   util.Round2(deductions),
			NetPay:       p.NetPay,
			Status:       p.Status,
		})
	}

	for _, key := range order {
		report.Departments = append(report.Departments, *byDept[key])
	}
	sort.Slice(report.Departments, func(i, j int) bool {
		return report.Departments[i].DepartmentName < report.Departments[j].DepartmentName
	})
	sort.Slice(report.Payrolls, func(i, j int) bool { return report.Payrolls[i].EmployeeCode < report.Payrolls[j].EmployeeCode })
	return report
}

func addTotals(t *models.PayrollTotals, gross, deductions, net float64) {
	t.Employees++
	t.GrossPay = util.Round2(t.GrossPay + gross)
	t.Deductions = util.Round2(t.Deductions + deductions)
	t.NetPay = util.Round2(t.NetPay + net)
}

// BuildDepartmentReport joins headcount aggregation rows with department names.
func BuildDepartmentReport(counts []models.DepartmentCount, departments []models.Department) []models.DepartmentRow {
	byID := make(map[primitive.ObjectID]models.DepartmentCount, len(counts))
	var unassigned *models.DepartmentCount
	for i, c := range counts {
		if c.DepartmentID == nil {
			unassigned = &counts[i]
			continue
		}
		byID[*c.DepartmentID] = c
	}

	rows := make([]models.DepartmentRow, 0, len(departments)+1)
	for _, d := range departments {
		id := d.ID
		c := byID[d.ID]
		rows = append(rows, models.DepartmentRow{
			DepartmentID:   &id,
			DepartmentName: d.Name,
			Headcount:      c.Count,
			AnnualSalary:   util.Round2(c.TotalSalary),
		})
	}
	if unassigned != nil && unassigned.Count > 0 {
		rows = append(rows, models.DepartmentRow{
			DepartmentName: "Unassigned",
			Headcount:      unassigned.Count,
			AnnualSalary:   util.Round2(unassigned.TotalSalary),
		})
	}
	return rows
}
