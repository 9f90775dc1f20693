package models

import "go.mongodb.org/mongo-driver/bson/primitive"

type DashboardStats struct {
	TotalEmployees       int64           `json:"total_employees"`
	ActiveEmployees      int64           `json:"active_employees"`
	OnLeaveEmployees     int64           `json:"on_leave_employees"`
	TotalDepartments     int64           `json:"total_departments"`
	PendingLeaveRequests int64           `json:"pending_leave_requests"`
	TodayAttendance      map[string]int  `json:"today_attendance"`
	MonthPayrollTotal    float64         `json:"month_payroll_total"`
	DepartmentHeadcount  []DepartmentRow `json:"department_headcount"`
}

type EmployeeAttendanceRow struct {
	EmployeeID     primitive.ObjectID `json:"employee_id"`
	EmployeeCode   string             `json:"employee_code"`
	Name           string             `json:"name"`
	Present        int                `json:"present"`
	Late           int                `json:"late"`
	HalfDay        int                `json:"half_day"`
	Absent         int                `json:"absent"`
	OnLeave        int                `json:"on_leave"`
	WorkHours      float64            `json:"work_hours"`
	AttendanceRate float64            `json:"attendance_rate"`
}

type AttendanceReport struct {
	Month       int                     `json:"month"`
	Year        int                     `json:"year"`
	WorkingDays int                     `json:"working_days"`
	Rows        []EmployeeAttendanceRow `json:"rows"`
}

type LeaveReportRow struct {
	LeaveType string         `json:"leave_type"`
	Requests  int            `json:"requests"`
	Days      float64        `json:"days"`
	ByStatus  map[string]int `json:"by_status"`
}

type LeaveReport struct {
	Year int              `json:"year"`
	Rows []LeaveReportRow `json:"rows"`
}

type PayrollTotals struct {
	Employees  int     `json:"employees"`
	GrossPay   float64 `json:"gross_pay"`
	Deductions float64 `json:"deductions"`
	NetPay     float64 `json:"net_pay"`
}

type PayrollDepartmentRow struct {
	DepartmentID   *primitive.ObjectID `json:"department_id,omitempty"`
	DepartmentName string              `json:"department_name"`
	PayrollTotals
}

type PayrollReport struct {
	Month       int                    `json:"month"`
	Year        int                    `json:"year"`
	Totals      PayrollTotals          `json:"totals"`
	Departments []PayrollDepartmentRow `json:"departments"`
	Payrolls    []PayrollReportLine    `json:"payrolls"`
}

type PayrollReportLine struct {
	EmployeeCode string  `json:"employee_code"`
	Name         string  `json:"name"`
	Department   string  `json:"department"`
	GrossPay     float64 `json:"gross_pay"`
	Deductions   float64 `json:"deductions"`
	NetPay       float64 `json:"net_pay"`
	Status       string  `json:"status"`
}

type DepartmentRow struct {
	DepartmentID   *primitive.ObjectID `json:"department_id,omitempty"`
	DepartmentName string              `json:"department_name"`
	Headcount      int64               `json:"headcount"`
	AnnualSalary   float64             `json:"annual_salary"`
}
