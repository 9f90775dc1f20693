package report

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"

	"hrms-backend/models"
)

func AttendanceWorkbook(r models.AttendanceReport) (*bytes.Buffer, error) {
	header := []interface{}{"Code", "Name", "Present", "Late", "Half-day", "Absent", "On leave", "Work hours", "Attendance %"}
	rows := make([][]interface{}, 0, len(r.Rows))
	for _, row := range r.Rows {
		rows = append(rows, []interface{}{
			row.EmployeeCode, row.Name, row.Present, row.Late, row.HalfDay,
			row.Absent, row.OnLeave, row.WorkHours, row.AttendanceRate,
		})
	}
	title := fmt.Sprintf("Attendance %04d-%02d (%d working days)", r.Year, r.Month, r.WorkingDays)
	return writeSheet("Attendance", title, header, rows, nil)
}

func PayrollWorkbook(r models.PayrollReport) (*bytes.Buffer, error) {
	header := []interface{}{"Code", "Name", "Department", "Gross", "Deductions", "Net", "Status"}
	rows := make([][]interface{}, 0, len(r.Payrolls))
	for _, p := range r.Payrolls {
		rows = append(rows, []interface{}{p.EmployeeCode, p.Name, p.Department, p.GrossPay, p.Deductions, p.NetPay, p.Status})
	}
	footer := []interface{}{"", "Total", "", r.Totals.GrossPay, r.Totals.Deductions, r.Totals.NetPay, ""}
	title := fmt.Sprintf("Payroll %04d-%02d", r.Year, r.Month)
	return writeSheet("Payroll", title, header, rows, footer)
}

func writeSheet(sheet, title string, header []interface{}, rows [][]interface{}, footer []interface{}) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("failed to create style: %w", err)
	}

	if err := f.SetCellValue(sheet, "A1", title); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A1", "A1", bold); err != nil {
		return nil, err
	}

	if err := f.SetSheetRow(sheet, "A3", &header); err != nil {
		return nil, err
	}
	last, err := excelize.CoordinatesToCellName(len(header), 3)
	if err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(sheet, "A3", last, bold); err != nil {
		return nil, err
	}

	line := 4
	for i := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return nil, fmt.Errorf("failed to write row %d: %w", line, err)
		}
		line++
	}

	if footer != nil {
		cell, _ := excelize.CoordinatesToCellName(1, line)
		if err := f.SetSheetRow(sheet, cell, &footer); err != nil {
			return nil, err
		}
		end, _ := excelize.CoordinatesToCellName(len(footer), line)
		if err := f.SetCellStyle(sheet, cell, end, bold); err != nil {
			return nil, err
		}
	}

	lastCol, _ := excelize.ColumnNumberToName(len(header))
	if err := f.SetColWidth(sheet, "A", lastCol, 16); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}
