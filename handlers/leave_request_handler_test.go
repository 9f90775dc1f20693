package handlers_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"hrms-backend/models"
	"hrms-backend/repository"
	"hrms-backend/router"
)

const dateLayout = "2006-01-02"

type leaveFixture struct {
	env      *testEnv
	employee *account
	manager  *account
	start    time.Time
}

func newLeaveFixture(t *testing.T, overrides ...func(*router.Dependencies)) *leaveFixture {
	env := newTestEnv(t, overrides...)
	return &leaveFixture{
		env:      env,
		employee: env.newAccount(t, models.RoleEmployee, "emp@example.com", 60000),
		manager:  env.newAccount(t, models.RoleManager, "mgr@example.com", 90000),
		start:    nextMonday(),
	}
}

// apply files a leave request for acc from start+offset lasting days calendar days.
func (f *leaveFixture) apply(t *testing.T, acc *account, leaveType string, offset, days int) *http.Response {
	t.Helper()
	start := f.start.AddDate(0, 0, offset)
	return f.env.do(t, http.MethodPost, "/api/leaves", acc.Token, models.LeaveRequestCreatePayload{
		LeaveType: leaveType,
		StartDate: start.Format(dateLayout),
		EndDate:   start.AddDate(0, 0, days-1).Format(dateLayout),
		Reason:    "Family matters",
	})
}

func (f *leaveFixture) mustApply(t *testing.T, acc *account, leaveType string, offset, days int) models.LeaveRequest {
	t.Helper()
	resp := f.apply(t, acc, leaveType, offset, days)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var req models.LeaveRequest
	decode(t, resp, &req)
	return req
}

func (f *leaveFixture) balance(t *testing.T, leaveType string) models.LeaveTypeBalance {
	t.Helper()
	b, err := f.env.balances.GetOrCreate(context.Background(), f.employee.Employee.ID, f.start.Year())
	require.NoError(t, err)
	entry := b.Find(leaveType)
	require.NotNil(t, entry)
	return *entry
}

func TestCreateLeaveReservesPendingDays(t *testing.T) {
	f := newLeaveFixture(t)

	// Monday to Sunday holds five working days
	req := f.mustApply(t, f.employee, models.LeaveAnnual, 0, 7)
	assert.Equal(t, models.LeavePending, req.Status)
	assert.Equal(t, 5.0, req.Days)

	b := f.balance(t, models.LeaveAnnual)
	assert.Equal(t, 5.0, b.Pending)
	assert.Equal(t, 0.0, b.Used)
	assert.Equal(t, models.DefaultLeaveAllocation[models.LeaveAnnual]-5, b.Available())
}

func TestCreateLeaveValidation(t *testing.T) {
	f := newLeaveFixture(t)

	past := time.Now().UTC().AddDate(0, 0, -3).Format(dateLayout)
	resp := f.env.do(t, http.MethodPost, "/api/leaves", f.employee.Token, models.LeaveRequestCreatePayload{
		LeaveType: models.LeaveAnnual, StartDate: past, EndDate: past, Reason: "Too late now",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Leave cannot start in the past", message(t, resp))

	start := f.start.Format(dateLayout)
	end := f.start.AddDate(0, 0, -1).Format(dateLayout)
	resp = f.env.do(t, http.MethodPost, "/api/leaves", f.employee.Token, models.LeaveRequestCreatePayload{
		LeaveType: models.LeaveAnnual, StartDate: start, EndDate: end, Reason: "Backwards range",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// Saturday and Sunday only
	resp = f.apply(t, f.employee, models.LeaveAnnual, 5, 2)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "The selected range contains no working days", message(t, resp))

	resp = f.env.do(t, http.MethodPost, "/api/leaves", f.employee.Token, models.LeaveRequestCreatePayload{
		LeaveType: "vacation", StartDate: start, EndDate: start, Reason: "Unknown type",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateLeaveRejectsOverlapAndInsufficientBalance(t *testing.T) {
	f := newLeaveFixture(t)

	f.mustApply(t, f.employee, models.LeaveAnnual, 0, 3)

	resp := f.apply(t, f.employee, models.LeaveSick, 2, 2)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// casual allows 7 days; two full weeks are 10 working days
	resp = f.apply(t, f.employee, models.LeaveCasual, 7, 14)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, message(t, resp), "Insufficient casual leave balance")
	assert.Equal(t, 0.0, f.balance(t, models.LeaveCasual).Pending)
}

func TestUnpaidLeaveIgnoresBalance(t *testing.T) {
	f := newLeaveFixture(t)

	req := f.mustApply(t, f.employee, models.LeaveUnpaid, 0, 5)
	assert.Equal(t, 5.0, req.Days)
	assert.Equal(t, 5.0, f.balance(t, models.LeaveUnpaid).Pending)
}

func TestApproveLeave(t *testing.T) {
	f := newLeaveFixture(t)
	req := f.mustApply(t, f.employee, models.LeaveAnnual, 0, 3)

	resp := f.env.do(t, http.MethodPut, "/api/leaves/"+req.ID.Hex()+"/approve", f.manager.Token, models.LeaveReviewPayload{Note: "Enjoy"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var approved models.LeaveRequest
	decode(t, resp, &approved)
	assert.Equal(t, models.LeaveApproved, approved.Status)
	assert.Equal(t, "Enjoy", approved.ReviewNote)
	require.NotNil(t, approved.ReviewedBy)
	assert.Equal(t, f.manager.User.ID, *approved.ReviewedBy)

	b := f.balance(t, models.LeaveAnnual)
	assert.Equal(t, 3.0, b.Used)
	assert.Equal(t, 0.0, b.Pending)

	for i := 0; i < 3; i++ {
		day := f.start.AddDate(0, 0, i).Format(dateLayout)
		a, err := f.env.attendance.FindByEmployeeAndDate(context.Background(), f.employee.Employee.ID, day)
		require.NoError(t, err, day)
		assert.Equal(t, models.AttendanceOnLeave, a.Status)
		assert.Equal(t, models.LeaveAnnual, a.LeaveType)
	}

	unread, err := f.env.notifications.CountUnread(context.Background(), f.employee.User.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)
}

func TestApproveTwiceChangesBalanceOnce(t *testing.T) {
	f := newLeaveFixture(t)
	req := f.mustApply(t, f.employee, models.LeaveAnnual, 0, 2)
	path := "/api/leaves/" + req.ID.Hex() + "/approve"

	require.Equal(t, http.StatusOK, f.env.do(t, http.MethodPut, path, f.manager.Token, nil).StatusCode)

	resp := f.env.do(t, http.MethodPut, path, f.manager.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Only pending leave requests can be reviewed", message(t, resp))

	resp = f.env.do(t, http.MethodPut, "/api/leaves/"+req.ID.Hex()+"/reject", f.manager.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	b := f.balance(t, models.LeaveAnnual)
	assert.Equal(t, 2.0, b.Used)
	assert.Equal(t, 0.0, b.Pending)
}

func TestRejectLeaveReleasesPendingDays(t *testing.T) {
	f := newLeaveFixture(t)
	req := f.mustApply(t, f.employee, models.LeaveSick, 0, 4)
	require.Equal(t, 4.0, f.balance(t, models.LeaveSick).Pending)

	resp := f.env.do(t, http.MethodPut, "/api/leaves/"+req.ID.Hex()+"/reject", f.manager.Token, models.LeaveReviewPayload{Note: "Short staffed"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	b := f.balance(t, models.LeaveSick)
	assert.Equal(t, 0.0, b.Pending)
	assert.Equal(t, 0.0, b.Used)

	list, _, err := f.env.notifications.ListByUser(context.Background(), f.employee.User.ID, false, 1, 10)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Contains(t, list[0].Message, "Short staffed")
}

func TestCancelLeave(t *testing.T) {
	f := newLeaveFixture(t)
	req := f.mustApply(t, f.employee, models.LeaveAnnual, 0, 3)
	path := "/api/leaves/" + req.ID.Hex() + "/cancel"

	resp := f.env.do(t, http.MethodPut, path, f.manager.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.do(t, http.MethodPut, path, f.employee.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0.0, f.balance(t, models.LeaveAnnual).Pending)

	resp = f.env.do(t, http.MethodPut, path, f.employee.Token, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	// cancelled requests no longer block the range
	f.mustApply(t, f.employee, models.LeaveAnnual, 0, 3)
}

func TestReviewerCannotReviewOwnLeave(t *testing.T) {
	f := newLeaveFixture(t)
	req := f.mustApply(t, f.manager, models.LeaveAnnual, 0, 1)

	resp := f.env.do(t, http.MethodPut, "/api/leaves/"+req.ID.Hex()+"/approve", f.manager.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestEmployeeCannotReview(t *testing.T) {
	f := newLeaveFixture(t)
	other := f.env.newAccount(t, models.RoleEmployee, "other@example.com", 0)
	req := f.mustApply(t, f.employee, models.LeaveAnnual, 0, 1)

	resp := f.env.do(t, http.MethodPut, "/api/leaves/"+req.ID.Hex()+"/approve", other.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.do(t, http.MethodGet, "/api/leaves/"+req.ID.Hex(), other.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp = f.env.do(t, http.MethodGet, "/api/leaves/"+req.ID.Hex(), f.employee.Token, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestListLeaveRequests(t *testing.T) {
	f := newLeaveFixture(t)
	f.mustApply(t, f.employee, models.LeaveAnnual, 0, 1)
	f.mustApply(t, f.employee, models.LeaveSick, 7, 1)
	f.mustApply(t, f.manager, models.LeaveAnnual, 0, 1)

	resp := f.env.do(t, http.MethodGet, "/api/leaves/me", f.employee.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var mine []models.LeaveRequest
	decode(t, resp, &mine)
	assert.Len(t, mine, 2)

	resp = f.env.do(t, http.MethodGet, "/api/leaves?type=annual", f.manager.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var annual []models.LeaveRequest
	decode(t, resp, &annual)
	assert.Len(t, annual, 2)

	resp = f.env.do(t, http.MethodGet, "/api/leaves", f.employee.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func TestLeaveBalanceEndpoints(t *testing.T) {
	f := newLeaveFixture(t)
	hr := f.env.newAccount(t, models.RoleHR, "hr@example.com", 0)
	f.mustApply(t, f.employee, models.LeaveAnnual, 0, 5)

	year := strconv.Itoa(f.start.Year())
	resp := f.env.do(t, http.MethodGet, "/api/leaves/balance/me?year="+year, f.employee.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var balance models.LeaveBalance
	decode(t, resp, &balance)
	assert.Equal(t, 5.0, balance.Find(models.LeaveAnnual).Pending)

	path := "/api/leaves/balance/" + f.employee.Employee.ID.Hex()
	resp = f.env.do(t, http.MethodPut, path, hr.Token, models.LeaveBalanceUpdatePayload{
		Year:     f.start.Year(),
		Balances: []models.LeaveTotalChange{{Type: models.LeaveAnnual, Total: 4}},
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = f.env.do(t, http.MethodPut, path, hr.Token, models.LeaveBalanceUpdatePayload{
		Year:     f.start.Year(),
		Balances: []models.LeaveTotalChange{{Type: models.LeaveAnnual, Total: 20}},
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 20.0, f.balance(t, models.LeaveAnnual).Total)

	resp = f.env.do(t, http.MethodPut, path, f.manager.Token, models.LeaveBalanceUpdatePayload{
		Balances: []models.LeaveTotalChange{{Type: models.LeaveAnnual, Total: 30}},
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	other := f.env.newAccount(t, models.RoleEmployee, "other@example.com", 0)
	resp = f.env.do(t, http.MethodGet, path, other.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

func uploadRequest(t *testing.T, path, bearer, filename, contentType string, data []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="attachment"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := w.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+bearer)
	return req
}

func TestLeaveAttachment(t *testing.T) {
	f := newLeaveFixture(t)
	req := f.mustApply(t, f.employee, models.LeaveSick, 0, 1)
	path := "/api/leaves/" + req.ID.Hex() + "/attachment"
	pdf := []byte("%PDF-1.4 medical certificate")

	resp, err := f.env.app.Test(uploadRequest(t, path, f.employee.Token, "note.exe", "application/octet-stream", pdf), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = f.env.app.Test(uploadRequest(t, path, f.manager.Token, "note.pdf", "application/pdf", pdf), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, err = f.env.app.Test(uploadRequest(t, path, f.employee.Token, "note.pdf", "application/pdf", pdf), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated models.LeaveRequest
	decode(t, resp, &updated)
	require.NotNil(t, updated.AttachmentID)

	resp = f.env.do(t, http.MethodGet, "/api/leaves/attachments/"+updated.AttachmentID.Hex(), f.manager.Token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
	got, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, pdf, got)

	other := f.env.newAccount(t, models.RoleEmployee, "other@example.com", 0)
	resp = f.env.do(t, http.MethodGet, "/api/leaves/attachments/"+updated.AttachmentID.Hex(), other.Token, nil)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}

// failingLeaveDays lets the first allowed on-leave writes succeed and fails the rest.
type failingLeaveDays struct {
	repository.AttendanceRepository
	allowed int
	writes  int
}

func (f *failingLeaveDays) UpsertLeaveDay(ctx context.Context, employeeID primitive.ObjectID, date string, leaveRequestID primitive.ObjectID, leaveType string) error {
	f.writes++
	if f.writes > f.allowed {
		return errors.New("write failed")
	}
	return f.AttendanceRepository.UpsertLeaveDay(ctx, employeeID, date, leaveRequestID, leaveType)
}

func TestFailedApprovalReturnsRequestToPending(t *testing.T) {
	attendance := &failingLeaveDays{allowed: 1}
	f := newLeaveFixture(t, func(d *router.Dependencies) {
		attendance.AttendanceRepository = d.Attendance
		d.Attendance = attendance
	})
	req := f.mustApply(t, f.employee, models.LeaveAnnual, 0, 3)
	path := "/api/leaves/" + req.ID.Hex() + "/approve"

	resp := f.env.do(t, http.MethodPut, path, f.manager.Token, models.LeaveReviewPayload{Note: "Approved"})
	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

	stored, err := f.env.leaves.FindByID(context.Background(), req.ID)
	require.NoError(t, err)
	assert.Equal(t, models.LeavePending, stored.Status)
	assert.Nil(t, stored.ReviewedBy)
	assert.Empty(t, stored.ReviewNote)

	b := f.balance(t, models.LeaveAnnual)
	assert.Equal(t, 3.0, b.Pending)
	assert.Equal(t, 0.0, b.Used)

	_, err = f.env.attendance.FindByEmployeeAndDate(context.Background(), f.employee.Employee.ID, f.start.Format(dateLayout))
	assert.ErrorIs(t, err, repository.ErrNotFound)

	unread, err := f.env.notifications.CountUnread(context.Background(), f.employee.User.ID)
	require.NoError(t, err)
	assert.Zero(t, unread)

	attendance.allowed = 100
	require.Equal(t, http.StatusOK, f.env.do(t, http.MethodPut, path, f.manager.Token, nil).StatusCode)
	b = f.balance(t, models.LeaveAnnual)
	assert.Equal(t, 0.0, b.Pending)
	assert.Equal(t, 3.0, b.Used)
}

func TestLeaveAcrossYearsChargesEachYear(t *testing.T) {
	f := newLeaveFixture(t)
	year := time.Now().Year() + 1
	start := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC)
	end := time.Date(year+1, time.January, 6, 0, 0, 0, 0, time.UTC)

	perYear := map[int]float64{}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if d.Weekday() != time.Saturday && d.Weekday() != time.Sunday {
			perYear[d.Year()]++
		}
	}

	resp := f.env.do(t, http.MethodPost, "/api/leaves", f.employee.Token, models.LeaveRequestCreatePayload{
		LeaveType: models.LeaveAnnual,
		StartDate: start.Format(dateLayout),
		EndDate:   end.Format(dateLayout),
		Reason:    "Year-end travel",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var req models.LeaveRequest
	decode(t, resp, &req)
	assert.Equal(t, perYear[year]+perYear[year+1], req.Days)

	yearEntry := func(y int) models.LeaveTypeBalance {
		b, err := f.env.balances.GetOrCreate(context.Background(), f.employee.Employee.ID, y)
		require.NoError(t, err)
		return *b.Find(models.LeaveAnnual)
	}
	assert.Equal(t, perYear[year], yearEntry(year).Pending)
	assert.Equal(t, perYear[year+1], yearEntry(year+1).Pending)

	require.Equal(t, http.StatusOK, f.env.do(t, http.MethodPut, "/api/leaves/"+req.ID.Hex()+"/approve", f.manager.Token, nil).StatusCode)
	assert.Equal(t, perYear[year], yearEntry(year).Used)
	assert.Equal(t, perYear[year+1], yearEntry(year+1).Used)
	assert.Zero(t, yearEntry(year).Pending)
	assert.Zero(t, yearEntry(year+1).Pending)
}

func TestLeaveAcrossYearsChecksEachYearsBalance(t *testing.T) {
	f := newLeaveFixture(t)
	year := time.Now().Year() + 1
	ctx := context.Background()

	_, err := repository.UpdateBalanceWithRetry(ctx, f.env.balances, f.employee.Employee.ID, year+1, func(b *models.LeaveBalance) error {
		b.Find(models.LeaveCasual).Total = 0
		return nil
	})
	require.NoError(t, err)

	resp := f.env.do(t, http.MethodPost, "/api/leaves", f.employee.Token, models.LeaveRequestCreatePayload{
		LeaveType: models.LeaveCasual,
		StartDate: time.Date(year, time.December, 30, 0, 0, 0, 0, time.UTC).Format(dateLayout),
		EndDate:   time.Date(year+1, time.January, 8, 0, 0, 0, 0, time.UTC).Format(dateLayout),
		Reason:    "Year-end travel",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Contains(t, message(t, resp), "Insufficient casual leave balance for "+strconv.Itoa(year+1))

	b, err := f.env.balances.GetOrCreate(ctx, f.employee.Employee.ID, year)
	require.NoError(t, err)
	assert.Zero(t, b.Find(models.LeaveCasual).Pending)
}
