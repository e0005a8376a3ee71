package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/appointments"
	"github.com/Akhilan710/WhatsApp-Reminder-bot/internal/storage"
)

type nopPersister struct{}

func (nopPersister) Persist(context.Context, []appointments.Appointment) error { return nil }

func newAdmin(t *testing.T) (*Admin, *appointments.Store, *storage.StatusStore) {
	t.Helper()
	dir := t.TempDir()
	store := appointments.NewStore(nopPersister{}, nil)
	status, err := storage.NewStatusStore(filepath.Join(dir, "status.json"))
	require.NoError(t, err)
	seen, err := storage.NewSeenStore(filepath.Join(dir, "seen.json"))
	require.NoError(t, err)
	admin := NewAdmin(store, status, seen, nil, nil, time.UTC, nil)
	return admin, store, status
}

func workbookUpload(t *testing.T, rows [][]string) (*bytes.Buffer, string) {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheetName := f.GetSheetName(0)
	for i, row := range rows {
		r := row
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, f.SetSheetRow(sheetName, cell, &r))
	}
	var wb bytes.Buffer
	require.NoError(t, f.Write(&wb))

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "upload.xlsx")
	require.NoError(t, err)
	_, err = part.Write(wb.Bytes())
	require.NoError(t, err)
	require.NoError(t, mw.Close())
	return &body, mw.FormDataContentType()
}

func TestUploadAppointments(t *testing.T) {
	admin, store, _ := newAdmin(t)

	body, contentType := workbookUpload(t, [][]string{
		{"Name", "Phone", "Time"},
		{"Asha", "911234567890", "2024-03-04 14:00"},
		{"Ravi", "+91 98765 43210", "2024-03-05 11:00"},
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/appointments/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	admin.UploadAppointments(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, float64(2), resp["added"])
	assert.Equal(t, float64(2), resp["new_phones"])

	appt, ok := store.Get("911234567890")
	require.True(t, ok)
	assert.Equal(t, "Asha", appt.Name)
}

func TestUploadAppointmentsKeepsRescheduledTime(t *testing.T) {
	admin, store, _ := newAdmin(t)

	rescheduled := time.Date(2024, 3, 12, 15, 0, 0, 0, time.UTC)
	_, err := store.ImportMerge(context.Background(), []appointments.Appointment{
		{Name: "Asha", Phone: "911234567890", Time: rescheduled},
	}, nil)
	require.NoError(t, err)

	body, contentType := workbookUpload(t, [][]string{
		{"Asha", "911234567890", "2024-03-10 14:00"},
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/appointments/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	admin.UploadAppointments(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	appt, ok := store.Get("911234567890")
	require.True(t, ok)
	assert.True(t, appt.Time.Equal(rescheduled), "stale sheet must not revert a live reschedule")
}

func TestUploadAppointmentsRejectsMissingFile(t *testing.T) {
	admin, _, _ := newAdmin(t)
	req := httptest.NewRequest(http.MethodPost, "/admin/appointments/upload", bytes.NewReader(nil))
	rec := httptest.NewRecorder()

	admin.UploadAppointments(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUploadStatusReplacesList(t *testing.T) {
	admin, _, status := newAdmin(t)

	body, contentType := workbookUpload(t, [][]string{
		{"Name", "Phone", "Status"},
		{"Meera", "911111111111", "no"},
		{"Kiran", "912222222222", "yes"},
	})
	req := httptest.NewRequest(http.MethodPost, "/admin/status/upload", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	admin.UploadStatus(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, status.List(), 2)
	assert.Len(t, status.Uninterested(), 1)
}

func TestClearEndpoints(t *testing.T) {
	admin, store, status := newAdmin(t)
	_, err := store.ImportMerge(context.Background(), []appointments.Appointment{
		{Name: "A", Phone: "911", Time: time.Now()},
	}, nil)
	require.NoError(t, err)
	require.NoError(t, status.Replace([]storage.StatusRecord{{Name: "B", Phone: "912", Status: "no"}}))

	rec := httptest.NewRecorder()
	admin.ClearAppointments(rec, httptest.NewRequest(http.MethodPost, "/admin/appointments/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, store.List())

	rec = httptest.NewRecorder()
	admin.ClearStatus(rec, httptest.NewRequest(http.MethodPost, "/admin/status/clear", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, status.List())
}

func TestConnectionStatus(t *testing.T) {
	rec := httptest.NewRecorder()
	ConnectionStatus(func() bool { return true })(rec, httptest.NewRequest(http.MethodGet, "/admin/connection", nil))
	assert.JSONEq(t, `{"connected":true}`, rec.Body.String())

	rec = httptest.NewRecorder()
	ConnectionStatus(nil)(rec, httptest.NewRequest(http.MethodGet, "/admin/connection", nil))
	assert.JSONEq(t, `{"connected":false}`, rec.Body.String())
}

func TestWebhookVerify(t *testing.T) {
	wh := NewWebhook(nil, "secret-verify", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=secret-verify&hub.challenge=12345", nil)
	wh.Verify(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "12345", rec.Body.String())

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/webhook?hub.mode=subscribe&hub.verify_token=wrong&hub.challenge=12345", nil)
	wh.Verify(rec, req)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestWebhookReceiveAlwaysAcks(t *testing.T) {
	wh := NewWebhook(nil, "secret", nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/webhook", bytes.NewBufferString("{not json"))
	wh.Receive(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	// Status-only callback parses to zero events; engine never invoked.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/webhook",
		bytes.NewBufferString(`{"entry":[{"changes":[{"value":{"statuses":[{"id":"x","status":"read"}]}}]}]}`))
	wh.Receive(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
