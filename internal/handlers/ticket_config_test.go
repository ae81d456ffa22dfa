package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"event-ticketing-console/internal/datetime"
	"event-ticketing-console/internal/middleware"
	"event-ticketing-console/internal/models"
	"event-ticketing-console/internal/reconcile"
	"event-ticketing-console/internal/services"

	"github.com/gorilla/sessions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockTicketConfigService implements TicketConfigServiceInterface for testing
type MockTicketConfigService struct {
	mock.Mock
}

func (m *MockTicketConfigService) Load(ctx context.Context, eventID int, kind models.TicketKind) ([]models.TicketRecord, error) {
	args := m.Called(ctx, eventID, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.TicketRecord), args.Error(1)
}

func (m *MockTicketConfigService) Sync(ctx context.Context, eventID int, kind models.TicketKind, current []models.TicketRecord, dirty reconcile.DirtySet) (*services.SyncResult, error) {
	args := m.Called(ctx, eventID, kind, current, dirty)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.SyncResult), args.Error(1)
}

func newTicketConfigHandler(service *MockTicketConfigService) (*TicketConfigHandler, *middleware.WorkingSetStore) {
	store := middleware.NewWorkingSetStore(sessions.NewCookieStore([]byte("test-session-secret-32-bytes-long")))
	return NewTicketConfigHandler(service, store, &recordingAuditor{}, newValidator(), quietLogger()), store
}

func TestTicketConfigHandler_ListTickets(t *testing.T) {
	service := &MockTicketConfigService{}
	records := []models.TicketRecord{{ID: "a1", EventID: 7, Kind: models.KindTicket, Name: "GA"}}
	service.On("Load", mock.Anything, 7, models.KindTicket).Return(records, nil)

	handler, _ := newTicketConfigHandler(service)

	req := withURLParams(httptest.NewRequest("GET", "/api/events/7/tickets", nil), map[string]string{"eventId": "7"})
	rr := httptest.NewRecorder()
	handler.ListTickets(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	var body struct {
		Records []models.TicketRecord `json:"records"`
	}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body))
	assert.Equal(t, "GA", body.Records[0].Name)
}

func TestTicketConfigHandler_InvalidEventID(t *testing.T) {
	handler, _ := newTicketConfigHandler(&MockTicketConfigService{})

	for _, id := range []string{"abc", "0", "-3"} {
		req := withURLParams(httptest.NewRequest("GET", "/", nil), map[string]string{"eventId": id})
		rr := httptest.NewRecorder()
		handler.ListGroupTickets(rr, req)
		assert.Equal(t, http.StatusBadRequest, rr.Code, id)
	}
}

func TestTicketConfigHandler_LoadErrors(t *testing.T) {
	service := &MockTicketConfigService{}
	service.On("Load", mock.Anything, 7, models.KindTicket).Return(nil, errors.New("connection refused"))

	handler, _ := newTicketConfigHandler(service)

	req := withURLParams(httptest.NewRequest("GET", "/", nil), map[string]string{"eventId": "7"})
	rr := httptest.NewRecorder()
	handler.ListTickets(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.JSONEq(t, `{"error":"internal server error"}`, rr.Body.String())
}

func TestTicketConfigHandler_SyncTickets(t *testing.T) {
	service := &MockTicketConfigService{}
	result := &services.SyncResult{
		Result: reconcile.Result{
			Succeeded:       []reconcile.Outcome{{Op: reconcile.Operation{Kind: reconcile.OpCreate, ID: "tmp-1"}, ServerID: "srv-1"}},
			Failed:          []reconcile.Failure{},
			RefreshRequired: true,
		},
		Rejected: []services.RejectedRecord{},
	}
	service.On("Sync", mock.Anything, 7, models.KindTicket, mock.MatchedBy(func(current []models.TicketRecord) bool {
		return len(current) == 1 && current[0].Name == "VIP" && current[0].SalesStart.Parts != nil
	}), reconcile.DirtySet(nil)).Return(result, nil)

	handler, _ := newTicketConfigHandler(service)

	body := `{"current":[{"id":"tmp-1","name":"VIP","price":500000,"quantity":50,"max_order_quantity":2,
		"sales_start":{"parts":{"date":"2025-03-01","time":"09:00","offset":"+07:00"}},
		"sales_end":{"instant":"2025-03-31T00:00:00Z"}}]}`
	req := withURLParams(httptest.NewRequest("PUT", "/api/events/7/tickets", strings.NewReader(body)), map[string]string{"eventId": "7"})
	rr := httptest.NewRecorder()
	handler.SyncTickets(rr, req)

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"server_id":"srv-1"`)
	assert.Contains(t, rr.Body.String(), `"refresh_required":true`)
	service.AssertExpectations(t)
}

func TestTicketConfigHandler_SyncPartialFailureIsMultiStatus(t *testing.T) {
	service := &MockTicketConfigService{}
	result := &services.SyncResult{
		Result: reconcile.Result{
			Failed: []reconcile.Failure{{Op: reconcile.Operation{Kind: reconcile.OpDelete, ID: "a1"}, Message: "remote operation failed"}},
		},
	}
	service.On("Sync", mock.Anything, 7, models.KindTicket, mock.Anything, mock.Anything).Return(result, nil)

	handler, _ := newTicketConfigHandler(service)

	req := withURLParams(httptest.NewRequest("PUT", "/", strings.NewReader(`{"current":[]}`)), map[string]string{"eventId": "7"})
	rr := httptest.NewRecorder()
	handler.SyncTickets(rr, req)

	assert.Equal(t, http.StatusMultiStatus, rr.Code)
}

func TestTicketConfigHandler_SyncRejectsMalformedBody(t *testing.T) {
	service := &MockTicketConfigService{}
	handler, _ := newTicketConfigHandler(service)

	req := withURLParams(httptest.NewRequest("PUT", "/", strings.NewReader(`{"current":[{"id":"tmp-1","price":"free"}]}`)), map[string]string{"eventId": "7"})
	rr := httptest.NewRecorder()
	handler.SyncTickets(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, 1, strings.Count(rr.Body.String(), "invalid input"))
	service.AssertNotCalled(t, "Sync", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestTicketConfigHandler_SyncMalformedWindowTimeIsMultiStatus(t *testing.T) {
	service := &MockTicketConfigService{}
	result := &services.SyncResult{
		Result: reconcile.Result{
			Succeeded:       []reconcile.Outcome{{Op: reconcile.Operation{Kind: reconcile.OpCreate, ID: "tmp-1"}, ServerID: "srv-1"}},
			RefreshRequired: true,
		},
		Rejected: []services.RejectedRecord{{ID: "tmp-2", Name: "Late", Error: "sales end: invalid input: time 24:00"}},
	}
	service.On("Sync", mock.Anything, 7, models.KindTicket, mock.MatchedBy(func(current []models.TicketRecord) bool {
		return len(current) == 2 && current[1].SalesEnd.Parts != nil && current[1].SalesEnd.Parts.Time == "24:00"
	}), reconcile.DirtySet(nil)).Return(result, nil)

	handler, _ := newTicketConfigHandler(service)

	body := `{"current":[
		{"id":"tmp-1","name":"GA","price":100000,"quantity":50,"max_order_quantity":2,
			"sales_start":{"instant":"2025-03-01T02:00:00Z"},"sales_end":{"instant":"2025-03-31T00:00:00Z"}},
		{"id":"tmp-2","name":"Late","price":100000,"quantity":50,"max_order_quantity":2,
			"sales_start":{"instant":"2025-03-01T02:00:00Z"},
			"sales_end":{"parts":{"date":"2025-03-01","time":"24:00","offset":"+07:00"}}}]}`
	req := withURLParams(httptest.NewRequest("PUT", "/api/events/7/tickets", strings.NewReader(body)), map[string]string{"eventId": "7"})
	rr := httptest.NewRecorder()
	handler.SyncTickets(rr, req)

	assert.Equal(t, http.StatusMultiStatus, rr.Code)

	var got services.SyncResult
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	require.Len(t, got.Succeeded, 1)
	require.Len(t, got.Rejected, 1)
	assert.Equal(t, "tmp-2", got.Rejected[0].ID)
	service.AssertExpectations(t)
}

func TestTicketConfigHandler_GroupTicketEditsFeedSync(t *testing.T) {
	service := &MockTicketConfigService{}
	handler, store := newTicketConfigHandler(service)

	// Commit edits to g1 and g2, and to a bundle that was never saved
	jar := cookieJar{}
	for _, id := range []string{"g1", "tmp-x-1", "g2"} {
		req := withURLParams(httptest.NewRequest("POST", "/", nil), map[string]string{"eventId": "7", "ticketId": id})
		rr := httptest.NewRecorder()
		handler.CommitGroupTicketEdit(rr, jar.attach(req))
		assert.Equal(t, http.StatusNoContent, rr.Code)
		jar.keep(rr)
	}

	result := &services.SyncResult{
		Result: reconcile.Result{
			Succeeded: []reconcile.Outcome{{Op: reconcile.Operation{Kind: reconcile.OpUpdate, ID: "g1"}}},
			Failed:    []reconcile.Failure{{Op: reconcile.Operation{Kind: reconcile.OpUpdate, ID: "g2"}, Err: models.ErrRemoteOperationFailed}},
		},
	}
	service.On("Sync", mock.Anything, 7, models.KindGroupTicket, mock.Anything, reconcile.NewDirtySet("g1", "g2")).Return(result, nil)

	req := withURLParams(httptest.NewRequest("PUT", "/", strings.NewReader(`{"current":[]}`)), map[string]string{"eventId": "7"})
	rr := httptest.NewRecorder()
	handler.SyncGroupTickets(rr, jar.attach(req))

	assert.Equal(t, http.StatusMultiStatus, rr.Code)
	service.AssertExpectations(t)

	// The failed update stays dirty for the next attempt
	jar.keep(rr)
	dirty, err := store.Dirty(jar.attach(httptest.NewRequest("GET", "/", nil)), 7)
	require.NoError(t, err)
	assert.Equal(t, []string{"g2"}, dirty.IDs())
}

func TestStatusFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{models.ErrInvalidInput, http.StatusBadRequest},
		{models.ErrTicketNotFound, http.StatusNotFound},
		{models.ErrEventNotFound, http.StatusNotFound},
		{&models.IncompleteRecipientsError{Indices: []int{1}}, http.StatusUnprocessableEntity},
		{models.ErrInsufficientStock, http.StatusConflict},
		{models.ErrTicketsSold, http.StatusConflict},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, statusFor(tt.err), tt.err.Error())
	}
}

func TestDecodeJSON_WrapsInvalidInputOnce(t *testing.T) {
	var dst struct {
		At datetime.Clock `json:"at"`
	}

	req := httptest.NewRequest("POST", "/", strings.NewReader(`{"at":"24:00"}`))
	err := decodeJSON(req, newValidator(), &dst)
	require.Error(t, err)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, "invalid request body: invalid input: time 24:00", err.Error())

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"at":`))
	err = decodeJSON(req, newValidator(), &dst)
	assert.ErrorIs(t, err, models.ErrInvalidInput)
	assert.Equal(t, 1, strings.Count(err.Error(), "invalid input"))
}
