package backend_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/milops/asset-console/backend"
	errs "github.com/milops/asset-console/internal/errors"
)

// recorder captures the last request the client sent so tests can
// assert on paths, methods, queries and bodies.
type recorder struct {
	method string
	path   string
	query  string
	body   []byte
	accept string
	auth   string

	status  int
	payload string
}

func newRecorder(payload string) *recorder {
	return &recorder{status: http.StatusOK, payload: payload}
}

func (rec *recorder) serve(t *testing.T) (*backend.Client, context.Context) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		rec.method = r.Method
		rec.path = r.URL.Path
		rec.query = r.URL.RawQuery
		rec.accept = r.Header.Get("Accept")
		rec.auth = r.Header.Get("Authorization")
		rec.body, _ = io.ReadAll(r.Body)

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(rec.status)
		_, _ = w.Write([]byte(rec.payload))
	}))
	t.Cleanup(server.Close)

	store := newMemStore("access-1", "refresh-1")
	ctx := backend.ContextWithTokens(context.Background(), store)
	return backend.New(server.URL + "/api"), ctx
}

func TestListEndpointsEncodeFilters(t *testing.T) {
	rec := newRecorder(`[]`)
	client, ctx := rec.serve(t)

	filter := backend.Filter{
		DateFrom:    "2025-01-01",
		DateTo:      "2025-01-31",
		BaseID:      2,
		AssetTypeID: 5,
		Status:      "PENDING",
	}
	_, err := client.Transfers(ctx, filter)
	require.NoError(t, err)

	require.Equal(t, http.MethodGet, rec.method)
	require.Equal(t, "/api/transfers", rec.path)
	require.Equal(t, "assetTypeId=5&baseId=2&dateFrom=2025-01-01&dateTo=2025-01-31&status=PENDING", rec.query)
}

func TestEmptyFilterSendsNoQuery(t *testing.T) {
	rec := newRecorder(`[]`)
	client, ctx := rec.serve(t)

	_, err := client.Purchases(ctx, backend.Filter{})
	require.NoError(t, err)
	require.Empty(t, rec.query)
}

func TestRequestsCarryBearerAndAccept(t *testing.T) {
	rec := newRecorder(`{"id":1,"username":"cmd1","role":"ADMIN"}`)
	client, ctx := rec.serve(t)

	_, err := client.CurrentUser(ctx)
	require.NoError(t, err)

	require.Equal(t, "Bearer access-1", rec.auth)
	require.Equal(t, "application/json", rec.accept)
	require.Equal(t, "/api/users/me", rec.path)
}

func TestTransferActionsHitDedicatedPaths(t *testing.T) {
	rec := newRecorder(`{"id":9,"status":"APPROVED"}`)
	client, ctx := rec.serve(t)

	transfer, err := client.ApproveTransfer(ctx, 9)
	require.NoError(t, err)
	require.Equal(t, backend.TransferApproved, transfer.Status)
	require.Equal(t, http.MethodPost, rec.method)
	require.Equal(t, "/api/transfers/9/approve", rec.path)

	rec.payload = `{"id":9,"status":"REJECTED"}`
	_, err = client.RejectTransfer(ctx, 9, "wrong destination")
	require.NoError(t, err)
	require.Equal(t, "/api/transfers/9/reject", rec.path)

	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.body, &body))
	require.Equal(t, "wrong destination", body["reason"])
}

func TestReturnAssignmentUsesPut(t *testing.T) {
	rec := newRecorder(`{"id":4,"status":"RETURNED"}`)
	client, ctx := rec.serve(t)

	assignment, err := client.ReturnAssignment(ctx, 4)
	require.NoError(t, err)
	require.Equal(t, backend.AssignmentReturned, assignment.Status)
	require.Equal(t, http.MethodPut, rec.method)
	require.Equal(t, "/api/assignments/4/return", rec.path)
}

func TestDeleteSendsNoBody(t *testing.T) {
	rec := newRecorder(``)
	rec.status = http.StatusNoContent
	client, ctx := rec.serve(t)

	require.NoError(t, client.DeletePurchase(ctx, 3))
	require.Equal(t, http.MethodDelete, rec.method)
	require.Equal(t, "/api/purchases/3", rec.path)
	require.Empty(t, rec.body)
}

func TestCreatePayloadUsesFlatIdentifiers(t *testing.T) {
	rec := newRecorder(`{"id":11}`)
	client, ctx := rec.serve(t)

	_, err := client.CreatePurchase(ctx, backend.PurchaseInput{
		AssetTypeID:  5,
		BaseID:       2,
		Quantity:     10,
		UnitPrice:    50,
		PurchaseDate: "2025-02-01",
		Supplier:     "Acme Ordnance",
	})
	require.NoError(t, err)

	var sent map[string]any
	require.NoError(t, json.Unmarshal(rec.body, &sent))
	require.EqualValues(t, 5, sent["assetTypeId"])
	require.EqualValues(t, 2, sent["baseId"])
	require.NotContains(t, sent, "assetType", "create payloads carry ids, not nested objects")
}

func TestStatusErrorCarriesPlainTextMessage(t *testing.T) {
	rec := newRecorder(`Insufficient assets available`)
	rec.status = http.StatusBadRequest
	client, ctx := rec.serve(t)

	_, err := client.CreateTransfer(ctx, backend.TransferInput{})
	require.Error(t, err)

	var statusErr *backend.StatusError
	require.True(t, errs.As(err, &statusErr))
	require.Equal(t, http.StatusBadRequest, statusErr.Code)
	require.Equal(t, "Insufficient assets available", statusErr.Message)
}

func TestStatusErrorParsesJSONMessage(t *testing.T) {
	rec := newRecorder(`{"message":"base not found"}`)
	rec.status = http.StatusNotFound
	client, ctx := rec.serve(t)

	_, err := client.Base(ctx, 99)
	require.Error(t, err)
	require.True(t, errs.Is(err, errs.ErrNotFound))

	var statusErr *backend.StatusError
	require.True(t, errs.As(err, &statusErr))
	require.Equal(t, "base not found", statusErr.Message)
}
