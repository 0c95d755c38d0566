package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/milops/asset-console/backend"
)

// pathID extracts the numeric {id} path segment.
func pathID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", r.PathValue("id"))
	}
	return id, nil
}

// filterFromQuery maps the list-page query parameters onto the backend
// filter. Unparseable values are treated as unset rather than failing
// the page.
func filterFromQuery(r *http.Request) backend.Filter {
	q := r.URL.Query()
	return backend.Filter{
		DateFrom:    q.Get("dateFrom"),
		DateTo:      q.Get("dateTo"),
		BaseID:      queryInt64(q.Get("baseId")),
		AssetTypeID: queryInt64(q.Get("assetTypeId")),
		Status:      q.Get("status"),
		UserID:      queryInt64(q.Get("userId")),
	}
}

func queryInt64(s string) int64 {
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0
	}
	return v
}

func formInt64(r *http.Request, field string) (int64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", field)
	}
	return v, nil
}

func formInt(r *http.Request, field string) (int, error) {
	v, err := formInt64(r, field)
	return int(v), err
}

func formFloat(r *http.Request, field string) (float64, error) {
	raw := strings.TrimSpace(r.FormValue(field))
	if raw == "" {
		return 0, fmt.Errorf("%s is required", field)
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return 0, fmt.Errorf("%s must be a positive number", field)
	}
	return v, nil
}

func formRequired(r *http.Request, field string) (string, error) {
	v := strings.TrimSpace(r.FormValue(field))
	if v == "" {
		return "", fmt.Errorf("%s is required", field)
	}
	return v, nil
}

// PurchaseForm carries the parsed purchase form fields.
type PurchaseForm struct {
	backend.PurchaseInput
}

// Total is the quantity times unit price shown on the form preview.
func (f PurchaseForm) Total() float64 {
	return float64(f.Quantity) * f.UnitPrice
}

func parsePurchaseForm(r *http.Request) (PurchaseForm, error) {
	var form PurchaseForm
	var err error
	if form.AssetTypeID, err = formInt64(r, "assetTypeId"); err != nil {
		return form, err
	}
	if form.BaseID, err = formInt64(r, "baseId"); err != nil {
		return form, err
	}
	if form.Quantity, err = formInt(r, "quantity"); err != nil {
		return form, err
	}
	if form.UnitPrice, err = formFloat(r, "unitPrice"); err != nil {
		return form, err
	}
	if form.PurchaseDate, err = formRequired(r, "purchaseDate"); err != nil {
		return form, err
	}
	if form.Supplier, err = formRequired(r, "supplier"); err != nil {
		return form, err
	}
	form.Description = strings.TrimSpace(r.FormValue("description"))
	return form, nil
}

func parseTransferForm(r *http.Request) (backend.TransferInput, error) {
	var in backend.TransferInput
	var err error
	if in.AssetID, err = formInt64(r, "assetId"); err != nil {
		return in, err
	}
	if in.FromBaseID, err = formInt64(r, "fromBaseId"); err != nil {
		return in, err
	}
	if in.ToBaseID, err = formInt64(r, "toBaseId"); err != nil {
		return in, err
	}
	if in.FromBaseID == in.ToBaseID {
		return in, fmt.Errorf("source and destination bases must differ")
	}
	if in.TransferDate, err = formRequired(r, "transferDate"); err != nil {
		return in, err
	}
	if in.Reason, err = formRequired(r, "reason"); err != nil {
		return in, err
	}
	return in, nil
}

func parseAssignmentForm(r *http.Request) (backend.AssignmentInput, error) {
	var in backend.AssignmentInput
	var err error
	if in.AssetID, err = formInt64(r, "assetId"); err != nil {
		return in, err
	}
	if in.AssignedToID, err = formInt64(r, "assignedToId"); err != nil {
		return in, err
	}
	if in.AssignmentDate, err = formRequired(r, "assignmentDate"); err != nil {
		return in, err
	}
	in.Notes = strings.TrimSpace(r.FormValue("notes"))
	return in, nil
}

func parseExpenditureForm(r *http.Request) (backend.ExpenditureInput, error) {
	var in backend.ExpenditureInput
	var err error
	if in.AssetID, err = formInt64(r, "assetId"); err != nil {
		return in, err
	}
	if in.BaseID, err = formInt64(r, "baseId"); err != nil {
		return in, err
	}
	if in.Quantity, err = formInt(r, "quantity"); err != nil {
		return in, err
	}
	if in.Reason, err = formRequired(r, "reason"); err != nil {
		return in, err
	}
	if in.ExpenditureDate, err = formRequired(r, "expenditureDate"); err != nil {
		return in, err
	}
	return in, nil
}

// parseRegisterForm validates the sign-up form locally before any
// backend call is made. Both password fields must match.
func parseRegisterForm(r *http.Request) (backend.RegisterRequest, error) {
	var req backend.RegisterRequest
	var err error
	if req.Username, err = formRequired(r, "username"); err != nil {
		return req, err
	}
	if req.Password, err = formRequired(r, "password"); err != nil {
		return req, err
	}
	confirm := r.FormValue("confirmPassword")
	if req.Password != confirm {
		return req, fmt.Errorf("passwords do not match")
	}

	role := backend.Role(strings.TrimSpace(r.FormValue("role")))
	valid := false
	for _, known := range backend.Roles {
		if role == known {
			valid = true
			break
		}
	}
	if !valid {
		return req, fmt.Errorf("role is required")
	}
	req.Role = role

	if req.BaseID, err = formInt64(r, "baseId"); err != nil {
		return req, err
	}
	return req, nil
}
