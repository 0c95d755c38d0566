package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client is the single choke point for every call to the asset management
// API. All requests flow through the refresh transport, so an expired
// access token never surfaces to callers while a valid refresh token
// exists in the request's session.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures the Client.
type Option func(*clientSettings)

type clientSettings struct {
	timeout   time.Duration
	transport http.RoundTripper
}

// WithTimeout overrides the HTTP client timeout.
func WithTimeout(d time.Duration) Option {
	return func(s *clientSettings) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithTransport overrides the underlying transport (useful for tests).
func WithTransport(rt http.RoundTripper) Option {
	return func(s *clientSettings) {
		if rt != nil {
			s.transport = rt
		}
	}
}

// New creates a client for the API rooted at baseURL (including the /api
// prefix, e.g. "http://localhost:8080/api").
func New(baseURL string, opts ...Option) *Client {
	settings := clientSettings{timeout: 30 * time.Second}
	for _, opt := range opts {
		opt(&settings)
	}
	baseURL = strings.TrimRight(baseURL, "/")
	return &Client{
		baseURL: baseURL,
		http: &http.Client{
			Timeout:   settings.timeout,
			Transport: newRefreshTransport(settings.transport, baseURL+"/auth/refresh"),
		},
	}
}

// --- Auth ---

func (c *Client) Login(ctx context.Context, req LoginRequest) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &resp)
	return resp, err
}

func (c *Client) Register(ctx context.Context, req RegisterRequest) (AuthResponse, error) {
	var resp AuthResponse
	err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp)
	return resp, err
}

// --- Users ---

func (c *Client) CurrentUser(ctx context.Context) (User, error) {
	var user User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, nil, &user)
	return user, err
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	err := c.do(ctx, http.MethodGet, "/users", nil, nil, &users)
	return users, err
}

// --- Bases ---

func (c *Client) Bases(ctx context.Context) ([]Base, error) {
	var bases []Base
	err := c.do(ctx, http.MethodGet, "/bases", nil, nil, &bases)
	return bases, err
}

func (c *Client) Base(ctx context.Context, id int64) (Base, error) {
	var base Base
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/bases/%d", id), nil, nil, &base)
	return base, err
}

func (c *Client) CreateBase(ctx context.Context, in BaseInput) (Base, error) {
	var base Base
	err := c.do(ctx, http.MethodPost, "/bases", nil, in, &base)
	return base, err
}

func (c *Client) UpdateBase(ctx context.Context, id int64, in BaseInput) (Base, error) {
	var base Base
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/bases/%d", id), nil, in, &base)
	return base, err
}

func (c *Client) DeleteBase(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/bases/%d", id), nil, nil, nil)
}

// --- Asset types ---

func (c *Client) AssetTypes(ctx context.Context) ([]AssetType, error) {
	var types []AssetType
	err := c.do(ctx, http.MethodGet, "/asset-types", nil, nil, &types)
	return types, err
}

func (c *Client) AssetType(ctx context.Context, id int64) (AssetType, error) {
	var at AssetType
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/asset-types/%d", id), nil, nil, &at)
	return at, err
}

func (c *Client) CreateAssetType(ctx context.Context, in AssetTypeInput) (AssetType, error) {
	var at AssetType
	err := c.do(ctx, http.MethodPost, "/asset-types", nil, in, &at)
	return at, err
}

func (c *Client) UpdateAssetType(ctx context.Context, id int64, in AssetTypeInput) (AssetType, error) {
	var at AssetType
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/asset-types/%d", id), nil, in, &at)
	return at, err
}

func (c *Client) DeleteAssetType(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/asset-types/%d", id), nil, nil, nil)
}

// --- Assets ---

func (c *Client) Assets(ctx context.Context, filter Filter) ([]Asset, error) {
	var assets []Asset
	err := c.do(ctx, http.MethodGet, "/assets", filter.Values(), nil, &assets)
	return assets, err
}

func (c *Client) Asset(ctx context.Context, id int64) (Asset, error) {
	var asset Asset
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/assets/%d", id), nil, nil, &asset)
	return asset, err
}

func (c *Client) CreateAsset(ctx context.Context, in AssetInput) (Asset, error) {
	var asset Asset
	err := c.do(ctx, http.MethodPost, "/assets", nil, in, &asset)
	return asset, err
}

func (c *Client) UpdateAsset(ctx context.Context, id int64, in AssetInput) (Asset, error) {
	var asset Asset
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/assets/%d", id), nil, in, &asset)
	return asset, err
}

func (c *Client) DeleteAsset(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/assets/%d", id), nil, nil, nil)
}

// --- Purchases ---

func (c *Client) Purchases(ctx context.Context, filter Filter) ([]Purchase, error) {
	var purchases []Purchase
	err := c.do(ctx, http.MethodGet, "/purchases", filter.Values(), nil, &purchases)
	return purchases, err
}

func (c *Client) Purchase(ctx context.Context, id int64) (Purchase, error) {
	var purchase Purchase
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/purchases/%d", id), nil, nil, &purchase)
	return purchase, err
}

func (c *Client) CreatePurchase(ctx context.Context, in PurchaseInput) (Purchase, error) {
	var purchase Purchase
	err := c.do(ctx, http.MethodPost, "/purchases", nil, in, &purchase)
	return purchase, err
}

func (c *Client) UpdatePurchase(ctx context.Context, id int64, in PurchaseInput) (Purchase, error) {
	var purchase Purchase
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/purchases/%d", id), nil, in, &purchase)
	return purchase, err
}

func (c *Client) DeletePurchase(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/purchases/%d", id), nil, nil, nil)
}

// --- Transfers ---

func (c *Client) Transfers(ctx context.Context, filter Filter) ([]Transfer, error) {
	var transfers []Transfer
	err := c.do(ctx, http.MethodGet, "/transfers", filter.Values(), nil, &transfers)
	return transfers, err
}

func (c *Client) Transfer(ctx context.Context, id int64) (Transfer, error) {
	var transfer Transfer
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/transfers/%d", id), nil, nil, &transfer)
	return transfer, err
}

func (c *Client) CreateTransfer(ctx context.Context, in TransferInput) (Transfer, error) {
	var transfer Transfer
	err := c.do(ctx, http.MethodPost, "/transfers", nil, in, &transfer)
	return transfer, err
}

func (c *Client) UpdateTransfer(ctx context.Context, id int64, in TransferInput) (Transfer, error) {
	var transfer Transfer
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/transfers/%d", id), nil, in, &transfer)
	return transfer, err
}

func (c *Client) DeleteTransfer(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/transfers/%d", id), nil, nil, nil)
}

func (c *Client) ApproveTransfer(ctx context.Context, id int64) (Transfer, error) {
	var transfer Transfer
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/transfers/%d/approve", id), nil, nil, &transfer)
	return transfer, err
}

func (c *Client) RejectTransfer(ctx context.Context, id int64, reason string) (Transfer, error) {
	var transfer Transfer
	body := map[string]string{"reason": reason}
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/transfers/%d/reject", id), nil, body, &transfer)
	return transfer, err
}

// --- Assignments ---

func (c *Client) Assignments(ctx context.Context, filter Filter) ([]Assignment, error) {
	var assignments []Assignment
	err := c.do(ctx, http.MethodGet, "/assignments", filter.Values(), nil, &assignments)
	return assignments, err
}

func (c *Client) Assignment(ctx context.Context, id int64) (Assignment, error) {
	var assignment Assignment
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/assignments/%d", id), nil, nil, &assignment)
	return assignment, err
}

func (c *Client) CreateAssignment(ctx context.Context, in AssignmentInput) (Assignment, error) {
	var assignment Assignment
	err := c.do(ctx, http.MethodPost, "/assignments", nil, in, &assignment)
	return assignment, err
}

func (c *Client) UpdateAssignment(ctx context.Context, id int64, in AssignmentInput) (Assignment, error) {
	var assignment Assignment
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/assignments/%d", id), nil, in, &assignment)
	return assignment, err
}

func (c *Client) DeleteAssignment(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/assignments/%d", id), nil, nil, nil)
}

func (c *Client) ReturnAssignment(ctx context.Context, id int64) (Assignment, error) {
	var assignment Assignment
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/assignments/%d/return", id), nil, nil, &assignment)
	return assignment, err
}

// --- Expenditures ---

func (c *Client) Expenditures(ctx context.Context, filter Filter) ([]Expenditure, error) {
	var expenditures []Expenditure
	err := c.do(ctx, http.MethodGet, "/expenditures", filter.Values(), nil, &expenditures)
	return expenditures, err
}

func (c *Client) Expenditure(ctx context.Context, id int64) (Expenditure, error) {
	var expenditure Expenditure
	err := c.do(ctx, http.MethodGet, fmt.Sprintf("/expenditures/%d", id), nil, nil, &expenditure)
	return expenditure, err
}

func (c *Client) CreateExpenditure(ctx context.Context, in ExpenditureInput) (Expenditure, error) {
	var expenditure Expenditure
	err := c.do(ctx, http.MethodPost, "/expenditures", nil, in, &expenditure)
	return expenditure, err
}

func (c *Client) UpdateExpenditure(ctx context.Context, id int64, in ExpenditureInput) (Expenditure, error) {
	var expenditure Expenditure
	err := c.do(ctx, http.MethodPut, fmt.Sprintf("/expenditures/%d", id), nil, in, &expenditure)
	return expenditure, err
}

func (c *Client) DeleteExpenditure(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/expenditures/%d", id), nil, nil, nil)
}

// --- Audit logs & dashboard ---

func (c *Client) AuditLogs(ctx context.Context, filter Filter) ([]AuditLog, error) {
	var logs []AuditLog
	err := c.do(ctx, http.MethodGet, "/audit-logs", filter.Values(), nil, &logs)
	return logs, err
}

func (c *Client) DashboardMetrics(ctx context.Context, filter Filter) (DashboardMetrics, error) {
	var metrics DashboardMetrics
	err := c.do(ctx, http.MethodGet, "/dashboard/metrics", filter.Values(), nil, &metrics)
	return metrics, err
}

// --- plumbing ---

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer closeBody(resp)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{Code: resp.StatusCode, Message: errorMessage(resp.Body)}
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}

// errorMessage extracts the server-provided message from an error body.
// The backend answers either plain text or a JSON object with a message
// field; anything else falls back to the raw body.
func errorMessage(body io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(body, maxErrorBody))
	if err != nil {
		return ""
	}
	text := strings.TrimSpace(string(raw))
	if !strings.HasPrefix(text, "{") {
		return text
	}
	var obj struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if json.Unmarshal(raw, &obj) == nil {
		if obj.Message != "" {
			return obj.Message
		}
		if obj.Error != "" {
			return obj.Error
		}
	}
	return text
}
