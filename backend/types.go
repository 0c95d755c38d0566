package backend

import (
	"net/url"
	"strconv"
)

// Role is the fixed set of user roles the backend recognises.
type Role string

const (
	RoleAdmin            Role = "ADMIN"
	RoleBaseCommander    Role = "BASE_COMMANDER"
	RoleLogisticsOfficer Role = "LOGISTICS_OFFICER"
)

// Roles lists every selectable role, in display order.
var Roles = []Role{RoleAdmin, RoleBaseCommander, RoleLogisticsOfficer}

// AssetStatus is the lifecycle state of a single asset.
type AssetStatus string

const (
	AssetAvailable   AssetStatus = "AVAILABLE"
	AssetAssigned    AssetStatus = "ASSIGNED"
	AssetMaintenance AssetStatus = "MAINTENANCE"
	AssetRetired     AssetStatus = "RETIRED"
)

// TransferStatus follows the transfer approval workflow.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferApproved  TransferStatus = "APPROVED"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferRejected  TransferStatus = "REJECTED"
)

// TransferStatuses lists every transfer status, in display order.
var TransferStatuses = []TransferStatus{TransferPending, TransferApproved, TransferCompleted, TransferRejected}

// AssignmentStatus tracks whether an asset is still with its holder.
type AssignmentStatus string

const (
	AssignmentActive   AssignmentStatus = "ACTIVE"
	AssignmentReturned AssignmentStatus = "RETURNED"
	AssignmentExpired  AssignmentStatus = "EXPIRED"
)

// AssignmentStatuses lists every assignment status, in display order.
var AssignmentStatuses = []AssignmentStatus{AssignmentActive, AssignmentReturned, AssignmentExpired}

// Date and timestamp fields are kept as the backend's wire strings; the
// console renders them and never does date arithmetic on them.

type User struct {
	ID        int64  `json:"id"`
	Username  string `json:"username"`
	Role      Role   `json:"role"`
	Base      *Base  `json:"base,omitempty"`
	CreatedAt string `json:"createdAt,omitempty"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// CanApproveTransfers reports whether transfer approve/reject actions are
// shown for this user. Visibility only; the backend re-checks authorization.
func (u User) CanApproveTransfers() bool {
	return u.Role == RoleAdmin || u.Role == RoleBaseCommander
}

type Base struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type AssetType struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Category    string `json:"category"`
	CreatedAt   string `json:"createdAt,omitempty"`
	UpdatedAt   string `json:"updatedAt,omitempty"`
}

type Asset struct {
	ID            int64       `json:"id"`
	SerialNumber  string      `json:"serialNumber"`
	Description   string      `json:"description,omitempty"`
	AssetType     AssetType   `json:"assetType"`
	Base          Base        `json:"base"`
	Status        AssetStatus `json:"status"`
	PurchaseDate  string      `json:"purchaseDate,omitempty"`
	PurchasePrice float64     `json:"purchasePrice,omitempty"`
	CurrentValue  float64     `json:"currentValue,omitempty"`
	CreatedAt     string      `json:"createdAt,omitempty"`
	UpdatedAt     string      `json:"updatedAt,omitempty"`
}

type Purchase struct {
	ID           int64     `json:"id"`
	AssetType    AssetType `json:"assetType"`
	Base         Base      `json:"base"`
	Quantity     int       `json:"quantity"`
	UnitPrice    float64   `json:"unitPrice"`
	TotalAmount  float64   `json:"totalAmount"`
	PurchaseDate string    `json:"purchaseDate"`
	Supplier     string    `json:"supplier"`
	Description  string    `json:"description,omitempty"`
	CreatedAt    string    `json:"createdAt,omitempty"`
	UpdatedAt    string    `json:"updatedAt,omitempty"`
}

type Transfer struct {
	ID           int64          `json:"id"`
	Asset        Asset          `json:"asset"`
	FromBase     Base           `json:"fromBase"`
	ToBase       Base           `json:"toBase"`
	TransferDate string         `json:"transferDate"`
	Reason       string         `json:"reason"`
	Status       TransferStatus `json:"status"`
	ApprovedBy   *User          `json:"approvedBy,omitempty"`
	CreatedAt    string         `json:"createdAt,omitempty"`
	UpdatedAt    string         `json:"updatedAt,omitempty"`
}

type Assignment struct {
	ID             int64            `json:"id"`
	Asset          Asset            `json:"asset"`
	AssignedTo     User             `json:"assignedTo"`
	AssignedBy     User             `json:"assignedBy"`
	AssignmentDate string           `json:"assignmentDate"`
	ReturnDate     string           `json:"returnDate,omitempty"`
	Status         AssignmentStatus `json:"status"`
	Notes          string           `json:"notes,omitempty"`
	CreatedAt      string           `json:"createdAt,omitempty"`
	UpdatedAt      string           `json:"updatedAt,omitempty"`
}

type Expenditure struct {
	ID              int64   `json:"id"`
	Asset           Asset   `json:"asset"`
	Base            Base    `json:"base"`
	Quantity        int     `json:"quantity"`
	Reason          string  `json:"reason"`
	ExpenditureDate string  `json:"expenditureDate"`
	ApprovedBy      *User   `json:"approvedBy,omitempty"`
	CreatedAt       string  `json:"createdAt,omitempty"`
	UpdatedAt       string  `json:"updatedAt,omitempty"`
}

type AuditLog struct {
	ID        int64  `json:"id"`
	User      User   `json:"user"`
	Action    string `json:"action"`
	Entity    string `json:"entity"`
	EntityID  int64  `json:"entityId"`
	Details   string `json:"details"`
	Timestamp string `json:"timestamp"`
}

// DashboardMetrics is the pre-aggregated figure set from /dashboard/metrics.
type DashboardMetrics struct {
	OpeningBalance float64 `json:"openingBalance"`
	ClosingBalance float64 `json:"closingBalance"`
	NetMovement    float64 `json:"netMovement"`
	Purchases      float64 `json:"purchases"`
	TransfersIn    float64 `json:"transfersIn"`
	TransfersOut   float64 `json:"transfersOut"`
	Assigned       float64 `json:"assigned"`
	Expended       float64 `json:"expended"`
}

type AuthResponse struct {
	Token        string `json:"token"`
	RefreshToken string `json:"refreshToken"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Role     Role   `json:"role"`
	BaseID   int64  `json:"baseId"`
}

type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Create/update payloads mirror what the backend controllers accept:
// flat identifier references instead of nested records.

type BaseInput struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Description string `json:"description,omitempty"`
}

type AssetTypeInput struct {
	Name        string `json:"name"`
	Category    string `json:"category"`
	Description string `json:"description,omitempty"`
}

type AssetInput struct {
	SerialNumber  string      `json:"serialNumber"`
	AssetTypeID   int64       `json:"assetTypeId"`
	BaseID        int64       `json:"baseId"`
	Status        AssetStatus `json:"status,omitempty"`
	PurchaseDate  string      `json:"purchaseDate,omitempty"`
	PurchasePrice float64     `json:"purchasePrice,omitempty"`
	Description   string      `json:"description,omitempty"`
}

type PurchaseInput struct {
	AssetTypeID  int64   `json:"assetTypeId"`
	BaseID       int64   `json:"baseId"`
	Quantity     int     `json:"quantity"`
	UnitPrice    float64 `json:"unitPrice"`
	PurchaseDate string  `json:"purchaseDate"`
	Supplier     string  `json:"supplier"`
	Description  string  `json:"description,omitempty"`
}

type TransferInput struct {
	AssetID      int64  `json:"assetId"`
	FromBaseID   int64  `json:"fromBaseId"`
	ToBaseID     int64  `json:"toBaseId"`
	TransferDate string `json:"transferDate"`
	Reason       string `json:"reason"`
}

type AssignmentInput struct {
	AssetID        int64  `json:"assetId"`
	AssignedToID   int64  `json:"assignedToId"`
	AssignmentDate string `json:"assignmentDate"`
	Notes          string `json:"notes,omitempty"`
}

type ExpenditureInput struct {
	AssetID         int64  `json:"assetId"`
	BaseID          int64  `json:"baseId"`
	Quantity        int    `json:"quantity"`
	Reason          string `json:"reason"`
	ExpenditureDate string `json:"expenditureDate"`
}

// Filter carries the optional list filters every collection endpoint
// accepts. Zero values are omitted from the query string.
type Filter struct {
	DateFrom    string
	DateTo      string
	BaseID      int64
	AssetTypeID int64
	Status      string
	UserID      int64
}

// Values encodes the filter as backend query parameters.
func (f Filter) Values() url.Values {
	v := url.Values{}
	if f.DateFrom != "" {
		v.Set("dateFrom", f.DateFrom)
	}
	if f.DateTo != "" {
		v.Set("dateTo", f.DateTo)
	}
	if f.BaseID > 0 {
		v.Set("baseId", strconv.FormatInt(f.BaseID, 10))
	}
	if f.AssetTypeID > 0 {
		v.Set("assetTypeId", strconv.FormatInt(f.AssetTypeID, 10))
	}
	if f.Status != "" {
		v.Set("status", f.Status)
	}
	if f.UserID > 0 {
		v.Set("userId", strconv.FormatInt(f.UserID, 10))
	}
	return v
}

// IsZero reports whether no filter criteria are set.
func (f Filter) IsZero() bool {
	return f == Filter{}
}
