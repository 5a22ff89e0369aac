package domain

import "time"

// Field names follow the persisted snapshot layout: camelCase keys under the
// khakhra_manager_data_v1 storage key. Changing a tag changes the wire format.

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusProcessing, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type Role string

const (
	RoleAdmin      Role = "Admin"
	RoleStaff      Role = "Staff"
	RoleAccountant Role = "Accountant"
)

type ExpenseCategory string

const (
	ExpensePackaging     ExpenseCategory = "Packaging"
	ExpenseDelivery      ExpenseCategory = "Delivery"
	ExpenseUtilities     ExpenseCategory = "Utilities"
	ExpenseLabor         ExpenseCategory = "Labor"
	ExpenseMarketing     ExpenseCategory = "Marketing"
	ExpenseMiscellaneous ExpenseCategory = "Miscellaneous"
)

type Customer struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
}

type Product struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Category     string  `json:"category"`
	UnitPrice    float64 `json:"unitPrice"`
	CostPerUnit  float64 `json:"costPerUnit"`
	Stock        int     `json:"stock"`
	ReorderLevel int     `json:"reorderLevel"`
}

type RawMaterial struct {
	ID           string  `json:"id"`
	Name         string  `json:"name"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity"`
	ReorderLevel float64 `json:"reorderLevel"`
	UnitCost     float64 `json:"unitCost"`
}

type OrderItem struct {
	ProductID string  `json:"productId"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unitPrice"`
}

type Order struct {
	ID               string      `json:"id"`
	CustomerID       string      `json:"customerId"`
	Items            []OrderItem `json:"items"`
	Status           OrderStatus `json:"status"`
	OrderDate        time.Time   `json:"orderDate"`
	ExpectedShipDate time.Time   `json:"expectedShipDate"`
	DeliveredDate    *time.Time  `json:"deliveredDate,omitempty"`
	Discount         float64     `json:"discount"`
	TaxRate          float64     `json:"taxRate"`
	PaymentMethod    string      `json:"paymentMethod"`
}

type Invoice struct {
	ID          string    `json:"id"`
	OrderID     string    `json:"orderId"`
	InvoiceDate time.Time `json:"invoiceDate"`
	DueDate     time.Time `json:"dueDate"`
	GSTNumber   string    `json:"gstNumber"`
	TotalAmount float64   `json:"totalAmount"`
	CGST        float64   `json:"cgst"`
	SGST        float64   `json:"sgst"`
	IGST        float64   `json:"igst"`
	Paid        bool      `json:"paid"`
}

type Expense struct {
	ID       string          `json:"id"`
	Title    string          `json:"title"`
	Amount   float64         `json:"amount"`
	Category ExpenseCategory `json:"category"`
	Date     time.Time       `json:"date"`
	Notes    string          `json:"notes"`
}

type RawMaterialUsage struct {
	RawMaterialID string  `json:"rawMaterialId"`
	Quantity      float64 `json:"quantity"`
}

type ProductionBatch struct {
	ID               string             `json:"id"`
	ProductID        string             `json:"productId"`
	QuantityProduced int                `json:"quantityProduced"`
	ProductionDate   time.Time          `json:"productionDate"`
	RawMaterialUsage []RawMaterialUsage `json:"rawMaterialUsage"`
}

type UserProfile struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Role Role   `json:"role"`
}

// Snapshot is the full persisted state: all seven collections plus the active
// profile, serialized as one JSON object under a single storage key.
type Snapshot struct {
	Customers         []Customer        `json:"customers"`
	Products          []Product         `json:"products"`
	RawMaterials      []RawMaterial     `json:"rawMaterials"`
	Orders            []Order           `json:"orders"`
	Invoices          []Invoice         `json:"invoices"`
	Expenses          []Expense         `json:"expenses"`
	ProductionBatches []ProductionBatch `json:"productionBatches"`
	UserProfile       *UserProfile      `json:"userProfile"`
}

// ExportPayload is the read-only copy handed to the exporters: the seven
// collections without the active profile.
type ExportPayload struct {
	Orders            []Order           `json:"orders"`
	Invoices          []Invoice         `json:"invoices"`
	Expenses          []Expense         `json:"expenses"`
	Products          []Product         `json:"products"`
	RawMaterials      []RawMaterial     `json:"rawMaterials"`
	Customers         []Customer        `json:"customers"`
	ProductionBatches []ProductionBatch `json:"productionBatches"`
}

type CustomerCreateRequest struct {
	Name  string `json:"name" validate:"required"`
	Phone string `json:"phone"`
}

type ProductCreateRequest struct {
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category"`
	UnitPrice    float64 `json:"unitPrice" validate:"gte=0"`
	CostPerUnit  float64 `json:"costPerUnit" validate:"gte=0"`
	Stock        int     `json:"stock" validate:"gte=0"`
	ReorderLevel int     `json:"reorderLevel" validate:"gte=0"`
}

type RawMaterialCreateRequest struct {
	Name         string  `json:"name" validate:"required"`
	Unit         string  `json:"unit"`
	Quantity     float64 `json:"quantity" validate:"gte=0"`
	ReorderLevel float64 `json:"reorderLevel" validate:"gte=0"`
	UnitCost     float64 `json:"unitCost" validate:"gte=0"`
}

type OrderCreateRequest struct {
	CustomerID       string      `json:"customerId" validate:"required"`
	Items            []OrderItem `json:"items" validate:"min=1"`
	ExpectedShipDate time.Time   `json:"expectedShipDate"`
	Discount         float64     `json:"discount" validate:"gte=0"`
	TaxRate          float64     `json:"taxRate" validate:"gte=0"`
	PaymentMethod    string      `json:"paymentMethod"`
}

type OrderStatusUpdateRequest struct {
	Status OrderStatus `json:"status" validate:"required"`
}

type InvoiceCreateRequest struct {
	OrderID   string    `json:"orderId" validate:"required"`
	GSTNumber string    `json:"gstNumber"`
	DueDate   time.Time `json:"dueDate"`
}

type ExpenseCreateRequest struct {
	Title    string          `json:"title" validate:"required"`
	Amount   float64         `json:"amount" validate:"gte=0"`
	Category ExpenseCategory `json:"category"`
	Date     time.Time       `json:"date"`
	Notes    string          `json:"notes"`
}

type ProductionBatchCreateRequest struct {
	ProductID        string             `json:"productId" validate:"required"`
	QuantityProduced int                `json:"quantityProduced" validate:"gte=0"`
	ProductionDate   time.Time          `json:"productionDate"`
	RawMaterialUsage []RawMaterialUsage `json:"rawMaterialUsage"`
}

type StockUpdateRequest struct {
	Stock int `json:"stock" validate:"gte=0"`
}

type QuantityUpdateRequest struct {
	Quantity float64 `json:"quantity" validate:"gte=0"`
}

type ProfileUpdateRequest struct {
	Name string `json:"name"`
	Role Role   `json:"role" validate:"required"`
}

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	Role        string `json:"role"`
	ExpiresAt   string `json:"expires_at"`
}

type Actor struct {
	Username string
	Role     string
}

// UserAccount is an internal persistence model for auth credentials.
type UserAccount struct {
	Username  string
	Password  string
	Role      string
	Active    bool
	CreatedAt time.Time
}
