package client

// Product is a stocked item.
type Product struct {
	ID    int     `json:"id"`
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// Supplier ships products from a fixed location.
type Supplier struct {
	ID         int     `json:"id"`
	Name       string  `json:"name"`
	Location   string  `json:"location"`
	Branch     string  `json:"branch"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	ProductIDs []int   `json:"product_ids"`
}

// Retailer buys products on credit.
type Retailer struct {
	ID                  int     `json:"id"`
	Name                string  `json:"name"`
	Location            string  `json:"location"`
	Lat                 float64 `json:"lat"`
	Lon                 float64 `json:"lon"`
	CreditBalance       float64 `json:"credit_balance"`
	AnnualCreditBalance float64 `json:"annual_credit_balance"`
	ProductIDs          []int   `json:"product_ids"`
}

// Transporter moves goods at a per-kilometre rate.
type Transporter struct {
	ID            int     `json:"id"`
	Name          string  `json:"name"`
	Type          string  `json:"type"`
	CostPerKm     float64 `json:"cost_per_km"`
	MaxCapacityKg int     `json:"max_capacity_kg"`
}

// CreateProductRequest is the payload for CreateProduct.
type CreateProductRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// CreateSupplierRequest is the payload for CreateSupplier.
type CreateSupplierRequest struct {
	Name       string  `json:"name"`
	Location   string  `json:"location,omitempty"`
	Branch     string  `json:"branch,omitempty"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	ProductIDs []int   `json:"product_ids,omitempty"`
}

// CreateRetailerRequest is the payload for CreateRetailer.
type CreateRetailerRequest struct {
	Name                string  `json:"name"`
	Location            string  `json:"location,omitempty"`
	Lat                 float64 `json:"lat"`
	Lon                 float64 `json:"lon"`
	CreditBalance       float64 `json:"credit_balance"`
	AnnualCreditBalance float64 `json:"annual_credit_balance"`
	ProductIDs          []int   `json:"product_ids,omitempty"`
}

// CreateTransporterRequest is the payload for CreateTransporter.
type CreateTransporterRequest struct {
	Name          string  `json:"name"`
	Type          string  `json:"type,omitempty"`
	CostPerKm     float64 `json:"cost_per_km"`
	MaxCapacityKg int     `json:"max_capacity_kg"`
}

// TransactionRequest is the payload for CreateTransaction. An empty
// OrderType means Regular.
type TransactionRequest struct {
	SupplierID    int    `json:"supplier_id"`
	RetailerID    int    `json:"retailer_id"`
	ProductID     int    `json:"product_id"`
	TransporterID int    `json:"transporter_id"`
	Quantity      int    `json:"quantity"`
	OrderType     string `json:"order_type,omitempty"`
}

// Transaction is a settled order.
type Transaction struct {
	ID            int     `json:"id"`
	SupplierID    int     `json:"supplier_id"`
	RetailerID    int     `json:"retailer_id"`
	ProductID     int     `json:"product_id"`
	TransporterID int     `json:"transporter_id"`
	Quantity      int     `json:"quantity"`
	ProductCost   float64 `json:"product_cost"`
	TransportCost float64 `json:"transport_cost"`
	TotalCost     float64 `json:"total_cost"`
	CreatedAt     string  `json:"created_at"`
	Status        string  `json:"status"`
	OrderType     string  `json:"order_type"`
	FailureReason string  `json:"failure_reason,omitempty"`
}

// ProductVolume is one product's completed quantity in a Report.
type ProductVolume struct {
	ProductID int    `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
}

// Report summarises the transaction history.
type Report struct {
	Completed    int             `json:"completed"`
	Failed       int             `json:"failed"`
	TotalRevenue float64         `json:"total_revenue"`
	Products     []ProductVolume `json:"products"`
}

// SeasonalLeg is one order placed for every retailer in a seasonal run.
type SeasonalLeg struct {
	SupplierID    int `json:"supplier_id"`
	ProductID     int `json:"product_id"`
	TransporterID int `json:"transporter_id"`
	Quantity      int `json:"quantity"`
}

// SeasonalScenario overrides the server's default seasonal run.
type SeasonalScenario struct {
	HighDemand   SeasonalLeg `json:"high_demand"`
	NormalDemand SeasonalLeg `json:"normal_demand"`
}

// SeasonalResult lists what a seasonal run recorded.
type SeasonalResult struct {
	Transactions []Transaction `json:"transactions"`
	Errors       []string      `json:"errors"`
}

// RouteRequest is the payload for OptimizeRoute. No RetailerIDs means every
// retailer.
type RouteRequest struct {
	SupplierID    int   `json:"supplier_id"`
	TransporterID int   `json:"transporter_id"`
	RetailerIDs   []int `json:"retailer_ids,omitempty"`
}

// RoutePlan is a closed delivery loop.
type RoutePlan struct {
	SupplierID      int       `json:"supplier_id"`
	Route           []int     `json:"route"`
	LegsKm          []float64 `json:"legs_km"`
	TotalDistanceKm float64   `json:"total_distance_km"`
	TransporterID   int       `json:"transporter_id"`
	TransportCost   float64   `json:"transport_cost"`
}

// Allocation is one retailer's share in an InventoryPlan.
type Allocation struct {
	RetailerID       int    `json:"retailer_id"`
	RetailerName     string `json:"retailer_name"`
	HistoricalDemand int    `json:"historical_demand"`
	Units            int    `json:"units"`
}

// InventoryPlan is a proportional stock allocation.
type InventoryPlan struct {
	ProductID            int          `json:"product_id"`
	ProductName          string       `json:"product_name"`
	Stock                int          `json:"stock"`
	TotalDemand          int          `json:"total_demand"`
	Allocations          []Allocation `json:"allocations"`
	Rescaled             bool         `json:"rescaled"`
	HoldingCostPerUnit   float64      `json:"holding_cost_per_unit"`
	BaselineHoldingCost  float64      `json:"baseline_holding_cost"`
	OptimizedHoldingCost float64      `json:"optimized_holding_cost"`
	Savings              float64      `json:"savings"`
}

// InventoryResult is the response of OptimizeInventory. Block is set when
// the plan was confirmed and recorded.
type InventoryResult struct {
	Plan     InventoryPlan `json:"plan"`
	Recorded bool          `json:"recorded"`
	Block    *Block        `json:"block,omitempty"`
}

// Block is one audit ledger entry.
type Block struct {
	Index     int    `json:"index"`
	Hash      string `json:"hash"`
	PrevHash  string `json:"prev_hash"`
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"`
}

// LedgerOverview is the chain length and tip.
type LedgerOverview struct {
	Entries int    `json:"entries"`
	Root    string `json:"root"`
}

// VerifyResult is the outcome of a ledger integrity check.
type VerifyResult struct {
	Valid bool   `json:"valid"`
	Error string `json:"error,omitempty"`
}

// SystemStatus is returned by the save, load and reset calls.
type SystemStatus struct {
	Status  string `json:"status"`
	Entries int    `json:"entries"`
	Root    string `json:"root"`
}
