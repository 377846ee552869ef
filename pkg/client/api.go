package client

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
)

// ── Products ─────────────────────────────────────────────────────────────────

// ListProducts calls GET /api/v1/products.
func (c *Client) ListProducts(ctx context.Context) ([]Product, error) {
	var resp struct {
		Products []Product `json:"products"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/products", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Products, nil
}

// GetProduct calls GET /api/v1/products/:id.
func (c *Client) GetProduct(ctx context.Context, id int) (*Product, error) {
	var p Product
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/products/%d", id), nil, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// CreateProduct calls POST /api/v1/products.
func (c *Client) CreateProduct(ctx context.Context, req CreateProductRequest) (*Product, error) {
	var p Product
	if err := c.call(ctx, http.MethodPost, "/api/v1/products", req, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// AdjustStock calls POST /api/v1/products/:id/stock.
func (c *Client) AdjustStock(ctx context.Context, id, delta int) (*Product, error) {
	var p Product
	body := map[string]int{"delta": delta}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/products/%d/stock", id), body, &p); err != nil {
		return nil, err
	}
	return &p, nil
}

// ── Suppliers ────────────────────────────────────────────────────────────────

// ListSuppliers calls GET /api/v1/suppliers.
func (c *Client) ListSuppliers(ctx context.Context) ([]Supplier, error) {
	var resp struct {
		Suppliers []Supplier `json:"suppliers"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/suppliers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Suppliers, nil
}

// GetSupplier calls GET /api/v1/suppliers/:id.
func (c *Client) GetSupplier(ctx context.Context, id int) (*Supplier, error) {
	var s Supplier
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/suppliers/%d", id), nil, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSupplier calls POST /api/v1/suppliers.
func (c *Client) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*Supplier, error) {
	var s Supplier
	if err := c.call(ctx, http.MethodPost, "/api/v1/suppliers", req, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// LinkSupplierProduct calls POST /api/v1/suppliers/:id/products.
func (c *Client) LinkSupplierProduct(ctx context.Context, supplierID, productID int) (*Supplier, error) {
	var s Supplier
	body := map[string]int{"product_id": productID}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/suppliers/%d/products", supplierID), body, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// ── Retailers ────────────────────────────────────────────────────────────────

// ListRetailers calls GET /api/v1/retailers.
func (c *Client) ListRetailers(ctx context.Context) ([]Retailer, error) {
	var resp struct {
		Retailers []Retailer `json:"retailers"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/retailers", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Retailers, nil
}

// GetRetailer calls GET /api/v1/retailers/:id.
func (c *Client) GetRetailer(ctx context.Context, id int) (*Retailer, error) {
	var r Retailer
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/retailers/%d", id), nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRetailer calls POST /api/v1/retailers.
func (c *Client) CreateRetailer(ctx context.Context, req CreateRetailerRequest) (*Retailer, error) {
	var r Retailer
	if err := c.call(ctx, http.MethodPost, "/api/v1/retailers", req, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// AddCredit calls POST /api/v1/retailers/:id/credit.
func (c *Client) AddCredit(ctx context.Context, id int, amount float64) (*Retailer, error) {
	var r Retailer
	body := map[string]float64{"amount": amount}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/retailers/%d/credit", id), body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// LinkRetailerProduct calls POST /api/v1/retailers/:id/products.
func (c *Client) LinkRetailerProduct(ctx context.Context, retailerID, productID int) (*Retailer, error) {
	var r Retailer
	body := map[string]int{"product_id": productID}
	if err := c.call(ctx, http.MethodPost, fmt.Sprintf("/api/v1/retailers/%d/products", retailerID), body, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// ── Transporters ─────────────────────────────────────────────────────────────

// ListTransporters calls GET /api/v1/transporters.
func (c *Client) ListTransporters(ctx context.Context) ([]Transporter, error) {
	var resp struct {
		Transporters []Transporter `json:"transporters"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/transporters", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transporters, nil
}

// GetTransporter calls GET /api/v1/transporters/:id.
func (c *Client) GetTransporter(ctx context.Context, id int) (*Transporter, error) {
	var t Transporter
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/transporters/%d", id), nil, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTransporter calls POST /api/v1/transporters.
func (c *Client) CreateTransporter(ctx context.Context, req CreateTransporterRequest) (*Transporter, error) {
	var t Transporter
	if err := c.call(ctx, http.MethodPost, "/api/v1/transporters", req, &t); err != nil {
		return nil, err
	}
	return &t, nil
}

// ── Transactions ─────────────────────────────────────────────────────────────

// CreateTransaction calls POST /api/v1/transactions.
func (c *Client) CreateTransaction(ctx context.Context, req TransactionRequest) (*Transaction, error) {
	var tx Transaction
	if err := c.call(ctx, http.MethodPost, "/api/v1/transactions", req, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// ListTransactions calls GET /api/v1/transactions. An empty status lists
// every transaction.
func (c *Client) ListTransactions(ctx context.Context, status string) ([]Transaction, error) {
	path := "/api/v1/transactions"
	if status != "" {
		path += "?status=" + url.QueryEscape(status)
	}
	var resp struct {
		Transactions []Transaction `json:"transactions"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transactions, nil
}

// GetTransaction calls GET /api/v1/transactions/:id.
func (c *Client) GetTransaction(ctx context.Context, id int) (*Transaction, error) {
	var tx Transaction
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/transactions/%d", id), nil, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// Report calls GET /api/v1/reports/distribution.
func (c *Client) Report(ctx context.Context) (*Report, error) {
	var r Report
	if err := c.call(ctx, http.MethodGet, "/api/v1/reports/distribution", nil, &r); err != nil {
		return nil, err
	}
	return &r, nil
}

// RunSeasonal calls POST /api/v1/simulations/seasonal. A nil scenario runs
// the server's default.
func (c *Client) RunSeasonal(ctx context.Context, sc *SeasonalScenario) (*SeasonalResult, error) {
	var in any
	if sc != nil {
		in = sc
	}
	var res SeasonalResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/simulations/seasonal", in, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ── Optimizers ───────────────────────────────────────────────────────────────

// OptimizeRoute calls POST /api/v1/routes/optimize.
func (c *Client) OptimizeRoute(ctx context.Context, req RouteRequest) (*RoutePlan, error) {
	var plan RoutePlan
	if err := c.call(ctx, http.MethodPost, "/api/v1/routes/optimize", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}

// OptimizeInventory calls POST /api/v1/inventory/optimize. With confirm set
// the plan is recorded on the ledger.
func (c *Client) OptimizeInventory(ctx context.Context, productID int, confirm bool) (*InventoryResult, error) {
	body := map[string]any{"product_id": productID, "confirm": confirm}
	var res InventoryResult
	if err := c.call(ctx, http.MethodPost, "/api/v1/inventory/optimize", body, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// ── Ledger ───────────────────────────────────────────────────────────────────

// Ledger calls GET /api/v1/ledger.
func (c *Client) Ledger(ctx context.Context) (*LedgerOverview, error) {
	var o LedgerOverview
	if err := c.call(ctx, http.MethodGet, "/api/v1/ledger", nil, &o); err != nil {
		return nil, err
	}
	return &o, nil
}

// VerifyLedger calls GET /api/v1/ledger/verify. With audit set the server
// also recomputes every block hash.
func (c *Client) VerifyLedger(ctx context.Context, audit bool) (*VerifyResult, error) {
	path := "/api/v1/ledger/verify"
	if audit {
		path += "?audit=true"
	}
	var res VerifyResult
	if err := c.call(ctx, http.MethodGet, path, nil, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// LedgerEntry calls GET /api/v1/ledger/entries/:idx.
func (c *Client) LedgerEntry(ctx context.Context, idx int) (*Block, error) {
	var b Block
	if err := c.call(ctx, http.MethodGet, fmt.Sprintf("/api/v1/ledger/entries/%d", idx), nil, &b); err != nil {
		return nil, err
	}
	return &b, nil
}

// LedgerBlocks calls GET /api/v1/ledger/blocks.
func (c *Client) LedgerBlocks(ctx context.Context) ([]Block, error) {
	var resp struct {
		Blocks []Block `json:"blocks"`
	}
	if err := c.call(ctx, http.MethodGet, "/api/v1/ledger/blocks", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Blocks, nil
}

// ── System ───────────────────────────────────────────────────────────────────

// SaveSystem calls POST /api/v1/system/save.
func (c *Client) SaveSystem(ctx context.Context) (*SystemStatus, error) {
	return c.system(ctx, "save")
}

// LoadSystem calls POST /api/v1/system/load.
func (c *Client) LoadSystem(ctx context.Context) (*SystemStatus, error) {
	return c.system(ctx, "load")
}

// ResetSystem calls POST /api/v1/system/reset.
func (c *Client) ResetSystem(ctx context.Context) (*SystemStatus, error) {
	return c.system(ctx, "reset")
}

func (c *Client) system(ctx context.Context, action string) (*SystemStatus, error) {
	var st SystemStatus
	if err := c.call(ctx, http.MethodPost, "/api/v1/system/"+action, nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}
