package model

// CreateProductRequest is the payload for adding a product.
type CreateProductRequest struct {
	Name  string  `json:"name"  binding:"required"`
	Price float64 `json:"price"`
	Stock int     `json:"stock"`
}

// CreateSupplierRequest is the payload for adding a supplier.
type CreateSupplierRequest struct {
	Name       string  `json:"name" binding:"required"`
	Location   string  `json:"location"`
	Branch     string  `json:"branch"`
	Lat        float64 `json:"lat"`
	Lon        float64 `json:"lon"`
	ProductIDs []int   `json:"product_ids"`
}

// CreateRetailerRequest is the payload for adding a retailer.
type CreateRetailerRequest struct {
	Name                string  `json:"name" binding:"required"`
	Location            string  `json:"location"`
	Lat                 float64 `json:"lat"`
	Lon                 float64 `json:"lon"`
	CreditBalance       float64 `json:"credit_balance"`
	AnnualCreditBalance float64 `json:"annual_credit_balance"`
	ProductIDs          []int   `json:"product_ids"`
}

// CreateTransporterRequest is the payload for adding a transporter.
type CreateTransporterRequest struct {
	Name          string  `json:"name" binding:"required"`
	Type          string  `json:"type"`
	CostPerKm     float64 `json:"cost_per_km"`
	MaxCapacityKg int     `json:"max_capacity_kg"`
}

// StockAdjustment is the payload for restocking a product.
type StockAdjustment struct {
	Delta int `json:"delta"`
}

// CreditTopUp is the payload for adding retailer credit.
type CreditTopUp struct {
	Amount float64 `json:"amount"`
}

// ProductLink is the payload for linking a product to a supplier or retailer.
type ProductLink struct {
	ProductID int `json:"product_id" binding:"required"`
}

// TransactionRequest is the payload for settling a transaction.
type TransactionRequest struct {
	SupplierID    int    `json:"supplier_id"`
	RetailerID    int    `json:"retailer_id"`
	ProductID     int    `json:"product_id"`
	TransporterID int    `json:"transporter_id"`
	Quantity      int    `json:"quantity"`
	OrderType     string `json:"order_type"`
}
