package model

import (
	"fmt"
	"strings"
)

// TransactionStatus is the settlement state of a transaction.
type TransactionStatus string

const (
	StatusPending   TransactionStatus = "Pending"
	StatusCompleted TransactionStatus = "Completed"
	StatusFailed    TransactionStatus = "Failed"
)

// OrderType distinguishes regular orders from seasonal demand.
type OrderType string

const (
	OrderRegular  OrderType = "Regular"
	OrderSeasonal OrderType = "Seasonal"
)

// ReasonInsufficientCredit is the failure reason recorded when the retailer
// cannot cover the total cost.
const ReasonInsufficientCredit = "Insufficient retailer credit"

// ParseOrderType maps s onto an OrderType. The empty string means Regular.
func ParseOrderType(s string) (OrderType, error) {
	switch {
	case s == "":
		return OrderRegular, nil
	case strings.EqualFold(s, string(OrderRegular)):
		return OrderRegular, nil
	case strings.EqualFold(s, string(OrderSeasonal)):
		return OrderSeasonal, nil
	}
	return "", Invalid("unknown order type %q", s)
}

// ParseStatus maps s onto a TransactionStatus.
func ParseStatus(s string) (TransactionStatus, error) {
	switch TransactionStatus(s) {
	case StatusPending, StatusCompleted, StatusFailed:
		return TransactionStatus(s), nil
	}
	return "", fmt.Errorf("unknown transaction status %q", s)
}

// Transaction is the canonical record of one settlement attempt.
type Transaction struct {
	ID            int               `json:"id"`
	SupplierID    int               `json:"supplier_id"`
	RetailerID    int               `json:"retailer_id"`
	ProductID     int               `json:"product_id"`
	TransporterID int               `json:"transporter_id"`
	Quantity      int               `json:"quantity"`
	ProductCost   float64           `json:"product_cost"`
	TransportCost float64           `json:"transport_cost"`
	TotalCost     float64           `json:"total_cost"`
	CreatedAt     string            `json:"created_at"`
	Status        TransactionStatus `json:"status"`
	OrderType     OrderType         `json:"order_type"`
	FailureReason string            `json:"failure_reason,omitempty"`
}

// Summary is the point-in-time audit string written to the ledger.
func (t *Transaction) Summary() string {
	return fmt.Sprintf("Transaction ID: %d | Supplier ID: %d | Retailer ID: %d | Product ID: %d | Quantity: %d | Total Cost: RM%.2f | Timestamp: %s | Status: %s | Order Type: %s",
		t.ID, t.SupplierID, t.RetailerID, t.ProductID, t.Quantity, t.TotalCost, t.CreatedAt, t.Status, t.OrderType)
}
