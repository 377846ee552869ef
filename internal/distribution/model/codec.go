package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/agrodist/agrodist/internal/record"
)

// Line codecs for the flat data files. Field order matches the files written
// by earlier releases; text fields are escaped by the record package.

// EncodeProduct renders id|name|price|stock.
func EncodeProduct(p *Product) string {
	return record.Join(itoa(p.ID), p.Name, ftoa(p.Price), itoa(p.Stock))
}

// DecodeProduct parses a line written by EncodeProduct.
func DecodeProduct(line string) (*Product, error) {
	f := fields{parts: record.Split(line)}
	if err := f.need(4, KindProduct); err != nil {
		return nil, err
	}
	p := &Product{
		ID:    f.int(0),
		Name:  f.str(1),
		Price: f.float(2),
		Stock: f.int(3),
	}
	return p, f.err
}

// EncodeSupplier renders id|name|location|branch|lat|lon|pid,pid.
func EncodeSupplier(s *Supplier) string {
	return record.Join(itoa(s.ID), s.Name, s.Location, s.Branch, ftoa(s.Lat), ftoa(s.Lon), joinIDs(s.ProductIDs))
}

// DecodeSupplier parses a line written by EncodeSupplier. The product list
// is optional.
func DecodeSupplier(line string) (*Supplier, error) {
	f := fields{parts: record.Split(line)}
	if err := f.need(6, KindSupplier); err != nil {
		return nil, err
	}
	s := &Supplier{
		ID:       f.int(0),
		Name:     f.str(1),
		Location: f.str(2),
		Branch:   f.str(3),
		Lat:      f.float(4),
		Lon:      f.float(5),
	}
	s.ProductIDs = f.ids(6)
	return s, f.err
}

// EncodeRetailer renders id|name|location|lat|lon|credit|annual|pid,pid.
func EncodeRetailer(r *Retailer) string {
	return record.Join(itoa(r.ID), r.Name, r.Location, ftoa(r.Lat), ftoa(r.Lon),
		ftoa(r.CreditBalance), ftoa(r.AnnualCreditBalance), joinIDs(r.ProductIDs))
}

// DecodeRetailer parses a line written by EncodeRetailer. The product list
// is optional.
func DecodeRetailer(line string) (*Retailer, error) {
	f := fields{parts: record.Split(line)}
	if err := f.need(7, KindRetailer); err != nil {
		return nil, err
	}
	r := &Retailer{
		ID:                  f.int(0),
		Name:                f.str(1),
		Location:            f.str(2),
		Lat:                 f.float(3),
		Lon:                 f.float(4),
		CreditBalance:       f.float(5),
		AnnualCreditBalance: f.float(6),
	}
	r.ProductIDs = f.ids(7)
	return r, f.err
}

// EncodeTransporter renders id|name|type|costPerKm|maxCapacity.
func EncodeTransporter(t *Transporter) string {
	return record.Join(itoa(t.ID), t.Name, t.Type, ftoa(t.CostPerKm), itoa(t.MaxCapacityKg))
}

// DecodeTransporter parses a line written by EncodeTransporter.
func DecodeTransporter(line string) (*Transporter, error) {
	f := fields{parts: record.Split(line)}
	if err := f.need(5, KindTransporter); err != nil {
		return nil, err
	}
	t := &Transporter{
		ID:            f.int(0),
		Name:          f.str(1),
		Type:          f.str(2),
		CostPerKm:     f.float(3),
		MaxCapacityKg: f.int(4),
	}
	return t, f.err
}

// EncodeTransaction renders
// id|supplier|retailer|product|transporter|qty|productCost|transportCost|total|timestamp|status|orderType|reason.
// The trailing failure reason is absent from files written by earlier
// releases and is optional on decode.
func EncodeTransaction(t *Transaction) string {
	return record.Join(itoa(t.ID), itoa(t.SupplierID), itoa(t.RetailerID), itoa(t.ProductID), itoa(t.TransporterID),
		itoa(t.Quantity), ftoa(t.ProductCost), ftoa(t.TransportCost), ftoa(t.TotalCost),
		t.CreatedAt, string(t.Status), string(t.OrderType), t.FailureReason)
}

// DecodeTransaction parses a line written by EncodeTransaction.
func DecodeTransaction(line string) (*Transaction, error) {
	f := fields{parts: record.Split(line)}
	if err := f.need(12, KindTransaction); err != nil {
		return nil, err
	}
	t := &Transaction{
		ID:            f.int(0),
		SupplierID:    f.int(1),
		RetailerID:    f.int(2),
		ProductID:     f.int(3),
		TransporterID: f.int(4),
		Quantity:      f.int(5),
		ProductCost:   f.float(6),
		TransportCost: f.float(7),
		TotalCost:     f.float(8),
		CreatedAt:     f.str(9),
		FailureReason: f.str(12),
	}
	if f.err != nil {
		return nil, f.err
	}
	status, err := ParseStatus(f.str(10))
	if err != nil {
		return nil, err
	}
	orderType, err := ParseOrderType(f.str(11))
	if err != nil {
		return nil, err
	}
	t.Status, t.OrderType = status, orderType
	return t, nil
}

// fields is a cursor over split record parts that keeps the first
// conversion error.
type fields struct {
	parts []string
	err   error
}

func (f *fields) need(n int, kind string) error {
	if len(f.parts) < n {
		return fmt.Errorf("invalid %s record: want at least %d fields, got %d", strings.ToLower(kind), n, len(f.parts))
	}
	return nil
}

func (f *fields) str(i int) string {
	if i >= len(f.parts) {
		return ""
	}
	return f.parts[i]
}

func (f *fields) int(i int) int {
	v, err := strconv.Atoi(strings.TrimSpace(f.str(i)))
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("field %d: %w", i+1, err)
	}
	return v
}

func (f *fields) float(i int) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(f.str(i)), 64)
	if err != nil && f.err == nil {
		f.err = fmt.Errorf("field %d: %w", i+1, err)
	}
	return v
}

func (f *fields) ids(i int) []int {
	var out []int
	for _, s := range strings.Split(f.str(i), ",") {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		id, err := strconv.Atoi(s)
		if err != nil {
			if f.err == nil {
				f.err = fmt.Errorf("field %d: %w", i+1, err)
			}
			continue
		}
		out = append(out, id)
	}
	return out
}

func itoa(i int) string { return strconv.Itoa(i) }

func ftoa(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

func joinIDs(ids []int) string {
	s := make([]string, len(ids))
	for i, id := range ids {
		s[i] = strconv.Itoa(id)
	}
	return strings.Join(s, ",")
}
