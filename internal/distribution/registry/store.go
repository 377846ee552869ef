package registry

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/agrodist/agrodist/internal/distribution/model"
	"github.com/agrodist/agrodist/internal/record"
)

// Data file names inside the data directory.
const (
	ProductsFile     = "products.dat"
	SuppliersFile    = "suppliers.dat"
	RetailersFile    = "retailers.dat"
	TransportersFile = "transporters.dat"
	NextIDsFile      = "nextids.dat"
)

// Save writes every entity file and the id counters into dir.
func (r *Registry) Save(dir string) error {
	products := r.Products()
	suppliers := r.Suppliers()
	retailers := r.Retailers()
	transporters := r.Transporters()
	r.mu.RLock()
	next := r.next
	r.mu.RUnlock()

	lines := make([]string, 0, len(products))
	for i := range products {
		lines = append(lines, model.EncodeProduct(&products[i]))
	}
	if err := record.WriteLines(filepath.Join(dir, ProductsFile), lines); err != nil {
		return fmt.Errorf("save products: %w", err)
	}

	lines = lines[:0]
	for _, s := range suppliers {
		lines = append(lines, model.EncodeSupplier(s))
	}
	if err := record.WriteLines(filepath.Join(dir, SuppliersFile), lines); err != nil {
		return fmt.Errorf("save suppliers: %w", err)
	}

	lines = lines[:0]
	for _, rt := range retailers {
		lines = append(lines, model.EncodeRetailer(rt))
	}
	if err := record.WriteLines(filepath.Join(dir, RetailersFile), lines); err != nil {
		return fmt.Errorf("save retailers: %w", err)
	}

	lines = lines[:0]
	for i := range transporters {
		lines = append(lines, model.EncodeTransporter(&transporters[i]))
	}
	if err := record.WriteLines(filepath.Join(dir, TransportersFile), lines); err != nil {
		return fmt.Errorf("save transporters: %w", err)
	}

	ids := []string{
		strconv.Itoa(next.Product),
		strconv.Itoa(next.Supplier),
		strconv.Itoa(next.Retailer),
		strconv.Itoa(next.Transporter),
		strconv.Itoa(next.Transaction),
	}
	if err := record.WriteLines(filepath.Join(dir, NextIDsFile), ids); err != nil {
		return fmt.Errorf("save next ids: %w", err)
	}
	return nil
}

// Load replaces the registry contents with the entity files in dir. Missing
// files count as empty. Nothing is replaced unless every file parses.
func (r *Registry) Load(dir string) error {
	products := make(map[int]*productSlot)
	suppliers := make(map[int]*model.Supplier)
	retailers := make(map[int]*retailerSlot)
	transporters := make(map[int]*model.Transporter)
	next := freshCounters()

	if _, err := record.ReadFile(filepath.Join(dir, ProductsFile), func(line string) error {
		p, err := model.DecodeProduct(line)
		if err != nil {
			return err
		}
		products[p.ID] = &productSlot{p: *p}
		next.Product = max(next.Product, p.ID+1)
		return nil
	}); err != nil {
		return fmt.Errorf("load products: %w", err)
	}

	if _, err := record.ReadFile(filepath.Join(dir, SuppliersFile), func(line string) error {
		s, err := model.DecodeSupplier(line)
		if err != nil {
			return err
		}
		suppliers[s.ID] = s
		next.Supplier = max(next.Supplier, s.ID+1)
		return nil
	}); err != nil {
		return fmt.Errorf("load suppliers: %w", err)
	}

	if _, err := record.ReadFile(filepath.Join(dir, RetailersFile), func(line string) error {
		rt, err := model.DecodeRetailer(line)
		if err != nil {
			return err
		}
		retailers[rt.ID] = &retailerSlot{r: *rt}
		next.Retailer = max(next.Retailer, rt.ID+1)
		return nil
	}); err != nil {
		return fmt.Errorf("load retailers: %w", err)
	}

	if _, err := record.ReadFile(filepath.Join(dir, TransportersFile), func(line string) error {
		t, err := model.DecodeTransporter(line)
		if err != nil {
			return err
		}
		transporters[t.ID] = t
		next.Transporter = max(next.Transporter, t.ID+1)
		return nil
	}); err != nil {
		return fmt.Errorf("load transporters: %w", err)
	}

	var stored []int
	if _, err := record.ReadFile(filepath.Join(dir, NextIDsFile), func(line string) error {
		n, err := strconv.Atoi(strings.TrimSpace(line))
		if err != nil {
			return err
		}
		stored = append(stored, n)
		return nil
	}); err != nil {
		return fmt.Errorf("load next ids: %w", err)
	}
	// Stored counters never move an id below one already in use.
	slots := []*int{&next.Product, &next.Supplier, &next.Retailer, &next.Transporter, &next.Transaction}
	for i, n := range stored {
		if i < len(slots) {
			*slots[i] = max(*slots[i], n)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.products = products
	r.suppliers = suppliers
	r.retailers = retailers
	r.transporters = transporters
	r.next = next
	return nil
}

// EnsureTransactionID moves the transaction counter past id. It is used after
// loading transaction history that may be ahead of the stored counter.
func (r *Registry) EnsureTransactionID(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.next.Transaction = max(r.next.Transaction, id+1)
}
