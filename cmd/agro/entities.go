package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/agrodist/agrodist/pkg/client"
	"github.com/spf13/cobra"
)

// ── products ─────────────────────────────────────────────────────────────────

var productsCmd = &cobra.Command{Use: "products", Short: "List and add products"}

var productsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		products, err := c.ListProducts(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(products)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tPRICE\tSTOCK")
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\tRM%.2f\t%d\n", p.ID, p.Name, p.Price, p.Stock)
		}
		return w.Flush()
	},
}

var productReq client.CreateProductRequest

var productsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a product",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		p, err := c.CreateProduct(context.Background(), productReq)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(p)
		}
		fmt.Printf("Product %d added: %s\n", p.ID, p.Name)
		return nil
	},
}

var productsStockCmd = &cobra.Command{
	Use:   "stock <id> <delta>",
	Short: "Adjust a product's stock by delta",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		delta, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid delta %q", args[1])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		p, err := c.AdjustStock(context.Background(), id, delta)
		if err != nil {
			return err
		}
		fmt.Printf("Product %d stock: %d\n", p.ID, p.Stock)
		return nil
	},
}

func init() {
	f := productsAddCmd.Flags()
	f.StringVar(&productReq.Name, "name", "", "product name (required)")
	f.Float64Var(&productReq.Price, "price", 0, "unit price in RM")
	f.IntVar(&productReq.Stock, "stock", 0, "initial stock")
	_ = productsAddCmd.MarkFlagRequired("name")
	productsCmd.AddCommand(productsListCmd, productsAddCmd, productsStockCmd)
}

// ── suppliers ────────────────────────────────────────────────────────────────

var suppliersCmd = &cobra.Command{Use: "suppliers", Short: "List and add suppliers"}

var suppliersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List suppliers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		suppliers, err := c.ListSuppliers(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(suppliers)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tBRANCH\tLAT\tLON\tPRODUCTS")
		for _, s := range suppliers {
			fmt.Fprintf(w, "%d\t%s\t%s\t%.3f\t%.3f\t%s\n", s.ID, s.Name, s.Branch, s.Lat, s.Lon, joinInts(s.ProductIDs))
		}
		return w.Flush()
	},
}

var supplierReq client.CreateSupplierRequest

var suppliersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a supplier",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		s, err := c.CreateSupplier(context.Background(), supplierReq)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(s)
		}
		fmt.Printf("Supplier %d added: %s\n", s.ID, s.Name)
		return nil
	},
}

func init() {
	f := suppliersAddCmd.Flags()
	f.StringVar(&supplierReq.Name, "name", "", "supplier name (required)")
	f.StringVar(&supplierReq.Location, "location", "", "street address")
	f.StringVar(&supplierReq.Branch, "branch", "", "branch or region")
	f.Float64Var(&supplierReq.Lat, "lat", 0, "latitude")
	f.Float64Var(&supplierReq.Lon, "lon", 0, "longitude")
	f.IntSliceVar(&supplierReq.ProductIDs, "products", nil, "supplied product ids, comma separated")
	_ = suppliersAddCmd.MarkFlagRequired("name")
	suppliersCmd.AddCommand(suppliersListCmd, suppliersAddCmd)
}

// ── retailers ────────────────────────────────────────────────────────────────

var retailersCmd = &cobra.Command{Use: "retailers", Short: "List and add retailers"}

var retailersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List retailers",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		retailers, err := c.ListRetailers(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(retailers)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tLAT\tLON\tCREDIT\tANNUAL CREDIT")
		for _, r := range retailers {
			fmt.Fprintf(w, "%d\t%s\t%.3f\t%.3f\tRM%.2f\tRM%.2f\n",
				r.ID, r.Name, r.Lat, r.Lon, r.CreditBalance, r.AnnualCreditBalance)
		}
		return w.Flush()
	},
}

var retailerReq client.CreateRetailerRequest

var retailersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a retailer",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		r, err := c.CreateRetailer(context.Background(), retailerReq)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(r)
		}
		fmt.Printf("Retailer %d added: %s\n", r.ID, r.Name)
		return nil
	},
}

var retailersCreditCmd = &cobra.Command{
	Use:   "credit <id> <amount>",
	Short: "Top up a retailer's credit",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid retailer id %q", args[0])
		}
		amount, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return fmt.Errorf("invalid amount %q", args[1])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		r, err := c.AddCredit(context.Background(), id, amount)
		if err != nil {
			return err
		}
		fmt.Printf("Retailer %d credit: RM%.2f\n", r.ID, r.CreditBalance)
		return nil
	},
}

func init() {
	f := retailersAddCmd.Flags()
	f.StringVar(&retailerReq.Name, "name", "", "retailer name (required)")
	f.StringVar(&retailerReq.Location, "location", "", "street address")
	f.Float64Var(&retailerReq.Lat, "lat", 0, "latitude")
	f.Float64Var(&retailerReq.Lon, "lon", 0, "longitude")
	f.Float64Var(&retailerReq.CreditBalance, "credit", 0, "credit balance in RM")
	f.Float64Var(&retailerReq.AnnualCreditBalance, "annual-credit", 0, "annual credit balance in RM")
	_ = retailersAddCmd.MarkFlagRequired("name")
	retailersCmd.AddCommand(retailersListCmd, retailersAddCmd, retailersCreditCmd)
}

// ── transporters ─────────────────────────────────────────────────────────────

var transportersCmd = &cobra.Command{Use: "transporters", Short: "List and add transporters"}

var transportersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transporters",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		transporters, err := c.ListTransporters(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(transporters)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tNAME\tTYPE\tCOST/KM\tCAPACITY")
		for _, t := range transporters {
			fmt.Fprintf(w, "%d\t%s\t%s\tRM%.2f\t%dkg\n", t.ID, t.Name, t.Type, t.CostPerKm, t.MaxCapacityKg)
		}
		return w.Flush()
	},
}

var transporterReq client.CreateTransporterRequest

var transportersAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a transporter",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		t, err := c.CreateTransporter(context.Background(), transporterReq)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(t)
		}
		fmt.Printf("Transporter %d added: %s\n", t.ID, t.Name)
		return nil
	},
}

func init() {
	f := transportersAddCmd.Flags()
	f.StringVar(&transporterReq.Name, "name", "", "transporter name (required)")
	f.StringVar(&transporterReq.Type, "type", "", "service type")
	f.Float64Var(&transporterReq.CostPerKm, "cost-per-km", 0, "cost per kilometre in RM")
	f.IntVar(&transporterReq.MaxCapacityKg, "capacity", 0, "maximum load in kg")
	_ = transportersAddCmd.MarkFlagRequired("name")
	transportersCmd.AddCommand(transportersListCmd, transportersAddCmd)
}
