package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/agrodist/agrodist/internal/auth"
	"github.com/agrodist/agrodist/pkg/client"
	"github.com/spf13/cobra"
)

// ── tx ───────────────────────────────────────────────────────────────────────

var txCmd = &cobra.Command{Use: "tx", Short: "Create and inspect transactions"}

var txReq client.TransactionRequest

var txCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Settle a transaction",
	Long: `Settle a transaction between a supplier and a retailer.

A rule or credit rejection is still recorded: the transaction is printed
with status Failed and the reason. Unknown entities or insufficient stock
are reported as errors and nothing is recorded.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		tx, err := c.CreateTransaction(context.Background(), txReq)
		if err != nil {
			return err
		}
		return printTransaction(tx)
	},
}

var txStatus string

var txListCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		txs, err := c.ListTransactions(context.Background(), txStatus)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(txs)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tSUPPLIER\tRETAILER\tPRODUCT\tQTY\tTOTAL\tSTATUS\tTYPE\tCREATED")
		for _, tx := range txs {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\t%d\tRM%.2f\t%s\t%s\t%s\n",
				tx.ID, tx.SupplierID, tx.RetailerID, tx.ProductID, tx.Quantity,
				tx.TotalCost, tx.Status, tx.OrderType, tx.CreatedAt)
		}
		return w.Flush()
	},
}

var txShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one transaction",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid transaction id %q", args[0])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		tx, err := c.GetTransaction(context.Background(), id)
		if err != nil {
			return err
		}
		return printTransaction(tx)
	},
}

func printTransaction(tx *client.Transaction) error {
	if jsonOutput {
		return printJSON(tx)
	}
	fmt.Printf("Transaction:    %d\n", tx.ID)
	fmt.Printf("Status:         %s\n", tx.Status)
	if tx.FailureReason != "" {
		fmt.Printf("Reason:         %s\n", tx.FailureReason)
	}
	fmt.Printf("Order type:     %s\n", tx.OrderType)
	fmt.Printf("Quantity:       %d\n", tx.Quantity)
	fmt.Printf("Product cost:   RM%.2f\n", tx.ProductCost)
	fmt.Printf("Transport cost: RM%.2f\n", tx.TransportCost)
	fmt.Printf("Total cost:     RM%.2f\n", tx.TotalCost)
	fmt.Printf("Created:        %s\n", tx.CreatedAt)
	return nil
}

func init() {
	f := txCreateCmd.Flags()
	f.IntVar(&txReq.SupplierID, "supplier", 0, "supplier id")
	f.IntVar(&txReq.RetailerID, "retailer", 0, "retailer id")
	f.IntVar(&txReq.ProductID, "product", 0, "product id")
	f.IntVar(&txReq.TransporterID, "transporter", 0, "transporter id")
	f.IntVar(&txReq.Quantity, "quantity", 0, "units to order")
	f.StringVar(&txReq.OrderType, "order-type", "", "Regular or Seasonal (default Regular)")
	for _, name := range []string{"supplier", "retailer", "product", "transporter", "quantity"} {
		_ = txCreateCmd.MarkFlagRequired(name)
	}
	txListCmd.Flags().StringVar(&txStatus, "status", "", "filter by status: Pending, Completed or Failed")
	txCmd.AddCommand(txCreateCmd, txListCmd, txShowCmd)
}

// ── report / simulate ────────────────────────────────────────────────────────

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show the distribution report",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		rep, err := c.Report(context.Background())
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(rep)
		}
		fmt.Printf("Completed:     %d\n", rep.Completed)
		fmt.Printf("Failed:        %d\n", rep.Failed)
		fmt.Printf("Total revenue: RM%.2f\n\n", rep.TotalRevenue)
		w := newTable()
		fmt.Fprintln(w, "PRODUCT\tNAME\tQUANTITY")
		for _, p := range rep.Products {
			fmt.Fprintf(w, "%d\t%s\t%d\n", p.ProductID, p.Name, p.Quantity)
		}
		return w.Flush()
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the seasonal demand simulation",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.RunSeasonal(context.Background(), nil)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}
		w := newTable()
		fmt.Fprintln(w, "ID\tRETAILER\tPRODUCT\tQTY\tTOTAL\tSTATUS")
		for _, tx := range res.Transactions {
			fmt.Fprintf(w, "%d\t%d\t%d\t%d\tRM%.2f\t%s\n",
				tx.ID, tx.RetailerID, tx.ProductID, tx.Quantity, tx.TotalCost, tx.Status)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		for _, e := range res.Errors {
			fmt.Printf("skipped: %s\n", e)
		}
		return nil
	},
}

// ── route / inventory ────────────────────────────────────────────────────────

var routeReq client.RouteRequest

var routeCmd = &cobra.Command{
	Use:   "route",
	Short: "Plan a nearest-neighbour delivery loop from a supplier",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		plan, err := c.OptimizeRoute(context.Background(), routeReq)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(plan)
		}
		fmt.Printf("Supplier:       %d\n", plan.SupplierID)
		fmt.Printf("Route:          %s\n", joinInts(plan.Route))
		fmt.Printf("Distance:       %.2f km\n", plan.TotalDistanceKm)
		fmt.Printf("Transporter:    %d\n", plan.TransporterID)
		fmt.Printf("Transport cost: RM%.2f\n", plan.TransportCost)
		return nil
	},
}

var inventoryConfirm bool

var inventoryCmd = &cobra.Command{
	Use:   "inventory <product-id>",
	Short: "Plan a proportional stock allocation for a product",
	Long: `Plan a proportional stock allocation across retailers from completed
transaction history. The plan is advisory; pass --confirm to record it on the
ledger. No stock is moved either way.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q", args[0])
		}
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.OptimizeInventory(context.Background(), id, inventoryConfirm)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}
		p := res.Plan
		fmt.Printf("Product: %d %s  stock %d  demand %d\n\n", p.ProductID, p.ProductName, p.Stock, p.TotalDemand)
		w := newTable()
		fmt.Fprintln(w, "RETAILER\tNAME\tDEMAND\tUNITS")
		for _, a := range p.Allocations {
			fmt.Fprintf(w, "%d\t%s\t%d\t%d\n", a.RetailerID, a.RetailerName, a.HistoricalDemand, a.Units)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("\nBaseline holding cost:  RM%.2f\n", p.BaselineHoldingCost)
		fmt.Printf("Optimized holding cost: RM%.2f\n", p.OptimizedHoldingCost)
		fmt.Printf("Savings:                RM%.2f\n", p.Savings)
		if res.Recorded {
			fmt.Printf("Recorded in ledger block %d\n", res.Block.Index)
		}
		return nil
	},
}

func init() {
	f := routeCmd.Flags()
	f.IntVar(&routeReq.SupplierID, "supplier", 0, "starting supplier id")
	f.IntVar(&routeReq.TransporterID, "transporter", 0, "transporter pricing the loop")
	f.IntSliceVar(&routeReq.RetailerIDs, "retailers", nil, "retailer ids to visit (default all)")
	_ = routeCmd.MarkFlagRequired("supplier")
	_ = routeCmd.MarkFlagRequired("transporter")
	inventoryCmd.Flags().BoolVar(&inventoryConfirm, "confirm", false, "record the plan on the ledger")
}

// ── ledger ───────────────────────────────────────────────────────────────────

var ledgerCmd = &cobra.Command{Use: "ledger", Short: "Inspect the audit ledger"}

var ledgerShowCmd = &cobra.Command{
	Use:   "show [index]",
	Short: "Print every block, or one block by index",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		ctx := context.Background()
		var blocks []client.Block
		if len(args) == 1 {
			idx, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid block index %q", args[0])
			}
			b, err := c.LedgerEntry(ctx, idx)
			if err != nil {
				return err
			}
			blocks = []client.Block{*b}
		} else if blocks, err = c.LedgerBlocks(ctx); err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(blocks)
		}
		for _, b := range blocks {
			fmt.Printf("Block %d  %s\n  hash: %s\n  prev: %s\n  %s\n\n", b.Index, b.Timestamp, b.Hash, b.PrevHash, b.Payload)
		}
		return nil
	},
}

var ledgerAudit bool

var ledgerVerifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the ledger's hash chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := newClient()
		if err != nil {
			return err
		}
		res, err := c.VerifyLedger(context.Background(), ledgerAudit)
		if err != nil {
			return err
		}
		if jsonOutput {
			return printJSON(res)
		}
		if !res.Valid {
			return fmt.Errorf("ledger invalid: %s", res.Error)
		}
		fmt.Println("ledger valid")
		return nil
	},
}

func init() {
	ledgerVerifyCmd.Flags().BoolVar(&ledgerAudit, "audit", false, "also recompute every block hash")
	ledgerCmd.AddCommand(ledgerShowCmd, ledgerVerifyCmd)
}

// ── system ───────────────────────────────────────────────────────────────────

var systemCmd = &cobra.Command{Use: "system", Short: "Save, load or reset the server state"}

func systemAction(use, short string, call func(*client.Client, context.Context) (*client.SystemStatus, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := newClient()
			if err != nil {
				return err
			}
			st, err := call(c, context.Background())
			if err != nil {
				return err
			}
			if jsonOutput {
				return printJSON(st)
			}
			fmt.Printf("%s: %d ledger entries, root %s\n", st.Status, st.Entries, st.Root)
			return nil
		},
	}
}

func init() {
	systemCmd.AddCommand(
		systemAction("save", "Write all state to the data directory", (*client.Client).SaveSystem),
		systemAction("load", "Reload state from the data directory", (*client.Client).LoadSystem),
		systemAction("reset", "Discard all state and reseed", (*client.Client).ResetSystem),
	)
}

// ── token ────────────────────────────────────────────────────────────────────

var (
	tokenSecret   string
	tokenOperator string
	tokenTTL      time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint an operator token for mutating API calls",
	Long: `Mint an operator token signed with the server's auth secret.

  agro token --secret "$AUTH_SECRET" --operator alice

Store the output as 'token' in ~/.agro/config.yaml or pass it with --token.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tokenSecret == "" {
			return errors.New("--secret is required")
		}
		signed, err := auth.NewTokenIssuer(tokenSecret, tokenTTL).Issue(tokenOperator)
		if err != nil {
			return err
		}
		fmt.Println(signed)
		return nil
	},
}

func init() {
	tokenCmd.Flags().StringVar(&tokenSecret, "secret", "", "auth secret configured on the server")
	tokenCmd.Flags().StringVar(&tokenOperator, "operator", "operator", "operator name recorded in the token")
	tokenCmd.Flags().DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
}
