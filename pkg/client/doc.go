// Package client is the agrodist Go SDK.
//
// It wraps the agrod HTTP API: the entity registries, transaction
// settlement, the route and inventory optimizers, the audit ledger and
// system persistence.
//
// # Connecting
//
//	c, err := client.New("http://localhost:8080",
//	    client.WithBearerToken(os.Getenv("AGRO_TOKEN")),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// A token is only needed for mutating calls, and only when the server was
// started with an auth secret. Mint one with 'agro token --secret ...'.
//
// # Settling a transaction
//
//	tx, err := c.CreateTransaction(ctx, client.TransactionRequest{
//	    SupplierID: 1, RetailerID: 1, ProductID: 1, TransporterID: 1,
//	    Quantity: 100,
//	})
//
// A rule or credit rejection is not an error: tx.Status is "Failed" and
// tx.FailureReason names the rule. Unknown entities and stock shortfalls
// return an *APIError; use IsNotFound to tell them apart.
//
// # Checking the ledger
//
//	res, err := c.VerifyLedger(ctx, true)
//	if err == nil && !res.Valid {
//	    log.Printf("ledger broken: %s", res.Error)
//	}
package client
