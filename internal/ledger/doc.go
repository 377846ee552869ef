// Package ledger implements the append-only, hash-linked audit log that
// records every state-changing action of the distribution engine.
//
// The chain begins with a genesis block whose payload is "Genesis Block" and
// whose PrevHash is empty. Every subsequent block records the Hash of its
// predecessor. Hashes are SHA-256 digests over the block's other fields, so
// Audit can detect edits to stored payloads; Verify checks linkage only.
//
// Two implementations of the Ledger interface are provided:
//   - MemoryLedger: in-process, persisted to a pipe-delimited flat file.
//   - PostgresLedger: durable, for multi-instance deployments.
package ledger
