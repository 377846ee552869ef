package ledger

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"
)

// GenesisPayload is the payload of block 0.
const GenesisPayload = "Genesis Block"

// TimestampLayout formats block timestamps as YYYYMMDD:HH:MM in local time.
const TimestampLayout = "20060102:15:04"

// Block is a single immutable audit record in the ledger.
type Block struct {
	Index     int    `json:"index"`
	Hash      string `json:"hash"`
	PrevHash  string `json:"prev_hash"`
	Timestamp string `json:"timestamp"`
	Payload   string `json:"payload"`
}

// hashBlock computes a deterministic SHA-256 hash over a block's fields.
func hashBlock(b *Block) string {
	h := sha256.New()
	fmt.Fprintf(h, "%d|%s|%s|%s", b.Index, b.PrevHash, b.Timestamp, b.Payload)
	return hex.EncodeToString(h.Sum(nil))
}

func newBlock(index int, prevHash, payload string, now time.Time) *Block {
	b := &Block{
		Index:     index,
		PrevHash:  prevHash,
		Timestamp: now.Local().Format(TimestampLayout),
		Payload:   payload,
	}
	b.Hash = hashBlock(b)
	return b
}

func genesisBlock(now time.Time) *Block {
	return newBlock(0, "", GenesisPayload, now)
}
