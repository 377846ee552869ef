package ledger_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/agrodist/agrodist/internal/ledger"
)

var ctx = context.Background()

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 0, 0, time.Local)
}

func TestNew_genesisBlock(t *testing.T) {
	l := ledger.New(ledger.WithClock(fixedClock))

	n, err := l.Len(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if n != 1 {
		t.Errorf("expected 1 genesis block, got %d", n)
	}

	b, err := l.Get(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if b.Payload != ledger.GenesisPayload {
		t.Errorf("genesis payload: got %q", b.Payload)
	}
	if b.PrevHash != "" {
		t.Errorf("genesis prev hash should be empty, got %q", b.PrevHash)
	}
	if b.Timestamp != "20250314:09:26" {
		t.Errorf("timestamp: got %q", b.Timestamp)
	}
	if len(b.Hash) != 64 {
		t.Errorf("expected a hex sha256 hash, got %q", b.Hash)
	}
}

func TestAppend_chainsCorrectly(t *testing.T) {
	l := ledger.New()

	b1, err := l.Append(ctx, "Added Product | Product ID: 1")
	if err != nil {
		t.Fatal(err)
	}
	b2, err := l.Append(ctx, "Completed Transaction | Transaction ID: 1")
	if err != nil {
		t.Fatal(err)
	}

	if b1.Index != 1 || b2.Index != 2 {
		t.Errorf("indices: got %d, %d", b1.Index, b2.Index)
	}
	if b2.PrevHash != b1.Hash {
		t.Errorf("chain broken: b2.PrevHash=%q, want b1.Hash=%q", b2.PrevHash, b1.Hash)
	}
	genesis, _ := l.Get(ctx, 0)
	if b1.PrevHash != genesis.Hash {
		t.Errorf("b1 must link to genesis")
	}

	n, _ := l.Len(ctx)
	if n != 3 {
		t.Errorf("expected 3 blocks, got %d", n)
	}
}

func TestAppend_hashIsDeterministicPerContent(t *testing.T) {
	a := ledger.New(ledger.WithClock(fixedClock))
	b := ledger.New(ledger.WithClock(fixedClock))
	ba, _ := a.Append(ctx, "same")
	bb, _ := b.Append(ctx, "same")
	if ba.Hash != bb.Hash {
		t.Errorf("identical chains must hash identically")
	}
	bc, _ := a.Append(ctx, "same")
	if bc.Hash == ba.Hash {
		t.Errorf("blocks at different indices must not share a hash")
	}
}

func TestAppend_concurrentAppendsStayLinked(t *testing.T) {
	l := ledger.New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := l.Append(ctx, fmt.Sprintf("entry %d", i)); err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	if err := l.Verify(ctx); err != nil {
		t.Fatalf("Verify after concurrent appends: %v", err)
	}
	n, _ := l.Len(ctx)
	if n != 51 {
		t.Errorf("expected 51 blocks, got %d", n)
	}
}

func TestOnAppend_notifiesObservers(t *testing.T) {
	l := ledger.New()
	var got []int
	l.OnAppend(func(b ledger.Block) { got = append(got, b.Index) })
	_, _ = l.Append(ctx, "one")
	_, _ = l.Append(ctx, "two")
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Errorf("observer saw %v", got)
	}
}

func TestVerify_validAndGenesisOnly(t *testing.T) {
	l := ledger.New()
	if err := l.Verify(ctx); err != nil {
		t.Errorf("Verify() on genesis-only chain should pass: %v", err)
	}
	_, _ = l.Append(ctx, "a")
	_, _ = l.Append(ctx, "b")
	if !ledger.Valid(ctx, l) {
		t.Errorf("Valid() false on intact chain")
	}
}

func TestVerify_detectsTamperedHash(t *testing.T) {
	l := ledger.New()
	_, _ = l.Append(ctx, "a")
	_, _ = l.Append(ctx, "b")

	var buf bytes.Buffer
	if err := l.Persist(&buf); err != nil {
		t.Fatal(err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	blk, err := ledger.DecodeBlock(lines[1])
	if err != nil {
		t.Fatal(err)
	}
	blk.Hash = strings.Repeat("f", 64)
	lines[1] = ledger.EncodeBlock(blk)

	tampered := ledger.New()
	if err := tampered.Restore(strings.NewReader(strings.Join(lines, "\n"))); err != nil {
		t.Fatal(err)
	}
	err = tampered.Verify(ctx)
	var broken *ledger.BrokenLinkError
	if !errors.As(err, &broken) || broken.Index != 2 {
		t.Fatalf("expected broken link at index 2, got %v", err)
	}
	if !errors.Is(err, ledger.ErrChainCorrupt) {
		t.Errorf("broken link must wrap ErrChainCorrupt")
	}
	if ledger.Valid(ctx, tampered) {
		t.Errorf("Valid() must be false")
	}
}

func TestAudit_detectsEditedPayload(t *testing.T) {
	l := ledger.New()
	_, _ = l.Append(ctx, "Completed Transaction | Total Cost: RM565.39")

	var buf bytes.Buffer
	_ = l.Persist(&buf)
	edited := strings.Replace(buf.String(), "565.39", "5.39", 1)

	restored := ledger.New()
	if err := restored.Restore(strings.NewReader(edited)); err != nil {
		t.Fatal(err)
	}
	if err := restored.Verify(ctx); err != nil {
		t.Errorf("linkage is intact, Verify should pass: %v", err)
	}
	if err := ledger.Audit(ctx, restored); !errors.Is(err, ledger.ErrChainCorrupt) {
		t.Errorf("Audit should flag the edited payload, got %v", err)
	}
	if err := ledger.Audit(ctx, l); err != nil {
		t.Errorf("Audit on original chain: %v", err)
	}
}

func TestRoot_returnsLastHash(t *testing.T) {
	l := ledger.New()
	g, _ := l.Get(ctx, 0)
	root, _ := l.Root(ctx)
	if root != g.Hash {
		t.Errorf("Root() on genesis-only: got %q, want %q", root, g.Hash)
	}
	b, _ := l.Append(ctx, "x")
	root, _ = l.Root(ctx)
	if root != b.Hash {
		t.Errorf("Root(): got %q, want %q", root, b.Hash)
	}
}

func TestGet_outOfRange(t *testing.T) {
	l := ledger.New()
	if _, err := l.Get(ctx, 5); err == nil {
		t.Error("expected error for out-of-range index")
	}
	if _, err := l.Get(ctx, -1); err == nil {
		t.Error("expected error for negative index")
	}
}

func TestPersistRestore_roundTrip(t *testing.T) {
	l := ledger.New()
	_, _ = l.Append(ctx, "Added Product | Product ID: 1 | Name: Rice")
	_, _ = l.Append(ctx, "payload with \\ backslash\nand newline")

	var buf bytes.Buffer
	if err := l.Persist(&buf); err != nil {
		t.Fatal(err)
	}

	restored := ledger.New()
	if err := restored.Restore(&buf); err != nil {
		t.Fatal(err)
	}
	want, _ := l.Blocks(ctx)
	got, _ := restored.Blocks(ctx)
	if len(got) != len(want) {
		t.Fatalf("len: got %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("block %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
	if err := restored.Verify(ctx); err != nil {
		t.Errorf("restored chain must verify: %v", err)
	}
}

func TestRestore_malformedKeepsPreviousChain(t *testing.T) {
	l := ledger.New()
	_, _ = l.Append(ctx, "keep me")
	before, _ := l.Blocks(ctx)

	err := l.Restore(strings.NewReader("0|h||20250101:00:00|Genesis Block\nnot-a-block\n"))
	if !errors.Is(err, ledger.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should name the line: %v", err)
	}
	after, _ := l.Blocks(ctx)
	if len(after) != len(before) || after[1].Payload != "keep me" {
		t.Errorf("chain must be unchanged after a failed restore")
	}
}

func TestRestore_badIndex(t *testing.T) {
	l := ledger.New()
	err := l.Restore(strings.NewReader("zero|h||t|p\n"))
	if !errors.Is(err, ledger.ErrMalformedRecord) {
		t.Fatalf("expected ErrMalformedRecord, got %v", err)
	}
}

func TestRestore_emptySourceYieldsGenesis(t *testing.T) {
	l := ledger.New()
	_, _ = l.Append(ctx, "x")
	if err := l.Restore(strings.NewReader("")); err != nil {
		t.Fatal(err)
	}
	n, _ := l.Len(ctx)
	if n != 1 {
		t.Errorf("expected fresh genesis chain, got %d blocks", n)
	}
}

func TestDecodeBlock_legacyUnescapedPayload(t *testing.T) {
	b, err := ledger.DecodeBlock("3|abc|def|20250101:10:00|Completed Transaction | Transaction ID: 1")
	if err != nil {
		t.Fatal(err)
	}
	if b.Payload != "Completed Transaction | Transaction ID: 1" {
		t.Errorf("payload: got %q", b.Payload)
	}
}

func TestSaveLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "blockchain.dat")
	l := ledger.New()
	_, _ = l.Append(ctx, "persist me")
	if err := l.SaveFile(path); err != nil {
		t.Fatal(err)
	}

	loaded := ledger.New()
	if err := loaded.LoadFile(path); err != nil {
		t.Fatal(err)
	}
	root1, _ := l.Root(ctx)
	root2, _ := loaded.Root(ctx)
	if root1 != root2 {
		t.Errorf("roots differ after load: %q vs %q", root1, root2)
	}

	if err := loaded.LoadFile(filepath.Join(t.TempDir(), "missing.dat")); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("expected not-exist error, got %v", err)
	}
}

func TestReset(t *testing.T) {
	l := ledger.New()
	_, _ = l.Append(ctx, "x")
	l.Reset()
	n, _ := l.Len(ctx)
	if n != 1 {
		t.Errorf("expected 1 block after reset, got %d", n)
	}
}

// plainLedger hides the MemoryLedger type so Observe has to wrap it.
type plainLedger struct{ *ledger.MemoryLedger }

func TestObserve(t *testing.T) {
	var seen []int
	record := func(b ledger.Block) { seen = append(seen, b.Index) }

	wrapped := ledger.Observe(plainLedger{ledger.New()}, record)
	if _, ok := wrapped.(plainLedger); ok {
		t.Fatal("expected a wrapping ledger")
	}
	_, _ = wrapped.Append(ctx, "a")
	_, _ = wrapped.Append(ctx, "b")

	ml := ledger.New()
	if got := ledger.Observe(ml, record); got != ml {
		t.Error("memory ledger should be returned unchanged")
	}
	_, _ = ml.Append(ctx, "c")

	if len(seen) != 3 || seen[0] != 1 || seen[1] != 2 || seen[2] != 1 {
		t.Errorf("observed indexes = %v, want [1 2 1]", seen)
	}
}
