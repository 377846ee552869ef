package ledger

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/agrodist/agrodist/internal/record"
)

// blockFields is the number of fields in a persisted block line:
// index|hash|prevHash|timestamp|payload.
const blockFields = 5

// EncodeBlock serialises b as one escaped, pipe-delimited line (no newline).
func EncodeBlock(b Block) string {
	return record.Join(strconv.Itoa(b.Index), b.Hash, b.PrevHash, b.Timestamp, b.Payload)
}

// DecodeBlock parses a line produced by EncodeBlock. Lines written by older
// writers that did not escape '|' inside the payload carry more than five
// fields; the trailing fields are rejoined into the payload.
func DecodeBlock(line string) (Block, error) {
	parts := record.Split(line)
	if len(parts) < blockFields {
		return Block{}, fmt.Errorf("%w: want %d fields, got %d", ErrMalformedRecord, blockFields, len(parts))
	}
	idx, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Block{}, fmt.Errorf("%w: index %q", ErrMalformedRecord, parts[0])
	}
	return Block{
		Index:     idx,
		Hash:      parts[1],
		PrevHash:  parts[2],
		Timestamp: parts[3],
		Payload:   strings.Join(parts[4:], string(record.Delimiter)),
	}, nil
}

// writeBlocks writes one encoded line per block.
func writeBlocks(w io.Writer, blocks []Block) error {
	bw := bufio.NewWriter(w)
	for _, b := range blocks {
		if _, err := bw.WriteString(EncodeBlock(b)); err != nil {
			return err
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// readBlocks decodes every line of r. It returns on the first malformed line.
func readBlocks(r io.Reader) ([]Block, error) {
	var blocks []Block
	err := record.ReadLines(r, func(line string) error {
		b, err := DecodeBlock(line)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return blocks, nil
}
