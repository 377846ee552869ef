package ledger

import "context"

// observed notifies observers after every successful Append on a Ledger that
// has no native observer support, such as PostgresLedger.
type observed struct {
	Ledger
	observers []func(Block)
}

// Observe returns l with fns called, in order, after each successful append.
// A MemoryLedger registers them directly and is returned unchanged.
func Observe(l Ledger, fns ...func(Block)) Ledger {
	if len(fns) == 0 {
		return l
	}
	if ml, ok := l.(*MemoryLedger); ok {
		for _, fn := range fns {
			ml.OnAppend(fn)
		}
		return ml
	}
	return &observed{Ledger: l, observers: fns}
}

func (o *observed) Append(ctx context.Context, payload string) (*Block, error) {
	b, err := o.Ledger.Append(ctx, payload)
	if err != nil {
		return nil, err
	}
	for _, fn := range o.observers {
		fn(*b)
	}
	return b, nil
}
