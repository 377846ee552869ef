// Package rules evaluates proposed transactions against an ordered set of
// validators before they are allowed to settle.
package rules

import "github.com/agrodist/agrodist/internal/distribution/model"

// Lookup resolves the entities a validator may need beyond the transaction
// itself. *registry.Registry satisfies it.
type Lookup interface {
	Product(id int) (model.Product, error)
	Transporter(id int) (model.Transporter, error)
}

// Validator is a single settlement rule. Implementations hold no
// per-transaction state.
type Validator interface {
	// Validate reports whether tx satisfies the rule.
	Validate(tx *model.Transaction, lookup Lookup) bool

	// Describe returns the text recorded as the failure reason.
	Describe() string
}

// Engine runs validators in order and stops at the first rejection.
type Engine struct {
	lookup     Lookup
	validators []Validator
}

// NewEngine returns an Engine that evaluates validators in the given order.
func NewEngine(lookup Lookup, validators ...Validator) *Engine {
	return &Engine{lookup: lookup, validators: validators}
}

// CheckAll evaluates every validator in order. On the first failing
// validator it returns false and that validator's description.
func (e *Engine) CheckAll(tx *model.Transaction) (bool, string) {
	for _, v := range e.validators {
		if !v.Validate(tx, e.lookup) {
			return false, v.Describe()
		}
	}
	return true, ""
}

// Describe lists the active rules in evaluation order.
func (e *Engine) Describe() []string {
	out := make([]string, len(e.validators))
	for i, v := range e.validators {
		out[i] = v.Describe()
	}
	return out
}
