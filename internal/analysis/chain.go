package analysis

import "sort"

// ChainKey returns the context-chain key under which a role's output is
// stored.
func ChainKey(role Role) string {
	return string(role) + "_output"
}

// ContextChain is the append-only record of settled role outputs handed to
// each subsequent specialist. It is immutable: With returns a fresh chain
// and never touches the receiver, so every role in a parallel phase can be
// given the same snapshot with a guarantee that siblings' outputs stay
// invisible to each other.
type ContextChain struct {
	entries map[string]RoleOutput
}

// NewContextChain returns an empty chain.
func NewContextChain() *ContextChain {
	return &ContextChain{entries: map[string]RoleOutput{}}
}

// With returns a new chain extended by the given outputs. The receiver is
// left untouched.
func (c *ContextChain) With(outputs ...RoleOutput) *ContextChain {
	next := make(map[string]RoleOutput, len(c.entries)+len(outputs))
	for k, v := range c.entries {
		next[k] = v
	}
	for _, out := range outputs {
		next[ChainKey(out.Role)] = out
	}
	return &ContextChain{entries: next}
}

// Output returns the recorded output of a role, if any.
func (c *ContextChain) Output(role Role) (RoleOutput, bool) {
	out, ok := c.entries[ChainKey(role)]
	return out, ok
}

// Len returns the number of recorded outputs.
func (c *ContextChain) Len() int {
	return len(c.entries)
}

// Keys returns the chain keys in sorted order.
func (c *ContextChain) Keys() []string {
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
