package interp

import "github.com/cognitedata/kuiper/internal/jsonvalue"

// Env is the evaluator's environment: a growable stack of values indexed by
// the flat slot numbers the compiler assigned. Per spec.md §9 DESIGN NOTES,
// entering a lambda pushes its argument values and leaving pops them; no
// closures exist beyond this lexical stack.
type Env struct {
	slots []jsonvalue.Value
}

// NewEnv seeds the environment with the top-level input values, occupying
// slots 0..len(inputs)-1.
func NewEnv(inputs []jsonvalue.Value) *Env {
	slots := make([]jsonvalue.Value, len(inputs))
	copy(slots, inputs)
	return &Env{slots: slots}
}

func (e *Env) Get(slot int) (jsonvalue.Value, bool) {
	if slot < 0 || slot >= len(e.slots) {
		return jsonvalue.Value{}, false
	}
	return e.slots[slot], true
}

// Push appends values, returning the mark to Pop back to.
func (e *Env) Push(vals ...jsonvalue.Value) int {
	mark := len(e.slots)
	e.slots = append(e.slots, vals...)
	return mark
}

func (e *Env) Pop(mark int) { e.slots = e.slots[:mark] }
