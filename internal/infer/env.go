package infer

import "github.com/cognitedata/kuiper/internal/types"

// Env mirrors interp.Env but carries Types instead of Values: the same
// flat, append/truncate slot stack indexed by the compiler's resolved
// slot numbers, walked in lockstep with the evaluator's environment since
// both are depth-first traversals of the identical tree shape.
type Env struct {
	slots []types.Type
}

func NewEnv(inputs []types.Type) *Env {
	slots := make([]types.Type, len(inputs))
	copy(slots, inputs)
	return &Env{slots: slots}
}

func (e *Env) Get(slot int) (types.Type, bool) {
	if slot < 0 || slot >= len(e.slots) {
		return types.Type{}, false
	}
	return e.slots[slot], true
}

func (e *Env) Push(vals ...types.Type) int {
	mark := len(e.slots)
	e.slots = append(e.slots, vals...)
	return mark
}

func (e *Env) Pop(mark int) { e.slots = e.slots[:mark] }
