package bindings

import "sync"

type entry struct {
	ev   Evaluator
	dims Dims
}

var (
	mu   sync.Mutex
	next UserData = 1
	reg           = map[UserData]entry{}
)

// Register makes ev reachable from the trampolines for the lifetime of one
// solve. The returned token is what the engine passes back on every callback.
// Callers must Release the token once the solve has returned.
func Register(ev Evaluator, d Dims) UserData {
	mu.Lock()
	h := next
	next++
	reg[h] = entry{ev: ev, dims: d}
	mu.Unlock()
	return h
}

// Release drops the registration. Callbacks arriving afterwards fail.
func Release(h UserData) {
	mu.Lock()
	delete(reg, h)
	mu.Unlock()
}

func lookup(h UserData) (entry, bool) {
	mu.Lock()
	e, ok := reg[h]
	mu.Unlock()
	return e, ok
}

// Registered reports how many tokens are currently live.
func Registered() int {
	mu.Lock()
	defer mu.Unlock()
	return len(reg)
}
