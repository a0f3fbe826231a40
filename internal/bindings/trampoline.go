package bindings

import "unsafe"

// The functions below are the Go half of the five Ipopt evaluation
// callbacks. The cgo exports forward to them after casting C pointers, and
// in-memory engines call them directly. Each one resolves the user-data
// token, reports value requests to an InvocationCounter, checks every
// engine-supplied length against the registered Dims and only then builds
// slices over the raw buffers.

// EvalF evaluates the objective into *obj.
func EvalF(ud UserData, n int32, x *float64, newX bool, obj *float64) bool {
	e, ok := lookup(ud)
	if !ok {
		return false
	}
	invoked(e, CallObjective)
	if n != e.dims.N || obj == nil {
		return false
	}
	xs, ok := view(x, n)
	if !ok {
		return false
	}
	v, ok := e.ev.Objective(xs, newX)
	if !ok {
		return false
	}
	*obj = v
	return true
}

// EvalGradF evaluates the objective gradient into grad[0:n].
func EvalGradF(ud UserData, n int32, x *float64, newX bool, grad *float64) bool {
	e, ok := lookup(ud)
	if !ok {
		return false
	}
	invoked(e, CallGradient)
	if n != e.dims.N {
		return false
	}
	xs, ok := view(x, n)
	if !ok {
		return false
	}
	gs, ok := view(grad, n)
	if !ok {
		return false
	}
	return e.ev.Gradient(xs, newX, gs)
}

// EvalG evaluates the constraints into g[0:m].
func EvalG(ud UserData, n int32, x *float64, newX bool, m int32, g *float64) bool {
	e, ok := lookup(ud)
	if !ok {
		return false
	}
	invoked(e, CallConstraints)
	if n != e.dims.N || m != e.dims.M {
		return false
	}
	xs, ok := view(x, n)
	if !ok {
		return false
	}
	gs, ok := view(g, m)
	if !ok {
		return false
	}
	return e.ev.Constraints(xs, newX, gs)
}

// EvalJacG serves both Jacobian requests. A nil x asks for the sparsity
// pattern in iRow/jCol; otherwise values receives the non-zeros.
func EvalJacG(ud UserData, n int32, x *float64, newX bool, m, nele int32, iRow, jCol *int32, values *float64) bool {
	e, ok := lookup(ud)
	if !ok {
		return false
	}
	if x != nil {
		invoked(e, CallJacobian)
	}
	if n != e.dims.N || m != e.dims.M || nele != e.dims.NNZJac {
		return false
	}
	if x == nil {
		rows, cols, ok := pattern(iRow, jCol, nele)
		if !ok {
			return false
		}
		return e.ev.Jacobian(SparsityQuery{N: n, M: m, Rows: rows, Cols: cols})
	}
	xs, ok := view(x, n)
	if !ok {
		return false
	}
	vs, ok := view(values, nele)
	if !ok {
		return false
	}
	return e.ev.Jacobian(ValueEvaluation{X: xs, NewX: newX, M: m, Values: vs})
}

// EvalH serves both Hessian requests. A nil x asks for the lower-triangular
// sparsity pattern; otherwise values receives
// objFactor*∇²f(x) + Σ lambda[i]*∇²g_i(x).
func EvalH(ud UserData, n int32, x *float64, newX bool, objFactor float64, m int32, lambda *float64, newLambda bool, nele int32, iRow, jCol *int32, values *float64) bool {
	e, ok := lookup(ud)
	if !ok {
		return false
	}
	if x != nil {
		invoked(e, CallHessian)
	}
	if n != e.dims.N || m != e.dims.M || nele != e.dims.NNZHessian {
		return false
	}
	if x == nil {
		rows, cols, ok := pattern(iRow, jCol, nele)
		if !ok {
			return false
		}
		return e.ev.Hessian(SparsityQuery{N: n, M: m, Rows: rows, Cols: cols})
	}
	xs, ok := view(x, n)
	if !ok {
		return false
	}
	ls, ok := view(lambda, m)
	if !ok {
		return false
	}
	vs, ok := view(values, nele)
	if !ok {
		return false
	}
	return e.ev.Hessian(ValueEvaluation{
		X:         xs,
		NewX:      newX,
		M:         m,
		ObjFactor: objFactor,
		Lambda:    ls,
		NewLambda: newLambda,
		Values:    vs,
	})
}

func invoked(e entry, c Callback) {
	if ic, ok := e.ev.(InvocationCounter); ok {
		ic.Invoked(c)
	}
}

// view returns a length-checked slice over p. A nil p is only acceptable
// for an empty view.
func view[T float64 | int32](p *T, n int32) ([]T, bool) {
	switch {
	case n < 0:
		return nil, false
	case n == 0:
		return []T{}, true
	case p == nil:
		return nil, false
	}
	return unsafe.Slice(p, int(n)), true
}

func pattern(iRow, jCol *int32, nele int32) ([]int32, []int32, bool) {
	rows, ok := view(iRow, nele)
	if !ok {
		return nil, nil, false
	}
	cols, ok := view(jCol, nele)
	if !ok {
		return nil, nil, false
	}
	return rows, cols, true
}
