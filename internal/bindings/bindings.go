//go:build cgo && ipopt

package bindings

/*
#cgo pkg-config: ipopt
#cgo CFLAGS: -I${SRCDIR} -Wno-unused-function
#include <stdbool.h>
#include <stdint.h>
#include <stdlib.h>
#include "ipopt_wrapper.h"

extern bool ipoptgoEvalF(ipindex, ipnumber*, bool, ipnumber*, UserDataPtr);
extern bool ipoptgoEvalGradF(ipindex, ipnumber*, bool, ipnumber*, UserDataPtr);
extern bool ipoptgoEvalG(ipindex, ipnumber*, bool, ipindex, ipnumber*, UserDataPtr);
extern bool ipoptgoEvalJacG(ipindex, ipnumber*, bool, ipindex, ipindex, ipindex*, ipindex*, ipnumber*, UserDataPtr);
extern bool ipoptgoEvalH(ipindex, ipnumber*, bool, ipnumber, ipindex, ipnumber*, bool, ipindex, ipindex*, ipindex*, ipnumber*, UserDataPtr);

static IpoptProblem ipoptgo_create(ipindex n, ipnumber* x_L, ipnumber* x_U,
		ipindex m, ipnumber* g_L, ipnumber* g_U,
		ipindex nele_jac, ipindex nele_hess, ipindex index_style) {
	return CreateIpoptProblem(n, x_L, x_U, m, g_L, g_U, nele_jac, nele_hess, index_style,
		ipoptgoEvalF, ipoptgoEvalG, ipoptgoEvalGradF, ipoptgoEvalJacG, ipoptgoEvalH);
}

static int ipoptgo_solve(IpoptProblem p, ipnumber* x, ipnumber* g, ipnumber* obj,
		ipnumber* mult_g, ipnumber* mult_x_L, ipnumber* mult_x_U, uintptr_t user_data) {
	return (int)IpoptSolve(p, x, g, obj, mult_g, mult_x_L, mult_x_U, (UserDataPtr)user_data);
}
*/
import "C"

import (
	"fmt"
	"runtime"
	"unsafe"
)

//export ipoptgoEvalF
func ipoptgoEvalF(n C.ipindex, x *C.ipnumber, newX C.bool, obj *C.ipnumber, ud C.UserDataPtr) C.bool {
	return C.bool(EvalF(token(ud), int32(n), num(x), bool(newX), num(obj)))
}

//export ipoptgoEvalGradF
func ipoptgoEvalGradF(n C.ipindex, x *C.ipnumber, newX C.bool, grad *C.ipnumber, ud C.UserDataPtr) C.bool {
	return C.bool(EvalGradF(token(ud), int32(n), num(x), bool(newX), num(grad)))
}

//export ipoptgoEvalG
func ipoptgoEvalG(n C.ipindex, x *C.ipnumber, newX C.bool, m C.ipindex, g *C.ipnumber, ud C.UserDataPtr) C.bool {
	return C.bool(EvalG(token(ud), int32(n), num(x), bool(newX), int32(m), num(g)))
}

//export ipoptgoEvalJacG
func ipoptgoEvalJacG(n C.ipindex, x *C.ipnumber, newX C.bool, m, nele C.ipindex, iRow, jCol *C.ipindex, values *C.ipnumber, ud C.UserDataPtr) C.bool {
	return C.bool(EvalJacG(token(ud), int32(n), num(x), bool(newX), int32(m), int32(nele), idx(iRow), idx(jCol), num(values)))
}

//export ipoptgoEvalH
func ipoptgoEvalH(n C.ipindex, x *C.ipnumber, newX C.bool, objFactor C.ipnumber, m C.ipindex, lambda *C.ipnumber, newLambda C.bool, nele C.ipindex, iRow, jCol *C.ipindex, values *C.ipnumber, ud C.UserDataPtr) C.bool {
	return C.bool(EvalH(token(ud), int32(n), num(x), bool(newX), float64(objFactor), int32(m), num(lambda), bool(newLambda), int32(nele), idx(iRow), idx(jCol), num(values)))
}

func token(ud C.UserDataPtr) UserData { return UserData(uintptr(ud)) }

func num(p *C.ipnumber) *float64 { return (*float64)(unsafe.Pointer(p)) }

func idx(p *C.ipindex) *int32 { return (*int32)(unsafe.Pointer(p)) }

// cnum returns a C view of s. Empty slices map to NULL.
func cnum(s []float64) *C.ipnumber {
	if len(s) == 0 {
		return nil
	}
	return (*C.ipnumber)(unsafe.Pointer(&s[0]))
}

type nativeEngine struct{}

// Native returns the engine backed by the linked Ipopt library.
func Native() Engine { return nativeEngine{} }

func (nativeEngine) CreateProblem(d Dims, xL, xU, gL, gU []float64) (NativeProblem, error) {
	if C.sizeof_ipindex != 4 {
		return nil, fmt.Errorf("%w: ipindex is %d bytes, want 4", ErrCreateProblem, C.sizeof_ipindex)
	}
	p := C.ipoptgo_create(
		C.ipindex(d.N), cnum(xL), cnum(xU),
		C.ipindex(d.M), cnum(gL), cnum(gU),
		C.ipindex(d.NNZJac), C.ipindex(d.NNZHessian), C.ipindex(IndexStyle),
	)
	runtime.KeepAlive(xL)
	runtime.KeepAlive(xU)
	runtime.KeepAlive(gL)
	runtime.KeepAlive(gU)
	if p == nil {
		return nil, ErrCreateProblem
	}
	return &nativeProblem{p: p}, nil
}

type nativeProblem struct {
	p C.IpoptProblem
}

func (np *nativeProblem) AddIntOption(name string, value int32) error {
	if np.p == nil {
		return ErrProblemFreed
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	if !bool(C.AddIpoptIntOption(np.p, cName, C.ipindex(value))) {
		return fmt.Errorf("%w: %s", ErrOptionRejected, name)
	}
	return nil
}

func (np *nativeProblem) AddNumOption(name string, value float64) error {
	if np.p == nil {
		return ErrProblemFreed
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	if !bool(C.AddIpoptNumOption(np.p, cName, C.ipnumber(value))) {
		return fmt.Errorf("%w: %s", ErrOptionRejected, name)
	}
	return nil
}

func (np *nativeProblem) AddStrOption(name, value string) error {
	if np.p == nil {
		return ErrProblemFreed
	}
	cName := C.CString(name)
	defer C.free(unsafe.Pointer(cName))
	cValue := C.CString(value)
	defer C.free(unsafe.Pointer(cValue))
	if !bool(C.AddIpoptStrOption(np.p, cName, cValue)) {
		return fmt.Errorf("%w: %s", ErrOptionRejected, name)
	}
	return nil
}

func (np *nativeProblem) SetScaling(objScaling float64, xScaling, gScaling []float64) error {
	if np.p == nil {
		return ErrProblemFreed
	}
	ok := C.SetIpoptProblemScaling(np.p, C.ipnumber(objScaling), cnum(xScaling), cnum(gScaling))
	runtime.KeepAlive(xScaling)
	runtime.KeepAlive(gScaling)
	if !bool(ok) {
		return fmt.Errorf("%w: scaling", ErrOptionRejected)
	}
	return nil
}

func (np *nativeProblem) OpenOutputFile(path string, printLevel int32) error {
	if np.p == nil {
		return ErrProblemFreed
	}
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))
	if !bool(C.OpenIpoptOutputFile(np.p, cPath, C.int(printLevel))) {
		return fmt.Errorf("%w: output file %s", ErrOptionRejected, path)
	}
	return nil
}

func (np *nativeProblem) Solve(x, g []float64, obj *float64, multG, multXL, multXU []float64, ud UserData) int32 {
	if np.p == nil {
		return internalError
	}
	rc := C.ipoptgo_solve(np.p,
		cnum(x), cnum(g), (*C.ipnumber)(unsafe.Pointer(obj)),
		cnum(multG), cnum(multXL), cnum(multXU),
		C.uintptr_t(ud),
	)
	runtime.KeepAlive(x)
	runtime.KeepAlive(g)
	runtime.KeepAlive(multG)
	runtime.KeepAlive(multXL)
	runtime.KeepAlive(multXU)
	return int32(rc)
}

func (np *nativeProblem) Free() {
	if np.p == nil {
		return
	}
	C.FreeIpoptProblem(np.p)
	np.p = nil
}

// internalError mirrors Ipopt's Internal_Error return status.
const internalError = -199

// Version reports the linked Ipopt version as major.minor.release.
func Version() string {
	var major, minor, release C.int
	C.GetIpoptVersion(&major, &minor, &release)
	return fmt.Sprintf("%d.%d.%d", int(major), int(minor), int(release))
}
