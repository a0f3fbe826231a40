package ipopt

import "github.com/hsiuhsiu/ipopt-go/internal/bindings"

// Engine creates native problem handles. The default engine is the linked
// Ipopt library; mockengine provides an in-memory replacement.
//
// An engine drives the Problem through the evaluation trampolines in this
// module's internal/bindings package, which code outside the module cannot
// import. Engines are therefore supplied by this module only: the native
// engine and mockengine. WithEngine exists to select between them.
type Engine = bindings.Engine

// NativeProblem is a live problem handle created by an Engine.
type NativeProblem = bindings.NativeProblem

// Dims are the sizes a native problem is created with.
type Dims = bindings.Dims

// UserData is the token an Engine passes back to the callbacks.
type UserData = bindings.UserData
