// Package logging provides a minimal logging facade for the ipopt wrapper.
//
// The Logger interface wraps a context-aware subset of structured logging so
// that applications can route solver diagnostics into whatever logging system
// they already run.
//
// # Backends
//
// The default backend is log/slog:
//
//	logger := logging.New(nil) // slog.Default()
//
// A zap backend is available for applications built on go.uber.org/zap:
//
//	zl, _ := zap.NewProduction()
//	logger := logging.NewZap(zl)
//
// NewFileWriter and NewZapCore assemble a zap core that writes to a rotating
// log file, which is what cmd/ipopt-go uses for --log-file.
//
// # What gets logged
//
// Application.Optimize logs one line when a solve starts and one when it
// finishes, both tagged with the run_id of the result. Option application and
// failed evaluations are logged at debug level. Nothing is logged from the
// callback path unless an evaluation fails or panics.
package logging
