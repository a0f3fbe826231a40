package ipopt

import "github.com/hsiuhsiu/ipopt-go/internal/bindings"

var (
	Version        = "v0.0.0-in-progress"
	UpstreamPinned = "3.14"
)

// WrapperVersion returns the semantic version populated at build time via
// ldflags. In development it defaults to v0.0.0-in-progress.
func WrapperVersion() string {
	return Version
}

// UpstreamVersion returns the version reported by the linked Ipopt library if
// available; otherwise it falls back to the pinned upstream release.
func UpstreamVersion() string {
	if v := bindings.Version(); v != "" {
		return v
	}
	return UpstreamPinned
}
