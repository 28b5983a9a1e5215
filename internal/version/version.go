package version

// Build information set by ldflags
var (
	Version = "dev"     // Set by goreleaser: -X github.com/ISISComputingGroup/IBEX-device-generator-new/internal/version.Version={{.Version}}
	Commit  = "unknown" // Set by goreleaser: -X github.com/ISISComputingGroup/IBEX-device-generator-new/internal/version.Commit={{.Commit}}
	Date    = "unknown" // Set by goreleaser: -X github.com/ISISComputingGroup/IBEX-device-generator-new/internal/version.Date={{.Date}}
)
