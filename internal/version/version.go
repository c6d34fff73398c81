package version

// Version contains the application version information.
// Set via build-time ldflags in release builds:
// go build -ldflags "-X github.com/orangewallet/orange/internal/version.Version=v1.2.0".
var Version = "unknown"
