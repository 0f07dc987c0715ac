// internal/version/version.go
package version

// Version is stamped at build time with -ldflags "-X pairdp/internal/version.Version=...".
var Version = "dev"
