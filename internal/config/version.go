package config

// Version is the connector binary version.
// Set at build time via: -ldflags "-X github.com/searchcraftinc/searchcraft-connect/internal/config.Version=<tag>"
// Defaults to "dev" when built without ldflags.
var Version = "dev"
