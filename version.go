package adbot

// Version is the library version, overridable at build time via
// -ldflags "-X github.com/flightdeck/adbot.Version=...".
var Version = "0.1.0"
