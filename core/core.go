package core

// Version is the PPM release version.
var Version = "0.1.0"

// GitSHA is set at build time via -ldflags.
var GitSHA = "0000000"
