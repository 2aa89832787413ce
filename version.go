package sav

// Version is the module version string embedded at build time via
// -ldflags, overriding this default development value. The CLI reports
// it for `sav --version`.
var Version = "dev"
