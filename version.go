package quire

// Version is stamped into published stories as the creator version unless overridden
// with WithAppInfo. Release builds set it with -ldflags.
var Version = "dev"

// AppName is the default creator name.
const AppName = "quire"
