package callweave

// Version is the library version, stamped into release builds.
var Version = "0.4.0"
