package core

// DebugWriter is a function type for writing debug messages
type DebugWriter func(string)

var (
	// debugPrintln is the global debug print function (set by platform code)
	debugPrintln DebugWriter = func(s string) {} // No-op by default
)

// SetDebugWriter sets the platform-specific debug output function.
// The host binary points it at stderr; hardware targets can redirect
// it to a spare UART. Operator-facing status lines do not go through
// here, only firmware-internal diagnostics.
func SetDebugWriter(writer DebugWriter) {
	if writer == nil {
		writer = func(string) {}
	}
	debugPrintln = writer
}

// DebugPrintln writes a debug message using the platform-specific writer.
func DebugPrintln(msg string) {
	debugPrintln(msg)
}
