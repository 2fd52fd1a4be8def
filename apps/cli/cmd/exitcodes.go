package cmd

// Exit codes for reqctl CLI
const (
	// ExitSuccess indicates the request was dispatched and curl exited 0
	ExitSuccess = 0

	// ExitValidationError indicates a flag or configuration error
	// detected before any dispatch
	ExitValidationError = 1

	// Any other exit code is inherited verbatim from the transport
	// binary.
)
