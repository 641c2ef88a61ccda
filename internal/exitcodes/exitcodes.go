package exitcodes

// Exit codes for dupesweep
// These codes form the operational contract with scripts and operators
const (
	Success         = 0 // Successful execution (with or without deletions)
	InvalidConfig   = 2 // Configuration or root path invalid or missing
	SafetyViolation = 3 // Safety validator blocked an operation
	RuntimeError    = 4 // Runtime error during execution
)
