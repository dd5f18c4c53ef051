package request

// PrintRequest is the optional body of the print endpoints.
type PrintRequest struct {
	// SkipBridge is set by clients without the print bridge app installed
	SkipBridge bool `json:"skip_bridge"`
}
