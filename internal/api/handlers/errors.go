package handlers

// CheckError is the error body of the check endpoint. It implements
// huma.StatusError so huma writes it with its own status code.
type CheckError struct {
	Status     int    `json:"-"`
	Message    string `json:"error"`
	State      string `json:"state,omitempty"`
	Details    string `json:"details,omitempty"`
	Screenshot string `json:"screenshot,omitempty" doc:"Base64 PNG of the page when the error occurred"`
}

func (e *CheckError) Error() string {
	if e.Details != "" {
		return e.Message + ": " + e.Details
	}
	return e.Message
}

// GetStatus implements huma.StatusError.
func (e *CheckError) GetStatus() int {
	return e.Status
}
