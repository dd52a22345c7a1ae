// Package login drives Instagram's web login form on a leased page.
package login

// State is a step of the login state machine.
type State string

const (
	StateNavigatingToLogin     State = "navigating_to_login"
	StateHandlingCookieConsent State = "handling_cookie_consent"
	StateEnteringCredentials   State = "entering_credentials"
	StateSubmitting            State = "submitting"
	StateAwaitingResult        State = "awaiting_result"

	StateSuccess            State = "success"
	StateChallengeRequired  State = "challenge_required"
	StateInvalidCredentials State = "invalid_credentials"
	StateBlocked            State = "blocked"
	StateVerificationFailed State = "verification_failed"
	StateError              State = "error"
)

// Terminal reports whether s ends the flow.
func (s State) Terminal() bool {
	switch s {
	case StateSuccess, StateChallengeRequired, StateInvalidCredentials,
		StateBlocked, StateVerificationFailed, StateError:
		return true
	}
	return false
}

// Failure reasons surfaced to API callers.
const (
	ReasonIncorrectPassword     = "Incorrect password"
	ReasonSuspiciousLogin       = "Suspicious login attempt blocked"
	ReasonChallengeRequired     = "Challenge required (Help us confirm it's you)"
	ReasonChallengeAutoFailed   = "Challenge timed out (Auto-check failed)"
	ReasonChallengeManualFailed = "Challenge timed out (Manual check failed)"
	ReasonHomeNotFound          = "Login verification failed (Home icon not found)"
	reasonUsernameNotFound      = "Could not find username input field. Page: "
	reasonErrorPrefix           = "Login Error: "
)

// Outcome is the result of a login attempt. Login never returns an error;
// every failure is an Outcome with Success false.
type Outcome struct {
	Success bool   `json:"success"`
	State   State  `json:"state"`
	Reason  string `json:"reason,omitempty"`
}

func succeeded() Outcome {
	return Outcome{Success: true, State: StateSuccess}
}

func failed(state State, reason string) Outcome {
	return Outcome{State: state, Reason: reason}
}

func errored(err error) Outcome {
	return Outcome{State: StateError, Reason: reasonErrorPrefix + err.Error()}
}
