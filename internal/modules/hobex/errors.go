package hobex

const genericAuthMessage = "hobex authentication failed, please check credentials"

// AuthenticationError is returned by Login. Message is safe to show to an
// operator; the transport cause is kept for logs only.
type AuthenticationError struct {
	Message string
	cause   error
}

func (e *AuthenticationError) Error() string { return e.Message }

func (e *AuthenticationError) Unwrap() error { return e.cause }
