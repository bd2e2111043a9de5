package auth

// Machine-readable error codes, consumed by the UI for
// friendly-message mapping. Unknown codes fall back to the raw
// message.
const (
	CodeWrongPassword  = "wrong-password"
	CodeUserNotFound   = "user-not-found"
	CodeEmailInUse     = "email-already-in-use"
	CodeInvalidEmail   = "invalid-email"
	CodeWeakPassword   = "weak-password"
	CodeSessionExpired = "session-expired"
)

// Error is a coded authentication error.
type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(code, message string) *Error {
	return &Error{Code: code, Message: message}
}

var friendlyMessages = map[string]string{
	CodeWrongPassword:  "Incorrect password. Please try again.",
	CodeUserNotFound:   "No account found with that email.",
	CodeEmailInUse:     "An account with that email already exists.",
	CodeInvalidEmail:   "Please enter a valid email address.",
	CodeWeakPassword:   "Password must be at least 6 characters.",
	CodeSessionExpired: "Your session has expired. Please sign in again.",
}

// FriendlyMessage maps known error codes to user-facing text and
// falls back to the error's own message otherwise.
func FriendlyMessage(err error) string {
	if err == nil {
		return ""
	}
	if ae, ok := err.(*Error); ok {
		if msg, known := friendlyMessages[ae.Code]; known {
			return msg
		}
		return ae.Message
	}
	return err.Error()
}

// CodeOf returns the code of a coded auth error, or "" for other
// errors.
func CodeOf(err error) string {
	if ae, ok := err.(*Error); ok {
		return ae.Code
	}
	return ""
}
