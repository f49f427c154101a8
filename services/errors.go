package services

import "strings"

// ReasonLoginRequired marks conflict errors that should route the customer to
// the login page instead of a dead-end error message.
const ReasonLoginRequired = "login_required"

// ServiceError represents a typed error with an HTTP status code.
type ServiceError struct {
	StatusCode int
	Message    string
	Reason     string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// containsAlreadyRegistered sniffs upstream messages for the duplicate-email
// case, which some backend revisions report as a 400 rather than a 409.
func containsAlreadyRegistered(msg string) bool {
	return strings.Contains(strings.ToLower(msg), "already registered")
}
