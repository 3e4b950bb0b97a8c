package pipeline

import (
	"errors"
	"fmt"

	"npaicli/internal/mail"
)

// ErrorType classifies a step failure.
type ErrorType string

const (
	// ErrorTypeNotFound covers missing sources or unresolvable schemas.
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeExternal covers collaborator failures such as an
	// unresolvable mailbox. Retry is an operator concern.
	ErrorTypeExternal ErrorType = "external"
	// ErrorTypeExecution covers everything else.
	ErrorTypeExecution ErrorType = "execution"
)

// StepError is a failure of one pipeline step.
type StepError struct {
	Type  ErrorType
	Step  string
	Cause error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("[%s] step %s: %v", e.Type, e.Step, e.Cause)
}

func (e *StepError) Unwrap() error { return e.Cause }

// newStepError wraps a step failure, classifying known causes.
func newStepError(step string, cause error) *StepError {
	typ := ErrorTypeExecution
	var mailboxErr *mail.MailboxError
	if errors.As(cause, &mailboxErr) {
		typ = ErrorTypeExternal
	}
	return &StepError{Type: typ, Step: step, Cause: cause}
}
