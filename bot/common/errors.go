package common

import (
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// GenericErrorMessage is shown for any failure that is not the user's doing
const GenericErrorMessage = "Something went wrong. Please try again later."

// BotError represents a structured error with user-facing and internal messages
type BotError struct {
	UserMessage string // Message shown to the Discord user
	LogMessage  string // Internal message for logging
	Err         error  // Underlying error
	Context     any    // Additional context for logging
	system      bool
}

// Error implements the error interface
func (e *BotError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *BotError) Unwrap() error {
	return e.Err
}

// IsSystem reports whether the error came from infrastructure rather than the user
func (e *BotError) IsSystem() bool {
	return e.system
}

// NewUserError creates an error for user-caused issues
func NewUserError(userMessage string, logMessage string) *BotError {
	return &BotError{
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for system issues (database, cache, unexpected state)
func NewSystemError(err error, logMessage string) *BotError {
	return &BotError{
		UserMessage: GenericErrorMessage,
		LogMessage:  logMessage,
		Err:         err,
		system:      true,
	}
}

// ArgumentErrorKind tells the dispatcher how to answer a bad invocation
type ArgumentErrorKind int

const (
	// ArgumentMissing answers with the command's help
	ArgumentMissing ArgumentErrorKind = iota
	// ArgumentInvalid answers with the error text
	ArgumentInvalid
)

// ArgumentError is returned by handlers when the invocation itself is wrong
type ArgumentError struct {
	Kind    ArgumentErrorKind
	Name    string
	Message string
}

func (e *ArgumentError) Error() string {
	return e.Message
}

// MissingArgument reports a required argument that was not given
func MissingArgument(name string) *ArgumentError {
	return &ArgumentError{
		Kind:    ArgumentMissing,
		Name:    name,
		Message: fmt.Sprintf("%s is a required argument that is missing.", name),
	}
}

// InvalidArgument reports an argument that could not be converted
func InvalidArgument(name, message string) *ArgumentError {
	return &ArgumentError{
		Kind:    ArgumentInvalid,
		Name:    name,
		Message: message,
	}
}

// HandleError logs err and returns the text to show the user, or "" for nothing
func HandleError(c *Context, err error) string {
	fields := log.Fields{
		"user_id":  c.AuthorID(),
		"guild_id": c.GuildID,
		"command":  c.QualifiedName(),
	}

	var botErr *BotError
	if errors.As(err, &botErr) {
		fields["error"] = botErr.Error()
		fields["user_message"] = botErr.UserMessage
		fields["context"] = botErr.Context
		if botErr.system {
			log.WithFields(fields).Error(botErr.LogMessage)
		} else {
			log.WithFields(fields).Debug(botErr.LogMessage)
		}
		return botErr.UserMessage
	}

	fields["error"] = err.Error()
	log.WithFields(fields).Error("Unexpected error in bot command")
	return GenericErrorMessage
}
