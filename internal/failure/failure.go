// Package failure defines the typed failures returned by the EPG domain
// services. Both kinds carry a human readable message key and structured
// arguments that transports must forward verbatim.
package failure

import "errors"

// BusinessError reports a violated scheduling or registration rule.
type BusinessError struct {
	MessageKey string
	Arguments  []string
}

// Business creates a BusinessError with the given message key and arguments.
func Business(messageKey string, arguments ...string) *BusinessError {
	return &BusinessError{MessageKey: messageKey, Arguments: normalize(arguments)}
}

func (e *BusinessError) Error() string {
	return e.MessageKey
}

// ResourceNotFoundError reports that a referenced channel or program does not exist.
type ResourceNotFoundError struct {
	MessageKey string
	Arguments  []string
}

// NotFound creates a ResourceNotFoundError with the given message key and arguments.
func NotFound(messageKey string, arguments ...string) *ResourceNotFoundError {
	return &ResourceNotFoundError{MessageKey: messageKey, Arguments: normalize(arguments)}
}

func (e *ResourceNotFoundError) Error() string {
	return e.MessageKey
}

// IsBusiness reports whether err wraps a BusinessError.
func IsBusiness(err error) bool {
	var target *BusinessError
	return errors.As(err, &target)
}

// IsNotFound reports whether err wraps a ResourceNotFoundError.
func IsNotFound(err error) bool {
	var target *ResourceNotFoundError
	return errors.As(err, &target)
}

// Details extracts the message key and arguments of a domain failure.
// ok is false for technical errors.
func Details(err error) (messageKey string, arguments []string, ok bool) {
	var business *BusinessError
	if errors.As(err, &business) {
		return business.MessageKey, business.Arguments, true
	}
	var notFound *ResourceNotFoundError
	if errors.As(err, &notFound) {
		return notFound.MessageKey, notFound.Arguments, true
	}
	return "", nil, false
}

func normalize(arguments []string) []string {
	if arguments == nil {
		return []string{}
	}
	return arguments
}
