package entities

import "errors"

// Failure categories. Every one of them is reported and recovered from by the
// control loop; none of them terminates the session.
var (
	ErrInvalidSelector   = errors.New("invalid selector")
	ErrUnknownCommand    = errors.New("unknown command")
	ErrMalformedCommand  = errors.New("malformed command")
	ErrNavigationTimeout = errors.New("navigation timeout")
	ErrActionFailed      = errors.New("action execution failed")
	ErrCaptureFailed     = errors.New("artifact capture failed")

	ErrRelayUnavailable = errors.New("relay unavailable")
	ErrRelaySend        = errors.New("relay send failed")
	ErrRelayRecv        = errors.New("relay receive failed")

	ErrReplyNotJSON       = errors.New("reply is not JSON")
	ErrReplySchemaInvalid = errors.New("reply is not a JSON object")
	ErrUnrecognizedSchema = errors.New("unrecognized reply schema")
)
