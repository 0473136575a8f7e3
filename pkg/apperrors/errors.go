package apperrors

import "errors"

var (
	ErrConflict          = errors.New("conflict")
	ErrMalformedBirth    = errors.New("birth payload missing tags list")
	ErrUnknownType       = errors.New("unknown type id")
	ErrDepthExceeded     = errors.New("node depth exceeds placeholder model range")
	ErrMissingParameter  = errors.New("instance parameter missing for template placeholder")
	ErrMalformedTemplate = errors.New("malformed source path template")
)
