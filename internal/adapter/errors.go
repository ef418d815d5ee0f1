package adapter

import "errors"

var (
	ErrBadRequest          = errors.New("mail provider rejected the request")
	ErrUnauthorized        = errors.New("mail provider unauthorized")
	ErrForbidden           = errors.New("mail provider forbidden")
	ErrNotFound            = errors.New("mail provider endpoint not found")
	ErrTooManyRequests     = errors.New("mail provider rate limit exceeded")
	ErrBadGateway          = errors.New("mail provider bad gateway")
	ErrInternalServerError = errors.New("mail provider internal error")

	ErrEmptyAddress   = errors.New("empty address")
	ErrEmptyRecipient = errors.New("email has no recipient")
)
