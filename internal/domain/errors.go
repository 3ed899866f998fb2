package domain

import (
	"errors"
	"strings"
)

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthorized    = errors.New("unauthorized")
	ErrForbidden       = errors.New("forbidden")
	ErrBindingRejected = errors.New("identity not bound to claim subject")
	ErrEncoding        = errors.New("encoding failed")
	ErrSigning         = errors.New("signing failed")
	ErrNotFound        = errors.New("not found")
)

// Credential failures surface to callers with exactly these messages.
var (
	ErrMissingCredential = &AuthError{Reason: "missing credential"}
	ErrInvalidCredential = &AuthError{Reason: "invalid or expired credential"}
)

type AuthError struct {
	Reason string
}

func (e *AuthError) Error() string { return e.Reason }

func (e *AuthError) Unwrap() error { return ErrUnauthorized }

type ValidationReason string

const (
	ReasonMissing ValidationReason = "missing"
	ReasonInvalid ValidationReason = "invalid"
)

type ValidationError struct {
	Reason ValidationReason
	Fields []string
	Detail string
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonMissing:
		return "missing params: " + strings.Join(e.Fields, ", ")
	default:
		msg := "invalid " + strings.Join(e.Fields, ", ")
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		return msg
	}
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

func missingParams(fields ...string) error {
	return &ValidationError{Reason: ReasonMissing, Fields: fields}
}

func invalidParam(field, detail string) error {
	return &ValidationError{Reason: ReasonInvalid, Fields: []string{field}, Detail: detail}
}
