// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides transport-layer abstractions for talking to
// external providers on behalf of the server.
//
// The primary abstraction is [Mailer], which decouples the service layer
// from the outbound email provider. The package ships an HTTP/REST
// implementation ([NewHTTPMailer]) and a logging implementation used when no
// provider is configured.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrTooManyRequests] for 429).
package adapter

import (
	"context"

	"github.com/MKhiriev/go-money-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/mailer_mock.go -package=mock

// Mailer sends a single email. Implementations are responsible for
// serialisation, authentication against the provider and mapping
// transport-level errors to the sentinel values defined in this package.
type Mailer interface {
	Send(ctx context.Context, email models.Email) error
}
