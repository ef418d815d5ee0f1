// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MKhiriev/go-money-keeper/models"
)

// CheckHTTPMethod returns the handler registered as the router's
// MethodNotAllowed handler via [chi.Mux.MethodNotAllowed].
//
// Chi answers 405 Method Not Allowed when a path matches but the method
// does not. That tells a caller probing with the wrong verb that an admin
// or auth route exists, so the request is answered with the same JSON 404
// as an unknown path instead.
//
// The route lookup uses [chi.Mux.Match], so parameterised patterns such as
// /admin/users/{id}/unlock are resolved. A request whose method does match
// is forwarded to the router's normal pipeline.
//
// Usage:
//
//	router := chi.NewRouter()
//	// ... register routes ...
//	router.NotFound(notFound)
//	router.MethodNotAllowed(CheckHTTPMethod(router))
func CheckHTTPMethod(router *chi.Mux) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if router.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
			router.ServeHTTP(w, r)
			return
		}

		notFound(w, r)
	}
}

// notFound writes the JSON 404 body shared by unknown paths and unknown
// methods.
func notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, models.ErrorResponse{Error: "not found", Code: "NOT_FOUND"}, http.StatusNotFound)
}
