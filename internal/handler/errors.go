// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package handler

import "errors"

// errNoHandlersAreCreated is returned by NewHandlers when no HTTP address is
// configured. Without a listener the server has nothing to serve, so this
// fails the startup.
var errNoHandlersAreCreated = errors.New("no handlers are created")
