/*
Copyright 2025 Alexandre Mahdhaoui

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/

package httputil

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/alexandremahdhaoui/testenv-vm/internal/util/gracefulshutdown"
)

type contextKey string

// serverNameKey carries the name a server was registered under in Serve.
const serverNameKey contextKey = "server_name"

// ServerNameFromContext returns the name of the server handling the request,
// or an empty string when the context was not created by Serve.
func ServerNameFromContext(ctx context.Context) string {
	name, _ := ctx.Value(serverNameKey).(string)
	return name
}

// Serve runs the given servers until the GracefulShutdown context is
// cancelled, then shuts each of them down. It blocks until cancellation.
func Serve(servers map[string]*http.Server, gs *gracefulshutdown.GracefulShutdown) {
	// 1. Run the servers.
	for name, server := range servers {
		name, server := name, server
		ctx := context.WithValue(gs.Context(), serverNameKey, name)

		// Base context of incoming requests is the GracefulShutdown's context.
		server.BaseContext = func(_ net.Listener) context.Context {
			return ctx
		}

		gs.WaitGroup().Add(1)

		go func() {
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.ErrorContext(ctx, "server error", "name", name, "error", err)

				// Done() must run before Shutdown, which blocks on the wait group.
				gs.WaitGroup().Done()
				gs.Shutdown(1)

				return
			}

			gs.WaitGroup().Done()

			// The server stopped without errors; initiate a graceful shutdown
			// if none was previously initiated.
			gs.Shutdown(0)
		}()
	}

	// 2. Signal that all Add() calls have been made, so the auto-shutdown
	// goroutine may proceed when the context is cancelled.
	gs.Ready()

	// 3. Await context is done.
	<-gs.Context().Done()

	// 4. Gracefully shut down each server.
	for name, server := range servers {
		name, server := name, server

		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
			defer cancel()

			if err := server.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
				slog.Error("error while shutting down server", "name", name, "error", err)

				return
			}

			slog.Info("gracefully shut down server", "name", name)
		}()
	}
}
