// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package middleware provides HTTP plumbing shared by all handlers.

  - WithLogging: per-request slog line with method, path, status, duration
  - JSONResponse / ErrorResponse: JSON encoding with the standard error shape
  - ParseJSONBody: request body decoding
  - CORS: permissive CORS for the web frontend, allowing the
    X-Session-Token header

Error responses always have the shape {"error": "...", "message": "..."}.
*/
package middleware
