// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the EasyFood API server.

EasyFood is a team lunch coordinator: members vote on where to order from,
the poll closes on a deadline (or by admin action), and everyone places a
food order against the winning restaurant until ordering closes.

# Starting the Server

The server requires environment variables or CLI flags for configuration:

	DATABASE_URL=postgres://... SESSION_SALT=... go run .

Or with flags:

	go run . -p 8080 -d "postgres://..." -session-salt "..."

A .env file in the working directory is loaded first if present.

# Configuration

Required settings:

  - DATABASE_URL (-d): PostgreSQL or SQLite connection string
  - SESSION_SALT (-session-salt): Secret for session token HMAC

Optional settings:

  - PORT (-p): Server port (default: 8080)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"
  - ADMIN_EMAIL (-admin-email): Email seeded as the admin account
  - ADMIN_NAME (-admin-name): Display name for the seeded admin

# Architecture

The server uses a handler-based architecture with dependency injection:

  - handlers: HTTP request handlers (polls, voting, orders, proposals, results)
  - router: Route definitions using Go 1.22+ routing
  - middleware: CORS, logging, JSON helpers
  - models: Request/response and domain types
  - auth: Session token generation and validation
  - scheduler: Per-poll auto-close timers
  - watch: Snapshot hub behind the live feed
  - db: Schema creation
  - cliparse: Configuration parsing

On startup the server re-arms auto-close timers for every open poll, so
deadlines survive restarts.

See package documentation for each component.
*/
package main
