// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse parses server configuration from CLI flags with
environment-variable fallback.

Required settings:

  - DATABASE_URL (-d): connection string
  - SESSION_SALT (-session-salt): secret for session token HMAC

Optional settings:

  - PORT (-p): server port (default: 8080)
  - DATABASE_TYPE (-t): "postgres" (default) or "sqlite"
  - ADMIN_EMAIL / ADMIN_NAME: seed an admin account at startup

CLI flags take precedence over environment variables. Missing required
settings fail fast at startup.
*/
package cliparse
