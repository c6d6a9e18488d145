// Copyright (c) 2026 AvelDev.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db creates the database schema.

CreateSchema is idempotent (IF NOT EXISTS everywhere) and runs at startup
against either supported driver. The DDL is kept to the portable subset of
postgres and sqlite: explicit timestamps bound from Go instead of NOW(),
TEXT instead of JSONB, and $n placeholders throughout the codebase, which
both lib/pq and modernc.org/sqlite accept.

Tables:

  - app_user: accounts with roles
  - poll / poll_option: polls and their ordered restaurant options
  - vote / vote_choice: one vote per (poll, user), choices as rows
  - food_order: one order per (poll, user), money in integer cents
  - proposal: user-suggested options awaiting admin review

All poll children cascade on poll delete; votes, orders, and proposals also
cascade on user delete.
*/
package db
