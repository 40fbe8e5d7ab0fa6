// Package audit records every archive attempt in a local SQLite database,
// giving operators a durable trail of what was archived, when, from which
// plan, and with what outcome. A retention pruner keeps the database
// bounded by age or record count, optionally on a cron schedule.
package audit
