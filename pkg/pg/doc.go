// Package pg bootstraps the PostgreSQL layer: an env-configured pgx pool
// with connect retries, goose schema migrations, a health probe, and error
// classifiers the stores use to map driver errors to their own sentinels.
package pg
