// Package logger builds configured slog loggers: JSON or text output,
// environment presets, static attributes, and context extractors that put
// request-scoped values such as the tenant ID on every record.
package logger
