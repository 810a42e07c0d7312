// Package config loads env-tagged configuration structs with caarlos0/env,
// reading an optional .env file first. Values are parsed once per type and
// cached for the process lifetime.
package config
