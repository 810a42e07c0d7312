// Package redis connects the go-redis client with retrying startup and a
// health probe. The rate limiter's Redis store runs on the client returned
// here.
package redis
