// Package config resolves where the CLI keeps its persisted command
// definitions and how it logs. Values come from the environment through an
// injected getenv function so the resolution can be tested without touching
// the real process environment.
package config
