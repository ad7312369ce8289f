package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Result carries one loaded configuration value together with the fallback
// bookkeeping the caller reports to logs and metrics.
type Result[T any] struct {
	Value           T
	Warnings        []string
	FallbackApplied bool
}

// load reads key from the environment, parses it, and validates the result.
// An unset variable yields the default silently; a bad value yields the
// default with a warning, never an error. The worker must come up even when
// an operator fat-fingers one variable, so configuration loading fails open.
func load[T any](key string, def T, parse func(string) (T, error), validate func(T) error) Result[T] {
	raw := os.Getenv(key)
	if raw == "" {
		return Result[T]{Value: def}
	}
	value, err := parse(raw)
	if err != nil {
		return fallbackResult(key, raw, def, err)
	}
	if validate != nil {
		if err := validate(value); err != nil {
			return fallbackResult(key, raw, def, err)
		}
	}
	return Result[T]{Value: value}
}

func fallbackResult[T any](key, raw string, def T, err error) Result[T] {
	warning := fmt.Sprintf("invalid %s=%q: %v, falling back to default %v", key, raw, err, def)
	return Result[T]{
		Value:           def,
		Warnings:        []string{warning},
		FallbackApplied: true,
	}
}

// String loads a string variable, validating it when validate is non-nil.
func String(key, def string, validate func(string) error) Result[string] {
	return load(key, def, func(s string) (string, error) { return s, nil }, validate)
}

// Int loads an integer variable.
func Int(key string, def int, validate func(int) error) Result[int] {
	return load(key, def, strconv.Atoi, validate)
}

// Duration loads a Go duration string such as "90s" or "5m".
func Duration(key string, def time.Duration, validate func(time.Duration) error) Result[time.Duration] {
	return load(key, def, time.ParseDuration, validate)
}

// Bool loads a boolean variable in any form strconv.ParseBool accepts.
func Bool(key string, def bool) Result[bool] {
	return load(key, def, strconv.ParseBool, nil)
}
