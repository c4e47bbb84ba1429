// Package config loads typed configuration structs from environment
// variables, with optional .env file support and per-type caching.
//
// Every component of the engine (channel providers, storage backends,
// the retry policy) declares its own small config struct with env tags
// and loads it through config.Load, so configuration stays close to the
// code that consumes it.
package config
