package httpserver

import "errors"

var (
	// ErrStart wraps listener bind and serve failures.
	ErrStart = errors.New("http server failed to start")
	// ErrShutdown wraps graceful shutdown failures.
	ErrShutdown = errors.New("http server failed to shut down")
)
