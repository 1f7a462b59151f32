package domain

import "errors"

// ErrNotFound referenced course, lesson or bundle does not exist
var ErrNotFound = errors.New("Resource not found")

// ErrInvalidRequest malformed caller input
var ErrInvalidRequest = errors.New("Invalid request")

// ErrUpstream external service failure
var ErrUpstream = errors.New("Upstream service failure")
