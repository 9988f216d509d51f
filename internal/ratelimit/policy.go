package ratelimit

import (
	"net/http"
	"time"
)

// Class groups operations that share default limits.
type Class string

const (
	// ClassRead covers lookups and redirects.
	ClassRead Class = "read"
	// ClassWrite covers create, update and delete.
	ClassWrite Class = "write"
)

// Rule allows at most Max hits per Window.
type Rule struct {
	Window time.Duration
	Max    int64
}

// Policy maps each class to the rules applied when an operation has no override.
type Policy map[Class][]Rule

// DefaultPolicy returns the limits used when nothing else is configured.
func DefaultPolicy() Policy {
	return Policy{
		ClassRead: {
			{Window: time.Minute, Max: 1000},
		},
		ClassWrite: {
			{Window: time.Minute, Max: 30},
			{Window: time.Hour, Max: 500},
		},
	}
}

// ClassForMethod treats safe HTTP methods as reads and everything else as writes.
func ClassForMethod(method string) Class {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return ClassRead
	default:
		return ClassWrite
	}
}
