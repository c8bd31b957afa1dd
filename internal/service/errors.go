package service

import "errors"

var (
	// Async operation errors
	ErrQueueUnavailable = errors.New("async queue is not configured")
)
