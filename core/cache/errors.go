package cache

import "errors"

// Package-level error definitions for cache operations.
var (
	// ErrProducerFailed wraps every error returned by a producer passed to
	// GetOrCompute. The original cause is wrapped as well and can be matched
	// with errors.Is.
	ErrProducerFailed = errors.New("producer failed")
	// ErrNilProducer is returned when GetOrCompute misses and no producer
	// was supplied.
	ErrNilProducer = errors.New("nil producer")
	// ErrInvalidCapacity is returned when creating an LRUStore with a
	// capacity less than or equal to zero.
	ErrInvalidCapacity = errors.New("capacity must be greater than zero")
)
