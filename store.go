package goPin

import (
	"context"
	"sync"
)

// MemoryAttemptStore is an in-process [AttemptStore]. It is the default when
// no durable store is configured and the standard test double.
type MemoryAttemptStore struct {
	mu     sync.Mutex
	record *AttemptRecord
}

// NewMemoryAttemptStore describes the newmemoryattemptstore operation and its observable behavior.
//
// NewMemoryAttemptStore may return an error when input validation, dependency calls, or security checks fail.
// NewMemoryAttemptStore does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func NewMemoryAttemptStore() *MemoryAttemptStore {
	return &MemoryAttemptStore{}
}

// Load describes the load operation and its observable behavior.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
// Load does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryAttemptStore) Load(_ context.Context) (*AttemptRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone(), nil
}

// Save describes the save operation and its observable behavior.
//
// Save may return an error when input validation, dependency calls, or security checks fail.
// Save does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryAttemptStore) Save(_ context.Context, record *AttemptRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = record.Clone()
	return nil
}

// Clear describes the clear operation and its observable behavior.
//
// Clear may return an error when input validation, dependency calls, or security checks fail.
// Clear does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *MemoryAttemptStore) Clear(_ context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record = nil
	return nil
}
