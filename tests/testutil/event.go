// Package testutil provides common test utilities for the storefront backend.
package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightcart/backend/internal/domain/shared"
)

// EventSource is the slice of pending events an aggregate exposes.
// Both aggregate roots and recorded slices satisfy it in tests.
type EventSource interface {
	GetDomainEvents() []shared.DomainEvent
}

// EventsOfType filters events down to the given event type.
func EventsOfType(events []shared.DomainEvent, eventType string) []shared.DomainEvent {
	matched := make([]shared.DomainEvent, 0, len(events))
	for _, event := range events {
		if event.EventType() == eventType {
			matched = append(matched, event)
		}
	}
	return matched
}

// FindEvent returns the first event of the given type, nil if absent.
func FindEvent(events []shared.DomainEvent, eventType string) shared.DomainEvent {
	for _, event := range events {
		if event.EventType() == eventType {
			return event
		}
	}
	return nil
}

// AssertEventEmitted asserts the source's pending events include exactly
// one event of the given type and returns it.
func AssertEventEmitted(t *testing.T, source EventSource, eventType string) shared.DomainEvent {
	t.Helper()

	matched := EventsOfType(source.GetDomainEvents(), eventType)
	require.Len(t, matched, 1, "expected exactly one %s event", eventType)
	return matched[0]
}

// AssertNoEventEmitted asserts the source's pending events contain no
// event of the given type.
func AssertNoEventEmitted(t *testing.T, source EventSource, eventType string) {
	t.Helper()

	assert.Nil(t, FindEvent(source.GetDomainEvents(), eventType),
		"expected no %s event", eventType)
}

// WaitForCondition waits for a condition to become true.
// Returns true if the condition was met, false if timeout occurred.
func WaitForCondition(t *testing.T, condition func() bool, timeout, interval time.Duration) bool {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(interval)
	}
	return false
}
