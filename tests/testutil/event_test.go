package testutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brightcart/backend/internal/domain/account"
)

func TestEventsOfType(t *testing.T) {
	acct, err := account.NewAccount("shopper@example.com", "Shopper")
	require.NoError(t, err)
	require.NoError(t, acct.LinkIdentity("ext-1"))

	events := acct.GetDomainEvents()
	assert.Len(t, EventsOfType(events, account.EventTypeAccountCreated), 1)
	assert.Len(t, EventsOfType(events, account.EventTypeAccountLinked), 1)
	assert.Empty(t, EventsOfType(events, account.EventTypeAccountRoleChanged))
}

func TestFindEvent(t *testing.T) {
	acct, err := account.NewAccount("shopper@example.com", "Shopper")
	require.NoError(t, err)

	events := acct.GetDomainEvents()
	assert.NotNil(t, FindEvent(events, account.EventTypeAccountCreated))
	assert.Nil(t, FindEvent(events, account.EventTypeAccountDeactivated))
}

func TestAssertEventEmitted(t *testing.T) {
	acct, err := account.NewAccount("shopper@example.com", "Shopper")
	require.NoError(t, err)

	event := AssertEventEmitted(t, acct, account.EventTypeAccountCreated)
	assert.Equal(t, acct.ID, event.AggregateID())
	assert.Equal(t, account.AggregateTypeAccount, event.AggregateType())

	AssertNoEventEmitted(t, acct, account.EventTypeAccountLinked)
}

func TestWaitForCondition(t *testing.T) {
	t.Run("condition met", func(t *testing.T) {
		counter := 0
		go func() {
			time.Sleep(20 * time.Millisecond)
			counter = 1
		}()

		result := WaitForCondition(t, func() bool {
			return counter == 1
		}, 200*time.Millisecond, 10*time.Millisecond)

		assert.True(t, result)
	})

	t.Run("condition not met within timeout", func(t *testing.T) {
		result := WaitForCondition(t, func() bool {
			return false
		}, 50*time.Millisecond, 10*time.Millisecond)

		assert.False(t, result)
	})
}
