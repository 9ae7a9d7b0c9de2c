package account

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAccount(t *testing.T) {
	t.Run("creates unlinked active account with standard role", func(t *testing.T) {
		acct, err := NewAccount("shopper@example.com", "Shopper")

		require.NoError(t, err)
		assert.NotNil(t, acct)
		assert.Equal(t, "shopper@example.com", acct.Email)
		assert.Equal(t, "Shopper", acct.DisplayName)
		assert.Equal(t, RoleStandard, acct.Role)
		assert.True(t, acct.IsActive)
		assert.Nil(t, acct.ExternalID)
		assert.True(t, acct.IsOrphaned())
		assert.False(t, acct.IsLinked())

		events := acct.GetDomainEvents()
		assert.Len(t, events, 1)
		_, ok := events[0].(*AccountCreatedEvent)
		assert.True(t, ok)
	})

	t.Run("normalizes email to lowercase", func(t *testing.T) {
		acct, err := NewAccount("  Shopper@Example.COM ", "Shopper")

		require.NoError(t, err)
		assert.Equal(t, "shopper@example.com", acct.Email)
	})

	t.Run("fails with empty email", func(t *testing.T) {
		_, err := NewAccount("", "Shopper")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be empty")
	})

	t.Run("fails with malformed email", func(t *testing.T) {
		_, err := NewAccount("not-an-email", "Shopper")

		assert.Error(t, err)
		assert.Contains(t, err.Error(), "format is invalid")
	})
}

func TestNewImportedAccount(t *testing.T) {
	t.Run("creates linked account carrying the provider role", func(t *testing.T) {
		acct, err := NewImportedAccount("p-100", "ops@example.com", "Ops", RoleAdministrator)

		require.NoError(t, err)
		require.NotNil(t, acct.ExternalID)
		assert.Equal(t, "p-100", *acct.ExternalID)
		assert.Equal(t, RoleAdministrator, acct.Role)
		assert.True(t, acct.IsLinked())
		assert.False(t, acct.IsOrphaned())
	})

	t.Run("fails with empty external id", func(t *testing.T) {
		_, err := NewImportedAccount("  ", "ops@example.com", "Ops", RoleStandard)

		assert.Error(t, err)
	})

	t.Run("fails with invalid role", func(t *testing.T) {
		_, err := NewImportedAccount("p-100", "ops@example.com", "Ops", Role("superuser"))

		assert.Error(t, err)
	})
}

func TestNormalizeRole(t *testing.T) {
	t.Run("recognizes canonical names case-insensitively", func(t *testing.T) {
		assert.Equal(t, RoleAdministrator, NormalizeRole("administrator"))
		assert.Equal(t, RoleAdministrator, NormalizeRole(" Administrator "))
		assert.Equal(t, RoleStandard, NormalizeRole("standard"))
		assert.Equal(t, RoleStandard, NormalizeRole("STANDARD"))
	})

	t.Run("collapses unrecognized values to standard", func(t *testing.T) {
		assert.Equal(t, RoleStandard, NormalizeRole("admin"))
		assert.Equal(t, RoleStandard, NormalizeRole("superuser"))
		assert.Equal(t, RoleStandard, NormalizeRole(""))
		assert.Equal(t, RoleStandard, NormalizeRole("root"))
	})
}

func TestAccount_LinkIdentity(t *testing.T) {
	t.Run("links an orphaned account", func(t *testing.T) {
		acct, _ := NewAccount("shopper@example.com", "Shopper")
		acct.ClearDomainEvents()

		err := acct.LinkIdentity("p-42")

		require.NoError(t, err)
		require.NotNil(t, acct.ExternalID)
		assert.Equal(t, "p-42", *acct.ExternalID)
		assert.True(t, acct.IsLinked())

		events := acct.GetDomainEvents()
		assert.Len(t, events, 1)
		linked, ok := events[0].(*AccountLinkedEvent)
		require.True(t, ok)
		assert.Equal(t, "p-42", linked.ExternalID)
	})

	t.Run("relinking the same identity is a no-op", func(t *testing.T) {
		acct, _ := NewAccount("shopper@example.com", "Shopper")
		require.NoError(t, acct.LinkIdentity("p-42"))
		version := acct.Version

		err := acct.LinkIdentity("p-42")

		require.NoError(t, err)
		assert.Equal(t, version, acct.Version)
	})

	t.Run("rejects linking to a different identity", func(t *testing.T) {
		acct, _ := NewAccount("shopper@example.com", "Shopper")
		require.NoError(t, acct.LinkIdentity("p-42"))

		err := acct.LinkIdentity("p-43")

		assert.Error(t, err)
		require.NotNil(t, acct.ExternalID)
		assert.Equal(t, "p-42", *acct.ExternalID)
	})

	t.Run("rejects empty external id", func(t *testing.T) {
		acct, _ := NewAccount("shopper@example.com", "Shopper")

		err := acct.LinkIdentity("")

		assert.Error(t, err)
		assert.Nil(t, acct.ExternalID)
	})
}

func TestAccount_ChangeRole(t *testing.T) {
	t.Run("changes role and records both values", func(t *testing.T) {
		acct, _ := NewAccount("ops@example.com", "Ops")
		acct.ClearDomainEvents()

		err := acct.ChangeRole(RoleAdministrator)

		require.NoError(t, err)
		assert.Equal(t, RoleAdministrator, acct.Role)

		events := acct.GetDomainEvents()
		require.Len(t, events, 1)
		changed, ok := events[0].(*AccountRoleChangedEvent)
		require.True(t, ok)
		assert.Equal(t, RoleStandard, changed.PreviousRole)
		assert.Equal(t, RoleAdministrator, changed.NewRole)
	})

	t.Run("same role is a no-op", func(t *testing.T) {
		acct, _ := NewAccount("ops@example.com", "Ops")
		acct.ClearDomainEvents()
		version := acct.Version

		err := acct.ChangeRole(RoleStandard)

		require.NoError(t, err)
		assert.Equal(t, version, acct.Version)
		assert.Empty(t, acct.GetDomainEvents())
	})

	t.Run("rejects invalid role", func(t *testing.T) {
		acct, _ := NewAccount("ops@example.com", "Ops")

		err := acct.ChangeRole(Role("owner"))

		assert.Error(t, err)
		assert.Equal(t, RoleStandard, acct.Role)
	})
}

func TestAccount_DeactivateReactivate(t *testing.T) {
	t.Run("deactivate excludes account from authentication", func(t *testing.T) {
		acct, _ := NewAccount("shopper@example.com", "Shopper")

		err := acct.Deactivate()

		require.NoError(t, err)
		assert.False(t, acct.IsActive)
		assert.False(t, acct.CanAuthenticate())
	})

	t.Run("deactivating twice fails", func(t *testing.T) {
		acct, _ := NewAccount("shopper@example.com", "Shopper")
		require.NoError(t, acct.Deactivate())

		err := acct.Deactivate()

		assert.Error(t, err)
	})

	t.Run("reactivate restores authentication", func(t *testing.T) {
		acct, _ := NewAccount("shopper@example.com", "Shopper")
		require.NoError(t, acct.Deactivate())

		err := acct.Reactivate()

		require.NoError(t, err)
		assert.True(t, acct.CanAuthenticate())
	})

	t.Run("reactivating an active account fails", func(t *testing.T) {
		acct, _ := NewAccount("shopper@example.com", "Shopper")

		err := acct.Reactivate()

		assert.Error(t, err)
	})

	t.Run("soft delete keeps the provider linkage", func(t *testing.T) {
		acct, _ := NewImportedAccount("p-7", "shopper@example.com", "Shopper", RoleStandard)

		require.NoError(t, acct.Deactivate())

		assert.True(t, acct.IsLinked())
	})
}
