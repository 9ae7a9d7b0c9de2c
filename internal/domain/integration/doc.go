// Package integration contains the Integration bounded context.
// This context manages the connection to the external identity provider.
//
// Key concepts:
//   - IdentityProvider: Port interface for the hosted identity provider
//   - Credential: Bearer token presented to the provider, which determines visibility
//   - IdentityRecord: Read-mostly snapshot of an identity at the provider
//   - RoleUpdate: Request to write a role value into an identity's metadata bag
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
