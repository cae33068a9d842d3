/*
Package identity provides the default operator and organization
directory for the fuel engine.

PURPOSE:
  The ledger attributes every movement to an operator and bills it to a
  payer. In production these records come from the portal's account
  system; this package carries the station's standing directory so a
  fresh database starts with the people and companies that actually
  fuel at the field.

BILLING:
  Organizations are valid billing targets ("billed_to" on a ledger
  entry). Persons can only be billed for their own transactions - the
  attributor rejects person-to-person billing.

SEE ALSO:
  - fuel/billing.go: Payer resolution rules
  - api/seed.go: Demo data loader that syncs this directory
*/
package identity

import (
	"context"

	"github.com/warp/fuel-engine/fuel"
)

// Defaults returns the station's standing directory: staff operators
// plus the organizations that hold billing accounts.
func Defaults() []fuel.Identity {
	return []fuel.Identity{
		{ID: "op-stefan", Name: "Stefan Keller", Kind: fuel.IdentityPerson},
		{ID: "op-marie", Name: "Marie Dubois", Kind: fuel.IdentityPerson},
		{ID: "op-jonas", Name: "Jonas Weber", Kind: fuel.IdentityPerson},
		{ID: "org-alpine-air", Name: "Alpine Air Charter", Kind: fuel.IdentityOrganization},
		{ID: "org-flight-school", Name: "Mountain Flight School", Kind: fuel.IdentityOrganization},
		{ID: "org-heli-west", Name: "HeliWest Operations", Kind: fuel.IdentityOrganization},
	}
}

// Sync upserts the default directory into the given store. Existing
// records with the same ID are updated, never duplicated.
func Sync(ctx context.Context, dir fuel.IdentityDirectory) error {
	for _, ident := range Defaults() {
		if err := dir.SaveIdentity(ctx, ident); err != nil {
			return err
		}
	}
	return nil
}
