// billing.go - Billing attribution.
//
// Resolves which party is financially responsible for a transaction at
// submission time. The attributor does not move money; it only stamps
// responsibility onto the ledger entry for later invoicing.
package fuel

import "context"

// Attributor resolves payer identities against the identity directory.
type Attributor struct {
	dir IdentityDirectory
}

// NewAttributor creates an attributor over the given directory.
func NewAttributor(dir IdentityDirectory) *Attributor {
	return &Attributor{dir: dir}
}

// ResolvePayer determines the billed-to identity for a transaction.
//
// An absent request, the "self" sentinel, or the operator's own ID all
// mean the operator pays. Anything else must resolve to a known
// organization; a missing identity or a different person is rejected
// with ErrUnknownPayer before any ledger mutation is attempted.
func (a *Attributor) ResolvePayer(ctx context.Context, operatorID, requested IdentityID) (IdentityID, error) {
	if requested == "" || requested == BilledToSelf || requested == operatorID {
		return operatorID, nil
	}

	ident, err := a.dir.GetIdentity(ctx, requested)
	if err != nil {
		return "", err
	}
	if ident == nil || ident.Kind != IdentityOrganization {
		return "", ErrUnknownPayer
	}
	return requested, nil
}
