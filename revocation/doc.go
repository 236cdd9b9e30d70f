// Package revocation tracks licenses that must be rejected before their signed
// expiry, for example after a refund or a leaked key.
//
// Entries carry their own lifetime: once the revocation window ends the entry
// disappears, so the list never grows beyond the set of currently revoked ids.
package revocation
