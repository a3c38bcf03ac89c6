// Package reconcile joins development-right transactions to the parcel master,
// repairs renumbered APNs through parcel history, and derives the land
// sensitivity and town center transition fields of each transfer.
//
// Everything in this package is pure: lookups are built once, then applied in
// a separate pass, and no input slice is modified.
package reconcile
