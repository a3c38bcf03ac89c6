// Package sources reads the parcel master, the parcel history and the
// development-right transaction feed from CSV and JSON exports.
package sources
