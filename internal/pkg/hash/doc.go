// Package hash provides one-way digests used for backend addressing.
//
// Tenant and user identifiers are never used as raw backend keys: the gateway
// addresses tables and rows by a fixed-output cryptographic digest of the
// identifier, so the backend keyspace carries no recoverable emails or
// origins. The digest must be deterministic across processes and restarts.
package hash
