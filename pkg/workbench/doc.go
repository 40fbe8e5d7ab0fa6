// Package workbench is the FossID Workbench API client. Every call is a
// POST of a {group, action, data} envelope to a single endpoint; responses
// carry their payload under "data".
//
// The client pools connections, splits connect and read timeouts, and
// retries transient transport faults (timeouts, connection errors) with
// linear backoff. Deterministic failures — HTTP errors and undecodable
// payloads — are surfaced immediately as typed errors.
package workbench
