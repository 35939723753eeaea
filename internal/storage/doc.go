// Package storage provisions the repository volume and the claim bound to
// it.
//
// The volume is a local PersistentVolume pinned to the nodes matching the
// configured selector; the claim names that volume explicitly so it never
// binds to anything else. Existence checks are retried because the API
// server may not show objects created moments earlier.
package storage
