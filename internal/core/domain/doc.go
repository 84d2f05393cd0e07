// Package domain defines the persistent entities of the control plane:
// users, secrets and deploy snapshots. These are plain values; persistence
// lives in internal/shell/store.
package domain
