// Package store defines the persistence contracts for accounts and prayer
// requests, the errors every implementation reports, and the transaction
// helper services use to group store calls atomically.
package store
