// Package domain contains the core business entities of the Monte Sion
// backend: member accounts and prayer requests, together with the
// validation rules that apply to them before anything is persisted.
// It is independent of any specific infrastructure or delivery mechanism.
package domain
