// Package mocks provides hand-written test doubles for the store, auth and
// mail interfaces. Each mock has a working in-memory default and optional
// function fields that override individual methods.
package mocks
