// Package auth provides password hashing and signed access tokens.
package auth
