// Package service contains the application use cases of the Monte Sion API:
// account management and prayer request submission.
//
// Services orchestrate domain objects and the repositories defined in
// internal/store. They own transaction boundaries (store.RunInTransaction),
// and they decide which failures surface to the caller and which are only
// logged, such as a prayer confirmation email that could not be delivered.
//
// Services depend on interfaces only: stores, the auth.JWTService and
// auth.PasswordHasher, and mail.Sender. The concrete PostgreSQL, bcrypt,
// JWT and SMTP implementations are wired in cmd/server.
package service
