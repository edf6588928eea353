// Package models defines domain entities and persistence interfaces for the audiobox music service.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs handed to clients
//   - [Track] : Normalized playable track built from a catalog record
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [User] : Accounts with a password hash and a theme preference
//   - [Favorite] : A track id saved by a user
//
// Persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
