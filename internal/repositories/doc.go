// Package repositories implements the durable backends for the bearer token.
//
// The token is the only state spotboard persists: one key, one string value, no expiry.
// Two interchangeable backends satisfy the same Load/Save/Clear contract:
//   - [TokenRepository] : SQLite (default), table created by [shared.RunMigrations]
//   - [BoltTokenStore] : bbolt, a single bucket holding a single key
//
// Save overwrites any prior value. Load reports absence with ok == false rather than an error.
package repositories
