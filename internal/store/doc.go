// Package store provides SQLite-backed record storage for entities.
//
// Each entity is stored in its own table with one column per leaf
// property and a TEXT primary key "id". Records inserted without an id
// receive a UUIDv7, so insertion order and id order agree.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
//
// Migrated entities are recorded in the hades_entities catalog table.
//
// The store runs SQL it is given. It performs no translation of driver
// errors; callers can match them with errors.Is and errors.As.
package store
