// Package store defines the persistence interfaces for notifications and
// the read-only project view used during recipient resolution. Database
// specifics live behind these interfaces so the notification pipeline never
// depends on a concrete storage technology.
package store
