// Package domain contains the core entities of the notification subsystem:
// event types, notification records, and the project audience they fan out
// to. Nothing here depends on storage, transport, or delivery mechanics.
package domain
