// Package ws owns the live channel: the websocket endpoint principals
// connect to, the registry mapping each authenticated principal to its one
// live channel, and the best-effort broadcaster that pushes notification
// frames to whoever is connected. Durability lives in the store; a recipient
// without a live channel is silently skipped here.
package ws
