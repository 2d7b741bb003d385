// Package notify implements the notification broadcast pipeline: deciding
// who should hear about a domain event, persisting one durable record per
// recipient, and handing the formatted message to the live broadcaster.
// Write-path collaborators enter through Service.Notify (synchronous) or
// Dispatcher.Dispatch (fire-and-forget); neither path can fail the business
// write that produced the event.
package notify
