// Package notify is a multi-channel notification dispatch facade covering
// email, SMS, chat backends, browser pub/sub, and web push.
//
// The Notifier runs every dispatch through the same policy gates —
// deduplication, template rendering, deferral, forced transport routing —
// and reports a uniform Outcome regardless of channel or failure mode. It
// never returns an error and never panics: transports that blow up become
// failed outcomes.
//
// Transports plug in behind small per-channel interfaces (Mailer, Texter,
// Chatter, BrowserPublisher, Pusher) composed by a TransportSender.
// Deferred and force-routed dispatches travel through a QueueGateway as
// DeferredEnvelope jobs; DispatchHandlers returns the worker-side handlers
// that deliver them.
package notify
