// Package server implements the HTTP server using Echo framework.
//
// Routes: auth (register/login/reset), users, events, inbox, reminders,
// health, metrics, plus the /ws realtime endpoint. Handlers split by
// domain: handlers_auth.go, handlers_events.go, handlers_inbox.go,
// handlers_reminders.go, handlers_ws.go.
package server
