// Package app contains the application services: business rules for
// users, events, inbox items and reminders, plus the background
// scheduler that fires due reminders. Services validate input, enforce
// ownership, and push change notifications to live client sessions
// through domain.Notifier.
package app
