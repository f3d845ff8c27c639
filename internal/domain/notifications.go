package domain

// Notification types pushed to live client sessions when server-side
// state changes. Clients use these to refresh views without polling.
const (
	NotifyEventCreated = "event_created"
	NotifyEventUpdated = "event_updated"
	NotifyEventDeleted = "event_deleted"

	NotifyInboxItemCreated = "inbox_item_created"
	NotifyInboxItemUpdated = "inbox_item_updated"
	NotifyInboxItemDeleted = "inbox_item_deleted"

	NotifyReminderTriggered = "reminder_triggered"
)
