package model

// Notification is a message the transport collaborator should deliver to one
// participant. The engine produces these on joins, starts, and finalizations;
// rendering and delivery are the transport's concern.
type Notification struct {
	Recipient UserID
	Text      string
}
