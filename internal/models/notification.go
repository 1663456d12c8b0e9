package models

// Notification types
const (
	NotificationTypeLike    = "like"
	NotificationTypeComment = "comment"
)

// Notification is derived from a like or comment against someone else's
// scream. Its document id matches the id of the originating like or
// comment, so unliking can retract the notification it produced.
// Read only ever transitions false to true.
type Notification struct {
	ID        string `json:"notificationId" bson:"_id,omitempty"`
	Recipient string `json:"recipient" bson:"recipient"`
	Sender    string `json:"sender" bson:"sender"`
	ScreamID  string `json:"screamId" bson:"screamId"`
	Type      string `json:"type" bson:"type"`
	Read      bool   `json:"read" bson:"read"`
	CreatedAt string `json:"createdAt" bson:"createdAt"`
}
