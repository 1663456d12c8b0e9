package models

// Like marks that a user has liked a scream. At most one like exists per
// (screamId, userHandle) pair.
type Like struct {
	ID         string `json:"-" bson:"_id,omitempty"`
	ScreamID   string `json:"screamId" bson:"screamId"`
	UserHandle string `json:"userHandle" bson:"userHandle"`
}
