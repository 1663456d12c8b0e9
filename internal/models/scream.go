package models

// Scream represents a user-authored post. LikeCount and CommentCount are
// denormalized aggregates kept in sync with the likes and comments
// collections; they always start at zero.
type Scream struct {
	ID           string `json:"screamId" bson:"_id,omitempty"`
	UserHandle   string `json:"userHandle" bson:"userHandle"`
	UserImage    string `json:"userImage" bson:"userImage"`
	Body         string `json:"body" bson:"body"`
	CreatedAt    string `json:"createdAt" bson:"createdAt"`
	LikeCount    int    `json:"likeCount" bson:"likeCount"`
	CommentCount int    `json:"commentCount" bson:"commentCount"`
}

// CreateScreamRequest defines the request body for posting a new scream
type CreateScreamRequest struct {
	Body string `json:"body" validate:"required"`
}

// ScreamDetail is the response shape for fetching a single scream along
// with its comments.
type ScreamDetail struct {
	ScreamID   string    `json:"screamId"`
	UserHandle string    `json:"userHandle"`
	Body       string    `json:"body"`
	CreatedAt  string    `json:"createdAt"`
	Comments   []Comment `json:"comments"`
}
