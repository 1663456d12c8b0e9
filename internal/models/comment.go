package models

// Comment represents a comment on a scream. UserImage is a denormalized
// copy of the author's profile image at comment time.
type Comment struct {
	ID         string `json:"-" bson:"_id,omitempty"`
	ScreamID   string `json:"screamId" bson:"screamId"`
	UserHandle string `json:"userHandle" bson:"userHandle"`
	UserImage  string `json:"userImage" bson:"userImage"`
	Body       string `json:"body" bson:"body"`
	CreatedAt  string `json:"createdAt" bson:"createdAt"`
}

// CreateCommentRequest defines the request body for commenting on a scream
type CreateCommentRequest struct {
	Body string `json:"body" validate:"required"`
}

// CommentResponse echoes the new comment along with the scream's updated
// comment count and its unchanged like count.
type CommentResponse struct {
	Comment
	CommentCount int `json:"commentCount"`
	LikeCount    int `json:"likeCount"`
}
