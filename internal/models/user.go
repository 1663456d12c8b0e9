package models

// User represents a user document. The user's handle doubles as the
// document id in the users collection.
type User struct {
	UserID    string `json:"userId" bson:"userId"`
	Email     string `json:"email" bson:"email"`
	Handle    string `json:"handle" bson:"_id"`
	CreatedAt string `json:"createdAt" bson:"createdAt"`
	ImageURL  string `json:"imageUrl" bson:"imageUrl"`
	Bio       string `json:"bio,omitempty" bson:"bio,omitempty"`
	Website   string `json:"website,omitempty" bson:"website,omitempty"`
	Location  string `json:"location,omitempty" bson:"location,omitempty"`
}

// RegisterRequest defines the request body for user registration
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Handle          string `json:"handle" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" validate:"required,eqfield=Password"`
}

// LoginRequest defines the request body for user login
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// UserDetailsRequest defines the request body for updating user details.
// All fields are optional but at least one must be present.
type UserDetailsRequest struct {
	Bio      string `json:"bio" validate:"omitempty"`
	Website  string `json:"website" validate:"omitempty,url"`
	Location string `json:"location" validate:"omitempty"`
}

// Empty reports whether the request carries no details at all.
func (r UserDetailsRequest) Empty() bool {
	return r.Bio == "" && r.Website == "" && r.Location == ""
}

// UserData is the response shape for the public user profile endpoint.
type UserData struct {
	User    User     `json:"user"`
	Screams []Scream `json:"screams"`
}

// AuthenticatedUserData is the response shape for the logged-in user endpoint.
type AuthenticatedUserData struct {
	Credentials   User           `json:"credentials"`
	Likes         []Like         `json:"likes"`
	Notifications []Notification `json:"notifications"`
}
