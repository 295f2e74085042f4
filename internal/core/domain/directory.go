package domain

// Admin is a principal allowed to trigger the decode-and-notify action.
// Membership is the whole model: there is no ordering and no self-registration.
type Admin struct {
	Username string `json:"username" bson:"username"`
}

// Link is one entry in the flat catalog of reference links shown to users.
type Link struct {
	ID   string `json:"id,omitempty" bson:"_id,omitempty"`
	Name string `json:"name" bson:"name"`
	URL  string `json:"url" bson:"url"`
}
