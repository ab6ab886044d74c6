package domain

// Actor identifies who sent an inbound update.
type Actor struct {
	ID        int64  `json:"id" mapstructure:"id"`
	Username  string `json:"username,omitempty" mapstructure:"username"`
	FirstName string `json:"first_name,omitempty" mapstructure:"first_name"`
	LastName  string `json:"last_name,omitempty" mapstructure:"last_name"`
}

// User converts the actor into a user record.
func (a Actor) User() User {
	return User{ID: a.ID, Username: a.Username, FirstName: a.FirstName, LastName: a.LastName}
}

// Contact is a structured phone-number payload shared by the user.
type Contact struct {
	PhoneNumber string `json:"phone_number" mapstructure:"phone_number"`
}

// Update is a single inbound event from the chat transport.
// Exactly one of Text, Contact, PhotoRef or Callback is normally set.
type Update struct {
	ID       string   `json:"id,omitempty" mapstructure:"id"`
	Actor    Actor    `json:"actor" mapstructure:"actor"`
	Text     string   `json:"text,omitempty" mapstructure:"text"`
	Contact  *Contact `json:"contact,omitempty" mapstructure:"contact"`
	PhotoRef string   `json:"photo_ref,omitempty" mapstructure:"photo_ref"`
	Callback string   `json:"callback,omitempty" mapstructure:"callback"`
}
