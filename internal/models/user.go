package models

// User is a storefront account. Image is the avatar URL stamped onto messages
// client-side.
type User struct {
	ID    int    `db:"id" json:"id"`
	Email string `db:"email" json:"email"`
	Name  string `db:"name" json:"name"`
	Image string `db:"image" json:"image"`
}
