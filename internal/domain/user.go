package domain

// User is an authenticated principal as known to the credential store.
type User struct {
	ID       string
	Username string
}
