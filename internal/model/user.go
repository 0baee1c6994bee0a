package model

// User is the authenticated principal a request acts on behalf of. Identity
// lifecycle (sign-up, sessions, password reset) lives with the external
// identity provider; the server only ever sees a verified token and exposes
// the subject it names.
type User struct {
	ID    string
	Email string
}
