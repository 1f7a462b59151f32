package user

// UserModel identity of the current learner, taken from a verified token
type UserModel struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}
