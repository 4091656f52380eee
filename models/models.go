package models

import "time"

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Active       bool      `json:"-"`
	CreatedAt    time.Time `json:"-"`
}

type Note struct {
	ID        int64     `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	OwnerID   int64     `json:"owner_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NoteUpdate carries a partial update; nil fields keep their stored value.
type NoteUpdate struct {
	Title   *string
	Content *string
}

// UserOut is the public view of a User.
type UserOut struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
}

func (u *User) Out() UserOut {
	return UserOut{ID: u.ID, Email: u.Email}
}

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
