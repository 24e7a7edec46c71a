package models

import "time"

// Domain models matching the database schema in db/migrations/0001_init.sql

type Account struct {
	UserID       string    `json:"user_id" db:"user_id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Created      time.Time `json:"created" db:"created"`
}

// UserProfile is a user's study-partner card. One row per user_id.
type UserProfile struct {
	UserID      string    `json:"user_id" db:"user_id"`
	Name        string    `json:"name" db:"name"`
	Major       string    `json:"major" db:"major"`
	YearOfStudy int       `json:"year_of_study" db:"year_of_study"`
	Modules     string    `json:"modules" db:"modules"`
	Description string    `json:"description" db:"description"`
	ImageURL    *string   `json:"image_url" db:"image_url"`
	Updated     time.Time `json:"updated" db:"updated"`
}

// Chat is a thread between exactly two users. ParticipantsID is kept in canonical order,
// smaller id first, so one pair always maps to one row.
type Chat struct {
	ChatID         int64     `json:"chat_id" db:"chat_id"`
	ParticipantsID [2]string `json:"participants_id" db:"participants_id"`
	SenderName     string    `json:"sender_name" db:"sender_name"`
	ReceiverName   string    `json:"receiver_name" db:"receiver_name"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

// ChatMessage is one appended message. SenderID holds the sender's display name.
type ChatMessage struct {
	ID        int64     `json:"id" db:"id"`
	ChatID    int64     `json:"chat_id" db:"chat_id"`
	SenderID  string    `json:"sender_id" db:"sender_id"`
	Message   string    `json:"message" db:"message"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// HasParticipant reports whether userID is one of the two participants.
func (c *Chat) HasParticipant(userID string) bool {
	return c.ParticipantsID[0] == userID || c.ParticipantsID[1] == userID
}
