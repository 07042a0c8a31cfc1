package domain

import (
	"errors"
	"time"
)

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const DefaultCreditScore = 100

var ErrUserNotFound = errors.New("user not found")
var ErrDuplicateUser = errors.New("user already exists")
var ErrBadCredential = errors.New("invalid credentials")
var ErrInvalidToken = errors.New("invalid or expired token")

// User models a registered account. Username, email and student id are each
// globally unique.
type User struct {
	ID           string    `json:"id" bson:"_id,omitempty"`
	Username     string    `json:"username" bson:"username"`
	Email        string    `json:"email" bson:"email"`
	PasswordHash string    `json:"-" bson:"password"`
	Name         string    `json:"name,omitempty" bson:"name,omitempty"`
	StudentID    string    `json:"student_id,omitempty" bson:"student_id,omitempty"`
	Avatar       string    `json:"avatar,omitempty" bson:"avatar,omitempty"`
	Bio          string    `json:"bio,omitempty" bson:"bio,omitempty"`
	Location     string    `json:"location,omitempty" bson:"location,omitempty"`
	Phone        string    `json:"phone,omitempty" bson:"phone,omitempty"`
	Role         string    `json:"role" bson:"role"`
	CreditScore  int       `json:"credit_score" bson:"credit_score"`
	TradeCount   int       `json:"trade_count" bson:"trade_count"`
	Interests    []string  `json:"interests,omitempty" bson:"interests,omitempty"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
	LastLogin    time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
}

// UserSnapshot is the denormalized copy of a user embedded in items and orders.
// It is frozen at creation time and never resynchronized with later profile edits.
type UserSnapshot struct {
	ID     string `json:"id" bson:"id"`
	Name   string `json:"name" bson:"name"`
	Avatar string `json:"avatar,omitempty" bson:"avatar,omitempty"`
}

// Snapshot captures the embeddable view of the user.
func (u *User) Snapshot() UserSnapshot {
	name := u.Name
	if name == "" {
		name = u.Username
	}
	return UserSnapshot{ID: u.ID, Name: name, Avatar: u.Avatar}
}
