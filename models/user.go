package models

import "time"

// User is the minimal account document the order/chat cores depend on.
type User struct {
	UserID    string    `json:"userid" bson:"userid"`
	Username  string    `json:"username" bson:"username"`
	Email     string    `json:"email" bson:"email"`
	Password  string    `json:"-" bson:"password"`
	Role      []string  `json:"role" bson:"role"`
	CreatedAt time.Time `json:"createdAt" bson:"createdAt"`
	LastLogin time.Time `json:"lastLogin,omitempty" bson:"last_login,omitempty"`
}

// UserRef is the display-only expansion attached to orders on reads.
type UserRef struct {
	UserID   string `json:"userid" bson:"userid"`
	Username string `json:"username" bson:"username"`
}
