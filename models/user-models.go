package models

import "time"

const (
	DefaultCreditBalance = 10
	DefaultPlanID        = 1
)

type User struct {
	ID            string    `json:"id"`
	ClerkID       string    `json:"clerkId"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	Photo         string    `json:"photo"`
	FirstName     string    `json:"firstName,omitempty"`
	LastName      string    `json:"lastName,omitempty"`
	PlanID        int       `json:"planId"`
	CreditBalance int       `json:"creditBalance"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

type CreateUserParams struct {
	ClerkID   string `json:"clerkId"`
	Email     string `json:"email"`
	Username  string `json:"username"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Photo     string `json:"photo"`
}

// UpdateUserParams replaces the profile fields of an existing user.
type UpdateUserParams struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Username  string `json:"username"`
	Photo     string `json:"photo"`
}

// NewUser builds a user record with the default plan and starting balance.
func NewUser(p CreateUserParams) *User {
	return &User{
		ID:            NewUserID(),
		ClerkID:       p.ClerkID,
		Email:         p.Email,
		Username:      p.Username,
		Photo:         p.Photo,
		FirstName:     p.FirstName,
		LastName:      p.LastName,
		PlanID:        DefaultPlanID,
		CreditBalance: DefaultCreditBalance,
	}
}

func (u *User) Apply(p UpdateUserParams) {
	u.FirstName = p.FirstName
	u.LastName = p.LastName
	u.Username = p.Username
	u.Photo = p.Photo
}
