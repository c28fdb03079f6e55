package models

import "time"

// DefaultListName - список, создаваемый при регистрации
const DefaultListName = "My Lists"

type List struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
