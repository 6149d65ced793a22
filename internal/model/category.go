package model

import "time"

type Category struct {
	ID          int64     `json:"category_id"`
	Name        string    `json:"category_name"`
	Description *string   `json:"category_description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}
