package model

import "time"

// Umbrella is the top-level savings organization. Blocks hang off it.
type Umbrella struct {
	ID        int64     `json:"id,string"`
	Name      string    `json:"name"`
	Location  string    `json:"location"`
	CreatedBy int64     `json:"created_by,string"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
