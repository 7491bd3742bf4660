package model

import "time"

// Block is a sub-organization under an Umbrella. The committee columns hold
// the current seat holders; they move in lockstep with the member_roles rows.
type Block struct {
	ID          int64     `json:"id,string"`
	UmbrellaID  int64     `json:"umbrella_id,string"`
	Name        string    `json:"name"`
	CreatedBy   int64     `json:"created_by,string"`
	ChairmanID  *int64    `json:"chairman_id,string,omitempty"`
	SecretaryID *int64    `json:"secretary_id,string,omitempty"`
	TreasurerID *int64    `json:"treasurer_id,string,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Zone is a geographic subdivision of a Block; members join through zones.
type Zone struct {
	ID        int64     `json:"id,string"`
	BlockID   int64     `json:"block_id,string"`
	Name      string    `json:"name"`
	CreatedBy int64     `json:"created_by,string"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
