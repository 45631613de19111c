package models

import (
	"time"

	"github.com/uptrace/bun"
)

type User struct {
	bun.BaseModel `bun:"table:users,alias:u"`

	ID          string     `bun:"id,pk"`
	Username    string     `bun:"username,notnull,unique"`
	Email       string     `bun:"email,notnull"`
	Latitude    *float64   `bun:"latitude"`
	Longitude   *float64   `bun:"longitude"`
	PushToken   string     `bun:"push_token,type:text,default:''"`
	LastMatched *time.Time `bun:"last_matched"`

	CreatedAt time.Time `bun:"created_at,notnull,default:current_timestamp"`
	UpdatedAt time.Time `bun:"updated_at,notnull,default:current_timestamp"`
}

// HasLocation reports whether the profile carries usable coordinates.
func (u *User) HasLocation() bool {
	return u.Latitude != nil && u.Longitude != nil
}
