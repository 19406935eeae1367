package models

import (
	"encoding/json"
	"time"
)

// Post represents a blog post. Image is required.
type Post struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	Title       string     `gorm:"size:200;not null" json:"title"`
	Description string     `gorm:"type:text;not null" json:"description"`
	Category    string     `gorm:"size:100;not null;index" json:"category"`
	Image       Image      `gorm:"embedded;embeddedPrefix:image_" json:"image"`
	UserID      uint       `gorm:"not null;index" json:"userId"`
	User        *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Likes       []PostLike `gorm:"foreignKey:PostID" json:"likes"`
	Comments    []Comment  `gorm:"foreignKey:PostID" json:"comments,omitempty"`
	CreatedAt   time.Time  `gorm:"index" json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// LikedBy reports whether userID is in the post's like set.
func (p *Post) LikedBy(userID uint) bool {
	for _, l := range p.Likes {
		if l.UserID == userID {
			return true
		}
	}
	return false
}

// PostLike is one row of a post's like set.
// The combination of UserID and PostID must be unique.
type PostLike struct {
	PostID    uint      `gorm:"primaryKey;autoIncrement:false"`
	UserID    uint      `gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"-"`
}

// MarshalJSON renders a like as the id of the liking user.
func (l PostLike) MarshalJSON() ([]byte, error) {
	return json.Marshal(l.UserID)
}

// UnmarshalJSON accepts the form produced by MarshalJSON.
func (l *PostLike) UnmarshalJSON(data []byte) error {
	return json.Unmarshal(data, &l.UserID)
}
