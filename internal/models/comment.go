package models

import "time"

// Comment is a reply to a post. Username is copied from the author when the
// comment is created and is not updated afterwards.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uint      `gorm:"not null;index" json:"postId"`
	UserID    uint      `gorm:"not null;index" json:"userId"`
	Username  string    `gorm:"size:100;not null" json:"username"`
	Text      string    `gorm:"type:text;not null" json:"text"`
	User      *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
