// Package models contains data structures for the application's domain models.
package models

import "time"

// DefaultProfilePhotoURL is assigned to accounts that never uploaded a photo.
const DefaultProfilePhotoURL = "https://cdn.pixabay.com/photo/2015/10/05/22/37/blank-profile-picture-973460_640.png"

// Image references an asset held by the media host. PublicID is empty for
// assets the media host does not own, such as the default profile photo.
type Image struct {
	URL      string `gorm:"not null" json:"url"`
	PublicID string `json:"publicId"`
}

// HasAsset reports whether the image is backed by a stored asset that must be
// deleted together with its owner.
func (i Image) HasAsset() bool {
	return i.PublicID != ""
}

// User represents an account on the blog.
type User struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	Username          string    `gorm:"size:100;not null" json:"username"`
	Email             string    `gorm:"size:100;uniqueIndex;not null" json:"email"`
	Password          string    `gorm:"not null" json:"-"`
	ProfilePhoto      Image     `gorm:"embedded;embeddedPrefix:profile_photo_" json:"profilePhoto"`
	Bio               string    `json:"bio"`
	IsAdmin           bool      `gorm:"not null;default:false" json:"isAdmin"`
	IsAccountVerified bool      `gorm:"not null;default:false" json:"isAccountVerified"`
	VerificationToken *string   `gorm:"size:64;index" json:"-"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
	Posts             []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}

// HasToken reports whether the user holds an unconsumed one-time token.
func (u *User) HasToken() bool {
	return u.VerificationToken != nil && *u.VerificationToken != ""
}

// TokenMatches reports whether token equals the user's live one-time token.
func (u *User) TokenMatches(token string) bool {
	return token != "" && u.HasToken() && *u.VerificationToken == token
}
