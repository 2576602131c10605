package models

// User is a registered account. The zero value is the guest sentinel:
// every permission predicate must resolve to the least-privileged answer
// for it.
type User struct {
	ID            int64  `gorm:"primarykey" json:"id"`
	FirstName     string `gorm:"type:varchar(100);not null" json:"first_name"`
	LastName      string `gorm:"type:varchar(100);not null" json:"last_name"`
	Email         string `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	EmailVerified bool   `gorm:"not null;default:false" json:"email_verified"`
	Admin         bool   `gorm:"column:is_admin;not null;default:false" json:"is_admin"`

	PasswordHash     string `gorm:"type:varchar(40);not null" json:"-"`
	PasswordSalt     string `gorm:"type:varchar(32);not null" json:"-"`
	CookieSalt       string `gorm:"type:varchar(32);not null" json:"-"`
	TempPasswordHash string `gorm:"type:varchar(40)" json:"-"`
	// TempPasswordAt is the unix time the temporary password was issued,
	// 0 if none was ever issued.
	TempPasswordAt int64 `json:"-"`

	// AvatarAttachmentID points at the user's avatar, 0 if unset.
	AvatarAttachmentID int64 `json:"avatar_attachment_id"`

	CreatedAt int64 `gorm:"autoCreateTime" json:"created_at"`
}

// Guest is the "no such user" sentinel.
var Guest = User{}

// IsGuest reports whether this is the unauthenticated sentinel user.
func (u User) IsGuest() bool {
	return u.ID == 0
}

// IsAdmin reports whether the user has the site-wide admin flag. Guests
// are never admins.
func (u User) IsAdmin() bool {
	return !u.IsGuest() && u.Admin
}

func (u User) FullName() string {
	if u.IsGuest() {
		return "Guest"
	}
	return u.FirstName + " " + u.LastName
}
