package models

// Attachment is file metadata; the bytes themselves live on disk and
// are served outside the core.
type Attachment struct {
	ID        int64  `gorm:"primarykey" json:"id"`
	OwnerID   int64  `gorm:"not null;index" json:"owner_id"`
	Name      string `gorm:"type:varchar(255);not null" json:"name"`
	Size      int64  `gorm:"not null" json:"size"`
	Path      string `gorm:"type:varchar(512);not null" json:"-"`
	CreatedAt int64  `gorm:"autoCreateTime" json:"created_at"`
}

// EntryAttachment links attachments to entries, many-to-many.
type EntryAttachment struct {
	EntryID      int64 `gorm:"primarykey" json:"entry_id"`
	AttachmentID int64 `gorm:"primarykey" json:"attachment_id"`
	CreatedAt    int64 `gorm:"autoCreateTime" json:"created_at"`

	// Relations
	Entry      Entry      `gorm:"foreignKey:EntryID" json:"entry,omitempty"`
	Attachment Attachment `gorm:"foreignKey:AttachmentID" json:"attachment,omitempty"`
}
