package db

import (
	"time"

	"gorm.io/datatypes"
)

// Speaker 定义活动页展示的演讲者
type Speaker struct {
	ID          uint                        `gorm:"primaryKey" json:"-"`
	SpeakerID   string                      `gorm:"size:120;uniqueIndex;not null" json:"speakerId"`
	Name        string                      `gorm:"not null" json:"name"`
	Subtitle    string                      `json:"subtitle"`
	Bio         string                      `json:"bio"`
	Fees        datatypes.JSONSlice[string] `json:"fees"`
	Note        string                      `json:"note"`
	RiderHeader string                      `json:"riderHeader"`
	Topics      datatypes.JSONSlice[string] `json:"topics"`
	Photo       datatypes.JSONType[Photo]   `json:"photo"`
	CreatedAt   time.Time                   `json:"createdAt"`
	UpdatedAt   time.Time                   `json:"updatedAt"`
}
