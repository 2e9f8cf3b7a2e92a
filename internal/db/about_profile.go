package db

import (
	"time"

	"gorm.io/datatypes"
)

// Photo 描述头像或图库中的一张图片
type Photo struct {
	Src       string `json:"src"`
	Alt       string `json:"alt,omitempty"`
	ClassName string `json:"className,omitempty"`
	AssetID   string `json:"publicId,omitempty"`
}

// AboutProfile 定义 about 页面中的人物档案
// Photo 为必填，Gallery 默认为空，均以 JSON 列存储
type AboutProfile struct {
	ID             uint                        `gorm:"primaryKey" json:"-"`
	ProfileID      string                      `gorm:"size:120;uniqueIndex;not null" json:"id"`
	Name           string                      `gorm:"not null" json:"name"`
	Title          string                      `json:"title"`
	Email          string                      `json:"email"`
	Bio            string                      `json:"bio"`
	BookingText    string                      `json:"bookingText"`
	BookingURL     string                      `json:"bookingUrl"`
	Photo          datatypes.JSONType[Photo]   `json:"photo"`
	Gallery        datatypes.JSONSlice[Photo]  `json:"gallery"`
	Awards         datatypes.JSONSlice[string] `json:"awards"`
	Certifications datatypes.JSONSlice[string] `json:"certifications"`
	Version        int                         `gorm:"not null;default:1" json:"-"`
	CreatedAt      time.Time                   `json:"createdAt"`
	UpdatedAt      time.Time                   `json:"updatedAt"`
}
