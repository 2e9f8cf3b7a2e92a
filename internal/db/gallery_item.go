package db

import "time"

const (
	ColumnLeft  = "left"
	ColumnRight = "right"
)

// GalleryItem 定义站点图库中的单张图片
// GalleryID 为外部分配的稳定标识，所有接口均按它寻址
// Version 在每次写入时递增，用于乐观并发控制
type GalleryItem struct {
	ID        uint      `gorm:"primaryKey" json:"_id"`
	GalleryID string    `gorm:"size:120;uniqueIndex;not null" json:"id"`
	Src       string    `gorm:"not null" json:"src"`
	Alt       string    `json:"alt"`
	Column    string    `gorm:"size:10;not null;default:left" json:"column"`
	AssetID   string    `json:"publicId,omitempty"`
	Version   int       `gorm:"not null;default:1" json:"-"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// NormalizeColumn 只接受 right，其余取值一律视为 left
func NormalizeColumn(value string) string {
	if value == ColumnRight {
		return ColumnRight
	}
	return ColumnLeft
}
