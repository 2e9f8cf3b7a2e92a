package db

import "time"

const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusDeclined  = "declined"
)

// Booking 保存活动预约请求
type Booking struct {
	ID                 uint      `gorm:"primaryKey" json:"id"`
	OrganizationName   string    `gorm:"not null" json:"organizationName"`
	ContactPerson      string    `gorm:"not null" json:"contactPerson"`
	Email              string    `gorm:"not null" json:"email"`
	Phone              string    `gorm:"not null" json:"phone"`
	EventName          string    `gorm:"not null" json:"eventName"`
	EventDates         string    `gorm:"not null" json:"eventDates"`
	EventLocation      string    `gorm:"not null" json:"eventLocation"`
	AudienceType       string    `gorm:"not null" json:"audienceType"`
	AudienceSize       string    `gorm:"not null" json:"audienceSize"`
	PreferredSpeaker   string    `json:"preferredSpeaker"`
	TopicPreference    string    `json:"topicPreference"`
	SessionLength      string    `gorm:"not null" json:"sessionLength"`
	AVSetup            string    `json:"avSetup"`
	RecordedOrStreamed string    `json:"recordedOrStreamed"`
	HonorariumBudget   string    `json:"honorariumBudget"`
	TravelSupport      string    `json:"travelSupport"`
	AdditionalNotes    string    `json:"additionalNotes"`
	Status             string    `gorm:"size:20;not null;default:pending;index" json:"status"`
	CreatedAt          time.Time `json:"createdAt"`
	UpdatedAt          time.Time `json:"updatedAt"`
}

// Contact 保存联系表单留言
type Contact struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"not null" json:"name"`
	Email     string    `gorm:"not null" json:"email"`
	Message   string    `gorm:"type:text;not null" json:"message"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
