package entity

import "time"

// ServiceCategory groups services under the public catalog.
type ServiceCategory struct {
	ID        string
	Name      string
	Subtitle  string
	IconURL   string
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Service is a bookable offering inside a category.
type Service struct {
	ID          string
	CategoryID  string
	Name        string
	Description string
	MainPrice   float64
	OfferPrice  *float64
	Discount    *float64
	ImageURL    string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ServiceHour is the opening window for one weekday. At most one row exists
// per (service, day); saves overwrite rather than duplicate.
type ServiceHour struct {
	ID        string
	ServiceID string
	DayOfWeek int // 0=Sunday .. 6=Saturday
	FromTime  string
	ToTime    string
	IsClosed  bool
	CreatedAt time.Time
}

// ServiceFeature is a priced add-on attached to a service.
type ServiceFeature struct {
	ID               string
	ServiceID        string
	Title            string
	Subtitle         string
	Price            float64
	ImageURL         string
	EstimateTime     *float64
	EstimateTimeUnit string
	CreatedAt        time.Time
	UpdatedAt        time.Time
}
