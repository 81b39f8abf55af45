package database

import "time"

type Subscription string

const (
	SubBasic     Subscription = "BASIC"
	SubBasicPlus Subscription = "BASIC+"
	SubShop      Subscription = "SHOP"
)

type User struct {
	ID                    int
	TelegramID            string
	Username              *string
	FirstName             *string
	XP                    int
	Rank                  string
	Subscription          Subscription
	DailyXP               int
	DailyXPDate           *string // YYYY-MM-DD
	LastXPTime            *time.Time
	IsAdmin               bool
	SubscriptionExpiresAt *time.Time
	CreatedAt             time.Time
	UpdatedAt             time.Time
}

type Post struct {
	ID         int
	UserID     int
	TelegramID string
	Category   string
	Content    *string
	CreatedAt  time.Time
}

type XPHistory struct {
	ID        int
	UserID    int
	XPChange  int
	Reason    string
	AdminID   *string
	Timestamp time.Time
}
