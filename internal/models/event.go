package models

import "time"

type Event struct {
	ID        uint      `gorm:"primaryKey"`
	Name      string    `gorm:"size:100;not null;unique"`
	StartDate time.Time `gorm:"not null"`
	EndDate   time.Time `gorm:"not null"` // tem de ser posterior a StartDate
	Active    bool      `gorm:"not null;default:false;index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
