package models

import "time"

// Like records that an account liked a message, once.
type Like struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	AccountID uint      `json:"account_id" gorm:"index;uniqueIndex:idx_like_pair;not null"`
	Account   Account   `json:"account"`
	MessageID uint      `json:"message_id" gorm:"index;uniqueIndex:idx_like_pair;not null"`
	Message   Message   `json:"message"`
	CreatedAt time.Time `json:"created_at"`
}
