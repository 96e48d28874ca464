package models

import "time"

// Follow is a directed edge in the social graph, meaning the follower
// follows the followed. The pair is unique so repeated follows stay a
// single row.
type Follow struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	FollowerID uint      `json:"follower_id" gorm:"index;uniqueIndex:idx_follow_pair;not null"`
	Follower   Account   `json:"follower"`
	FollowedID uint      `json:"followed_id" gorm:"index;uniqueIndex:idx_follow_pair;not null"`
	Followed   Account   `json:"followed"`
	CreatedAt  time.Time `json:"created_at"`
}
