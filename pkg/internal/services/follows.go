package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/marshaler"
	"github.com/eko/gocache/lib/v4/store"
	localCache "github.com/warblr-net/warbler/pkg/internal/cache"
	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

func getFollowingCacheKey(id uint) string {
	return fmt.Sprintf("account-following-query#%d", id)
}

// FollowAccount adds the directed edge actor -> target. Following someone
// twice is a no-op, enforced both here and by the unique index on the pair.
func FollowAccount(actor models.Account, target models.Account) error {
	follow := models.Follow{
		FollowerID: actor.ID,
		FollowedID: target.ID,
	}

	if err := database.C.
		Clauses(clause.OnConflict{DoNothing: true}).
		Where(models.Follow{FollowerID: actor.ID, FollowedID: target.ID}).
		FirstOrCreate(&follow).Error; err != nil {
		return fmt.Errorf("unable to follow account: %v", err)
	}

	InvalidateFollowingCache(actor.ID)
	return nil
}

// UnfollowAccount removes the edge if present; unfollowing a stranger is a
// no-op.
func UnfollowAccount(actor models.Account, target models.Account) error {
	if err := database.C.
		Where("follower_id = ? AND followed_id = ?", actor.ID, target.ID).
		Delete(&models.Follow{}).Error; err != nil {
		return fmt.Errorf("unable to unfollow account: %v", err)
	}

	InvalidateFollowingCache(actor.ID)
	return nil
}

func IsFollowing(a models.Account, b models.Account) bool {
	var follow models.Follow
	err := database.C.
		Where("follower_id = ? AND followed_id = ?", a.ID, b.ID).
		First(&follow).Error
	return !errors.Is(err, gorm.ErrRecordNotFound) && err == nil
}

func IsFollowedBy(a models.Account, b models.Account) bool {
	return IsFollowing(b, a)
}

func ListFollowing(account models.Account) ([]models.Account, error) {
	var follows []models.Follow
	if err := database.C.
		Where("follower_id = ?", account.ID).
		Preload("Followed").
		Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("unable to list following: %v", err)
	}

	accounts := make([]models.Account, 0, len(follows))
	for _, follow := range follows {
		accounts = append(accounts, follow.Followed)
	}
	return accounts, nil
}

func ListFollowers(account models.Account) ([]models.Account, error) {
	var follows []models.Follow
	if err := database.C.
		Where("followed_id = ?", account.ID).
		Preload("Follower").
		Find(&follows).Error; err != nil {
		return nil, fmt.Errorf("unable to list followers: %v", err)
	}

	accounts := make([]models.Account, 0, len(follows))
	for _, follow := range follows {
		accounts = append(accounts, follow.Follower)
	}
	return accounts, nil
}

// ListFollowingIDs returns the ids of everyone the account follows. The set
// is cached for a short while since the home timeline hits it on every page
// load; follow and unfollow invalidate it.
func ListFollowingIDs(account models.Account) ([]uint, error) {
	type followingState struct {
		IDs []uint
	}

	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	ctx := context.Background()

	statusCacheKey := getFollowingCacheKey(account.ID)
	statusCache, err := marshal.Get(ctx, statusCacheKey, new(followingState))
	if err == nil {
		return statusCache.(*followingState).IDs, nil
	}

	var ids []uint
	if err := database.C.Model(&models.Follow{}).
		Where("follower_id = ?", account.ID).
		Pluck("followed_id", &ids).Error; err != nil {
		return nil, fmt.Errorf("unable to list following ids: %v", err)
	}

	_ = marshal.Set(
		ctx,
		statusCacheKey,
		followingState{IDs: ids},
		store.WithExpiration(5*time.Minute),
		store.WithTags([]string{"account-following-query", fmt.Sprintf("account#%d", account.ID)}),
	)

	return ids, nil
}

func InvalidateFollowingCache(id uint) {
	cacheManager := cache.New[any](localCache.S)
	marshal := marshaler.New(cacheManager)
	_ = marshal.Delete(context.Background(), getFollowingCacheKey(id))
}
