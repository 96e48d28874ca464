package services

import (
	"errors"
	"fmt"

	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/models"
	"gorm.io/gorm"
)

// ErrSelfLike is a first-class rejection, never a silent no-op: liking your
// own message is forbidden.
var ErrSelfLike = errors.New("you cannot like your own message")

// LikeMessage flips whether the actor has the message in their liked set and
// reports which way the toggle went, true meaning the like was added.
func LikeMessage(actor models.Account, message models.Message) (bool, error) {
	if message.AccountID == actor.ID {
		return false, ErrSelfLike
	}

	var like models.Like
	if err := database.C.
		Where("account_id = ? AND message_id = ?", actor.ID, message.ID).
		First(&like).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return false, fmt.Errorf("unable to check like: %v", err)
		}

		like = models.Like{
			AccountID: actor.ID,
			MessageID: message.ID,
		}
		if err := database.C.Save(&like).Error; err != nil {
			return false, fmt.Errorf("unable to like message: %v", err)
		}
		return true, nil
	}

	if err := database.C.Delete(&like).Error; err != nil {
		return false, fmt.Errorf("unable to unlike message: %v", err)
	}
	return false, nil
}

func HasLiked(actor models.Account, message models.Message) bool {
	var like models.Like
	err := database.C.
		Where("account_id = ? AND message_id = ?", actor.ID, message.ID).
		First(&like).Error
	return err == nil
}

func ListLikedMessages(account models.Account) ([]models.Message, error) {
	var likes []models.Like
	if err := database.C.
		Where("account_id = ?", account.ID).
		Order("created_at DESC").
		Preload("Message").
		Preload("Message.Account").
		Find(&likes).Error; err != nil {
		return nil, fmt.Errorf("unable to list liked messages: %v", err)
	}

	messages := make([]models.Message, 0, len(likes))
	for _, like := range likes {
		messages = append(messages, like.Message)
	}
	return messages, nil
}

func CountMessageLikes(id uint) int64 {
	var count int64
	if err := database.C.Model(&models.Like{}).
		Where("message_id = ?", id).
		Count(&count).Error; err != nil {
		return 0
	}
	return count
}
