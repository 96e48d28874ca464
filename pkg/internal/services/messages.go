package services

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/pemistahl/lingua-go"
	"github.com/rs/zerolog/log"
	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/models"
	"gorm.io/gorm"
)

// FeedLimit is how many messages a timeline page carries at most.
const FeedLimit = 100

var ErrMessageNotFound = errors.New("message not found")

var languageDetector = sync.OnceValue(func() lingua.LanguageDetector {
	return lingua.NewLanguageDetectorBuilder().
		FromLanguages(
			lingua.English,
			lingua.Spanish,
			lingua.French,
			lingua.German,
			lingua.Portuguese,
			lingua.Japanese,
			lingua.Chinese,
		).
		Build()
})

func DetectMessageLanguage(content string) string {
	if language, ok := languageDetector().DetectLanguageOf(content); ok {
		return strings.ToLower(language.IsoCode639_1().String())
	}
	return ""
}

func NewMessage(author models.Account, content string) (models.Message, error) {
	message := models.Message{
		Content:   content,
		AccountID: author.ID,
	}

	content = strings.TrimSpace(content)
	if len(content) == 0 {
		return message, fmt.Errorf("message content cannot be empty")
	}
	if len([]rune(content)) > models.MessageContentLimit {
		return message, fmt.Errorf("message content cannot be longer than %d characters", models.MessageContentLimit)
	}

	message.Content = content
	message.Language = DetectMessageLanguage(content)

	if err := database.C.Save(&message).Error; err != nil {
		return message, fmt.Errorf("unable to create message: %v", err)
	}

	log.Debug().Uint("id", message.ID).Uint("author", author.ID).Msg("Created a new message.")
	return message, nil
}

func GetMessage(tx *gorm.DB, id uint) (models.Message, error) {
	var message models.Message
	if err := tx.
		Preload("Account").
		Where("id = ?", id).
		First(&message).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return message, ErrMessageNotFound
		}
		return message, err
	}
	return message, nil
}

// DeleteMessage removes the message with its like edges in one transaction.
// The ownership check lives in the handler; this only cares about integrity.
func DeleteMessage(message models.Message) error {
	return database.C.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("message_id = ?", message.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		return tx.Delete(&message).Error
	})
}

func FilterMessageWithAuthor(tx *gorm.DB, id uint) *gorm.DB {
	return tx.Where("account_id = ?", id)
}

func FilterMessageWithAuthorSet(tx *gorm.DB, ids []uint) *gorm.DB {
	return tx.Where("account_id IN ?", ids)
}

func ListMessage(tx *gorm.DB, take int, offset int) ([]models.Message, error) {
	if take > FeedLimit || take <= 0 {
		take = FeedLimit
	}

	var messages []models.Message
	if err := tx.
		Preload("Account").
		Limit(take).Offset(offset).
		Order("created_at DESC").
		Find(&messages).Error; err != nil {
		return messages, err
	}
	return messages, nil
}

func CountMessage(tx *gorm.DB) (int64, error) {
	var count int64
	if err := tx.Model(&models.Message{}).Count(&count).Error; err != nil {
		return count, err
	}
	return count, nil
}

// ListFeed is the home timeline: the newest messages from the account itself
// plus everyone it follows.
func ListFeed(account models.Account) ([]models.Message, error) {
	ids, err := ListFollowingIDs(account)
	if err != nil {
		return nil, err
	}
	ids = append(ids, account.ID)

	return ListMessage(FilterMessageWithAuthorSet(database.C, ids), FeedLimit, 0)
}
