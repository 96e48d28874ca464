package services

import (
	"errors"
	"fmt"

	"github.com/warblr-net/warbler/pkg/internal/database"
	"github.com/warblr-net/warbler/pkg/internal/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// ErrAccountTaken is raised when a signup or profile edit collides with an
// existing username or email.
var ErrAccountTaken = errors.New("username or email already taken")

// ErrBadCredentials deliberately covers both an unknown username and a wrong
// password so callers cannot probe which usernames exist.
var ErrBadCredentials = errors.New("invalid credentials")

func GetAccount(id uint) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("id = ?", id).First(&account).Error; err != nil {
		return account, fmt.Errorf("unable to get account by id: %v", err)
	}
	return account, nil
}

func GetAccountWithName(name string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("name = ?", name).First(&account).Error; err != nil {
		return account, fmt.Errorf("unable to get account by name: %v", err)
	}
	return account, nil
}

func ListAccount(probe string) ([]models.Account, error) {
	tx := database.C
	if len(probe) > 0 {
		tx = tx.Where("name LIKE ?", "%"+probe+"%")
	}

	var accounts []models.Account
	if err := tx.Order("name ASC").Find(&accounts).Error; err != nil {
		return accounts, err
	}
	return accounts, nil
}

func SignUpAccount(name, email, password, avatar string) (models.Account, error) {
	account := models.Account{
		Name:   name,
		Nick:   name,
		Email:  email,
		Avatar: avatar,
		Banner: models.DefaultBanner,
	}
	if len(account.Avatar) == 0 {
		account.Avatar = models.DefaultAvatar
	}

	if hash, err := HashPassword(password); err != nil {
		return account, err
	} else {
		account.PasswordHash = hash
	}

	if err := database.C.Create(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return account, ErrAccountTaken
		}
		return account, fmt.Errorf("unable to sign up account: %v", err)
	}

	return account, nil
}

func AuthenticateAccount(name, password string) (models.Account, error) {
	var account models.Account
	if err := database.C.Where("name = ?", name).First(&account).Error; err != nil {
		return account, ErrBadCredentials
	}

	if !VerifyPassword(account.PasswordHash, password) {
		return account, ErrBadCredentials
	}

	return account, nil
}

type ProfileChanges struct {
	Name        string
	Email       string
	Avatar      string
	Banner      string
	Description string
	Location    string
}

// EditProfile re-checks the account password before touching any field; a
// mismatch leaves the row untouched.
func EditProfile(account models.Account, changes ProfileChanges, password string) (models.Account, error) {
	if !VerifyPassword(account.PasswordHash, password) {
		return account, ErrBadCredentials
	}

	account.Name = changes.Name
	account.Email = changes.Email
	account.Avatar = changes.Avatar
	account.Banner = changes.Banner
	account.Description = changes.Description
	account.Location = changes.Location
	if len(account.Avatar) == 0 {
		account.Avatar = models.DefaultAvatar
	}
	if len(account.Banner) == 0 {
		account.Banner = models.DefaultBanner
	}

	if err := database.C.Save(&account).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return account, ErrAccountTaken
		}
		return account, fmt.Errorf("unable to edit profile: %v", err)
	}

	return account, nil
}

// DeleteAccount removes the account with everything it owns in one
// transaction: likes given and received, follow edges in both directions,
// messages, and the account row itself.
func DeleteAccount(account models.Account) error {
	err := database.C.Transaction(func(tx *gorm.DB) error {
		var messageIds []uint
		if err := tx.Model(&models.Message{}).
			Where("account_id = ?", account.ID).
			Pluck("id", &messageIds).Error; err != nil {
			return err
		}

		if len(messageIds) > 0 {
			if err := tx.Where("message_id IN ?", messageIds).Delete(&models.Like{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("account_id = ?", account.ID).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("follower_id = ? OR followed_id = ?", account.ID, account.ID).
			Delete(&models.Follow{}).Error; err != nil {
			return err
		}
		if err := tx.Where("account_id = ?", account.ID).Delete(&models.Message{}).Error; err != nil {
			return err
		}

		return tx.Delete(&account).Error
	})
	if err != nil {
		return err
	}

	InvalidateFollowingCache(account.ID)
	return nil
}

func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("unable to hash password: %v", err)
	}
	return string(hash), nil
}

func VerifyPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
