package models

const (
	DefaultAvatar = "/static/images/default-pic.png"
	DefaultBanner = "/static/images/warbler-hero.jpg"
)

type Account struct {
	BaseModel

	Name         string `json:"name" gorm:"uniqueIndex"`
	Nick         string `json:"nick"`
	Email        string `json:"email" gorm:"uniqueIndex"`
	PasswordHash string `json:"-"`

	Avatar      string `json:"avatar"`
	Banner      string `json:"banner"`
	Description string `json:"description"`
	Location    string `json:"location"`

	Messages []Message `json:"messages"`
	Likes    []Like    `json:"likes" gorm:"foreignKey:AccountID"`
}
