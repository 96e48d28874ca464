package models

const MessageContentLimit = 140

type Message struct {
	BaseModel

	Content  string `json:"content" gorm:"type:varchar(140);not null"`
	Language string `json:"language"`

	AccountID uint    `json:"account_id" gorm:"index;not null"`
	Account   Account `json:"account"`

	Likes []Like `json:"likes" gorm:"foreignKey:MessageID"`
}
