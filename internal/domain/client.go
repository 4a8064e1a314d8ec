package domain

import "time"

type Language string

const (
	LanguageSwahili Language = "sw"
	LanguageEnglish Language = "en"
)

// Client is a directory entry: one canonical phone number and the identity behind it.
type Client struct {
	ID        int64
	Name      string
	Phone     string
	Language  Language
	CreatedAt time.Time
}

func (c Client) Lang() Language {
	if c.Language == LanguageEnglish {
		return LanguageEnglish
	}
	return LanguageSwahili
}
