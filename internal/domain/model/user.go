package model

import "time"

// 会員。emailは正規化（trim + 小文字）して保存。
type User struct {
	Email            string    `json:"email"`
	Name             string    `json:"name"`
	Surname          string    `json:"surname"`
	Phone            string    `json:"phone,omitempty"`
	Address          string    `json:"address,omitempty"`
	FavoriteToyTypes []string  `json:"favoriteToyTypes,omitempty"`
	PasswordHash     string    `json:"passwordHash"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// レビュー表示名（"名前 姓の頭文字."）
func (u User) DisplayName() string {
	if u.Surname == "" {
		return u.Name
	}
	r := []rune(u.Surname)
	return u.Name + " " + string(r[0]) + "."
}
