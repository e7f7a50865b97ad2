package models

import (
	"time"

	"github.com/google/uuid"
)

// User — пользователь в том виде, в каком его видит остальное приложение.
type User struct {
	UID         string `json:"uid"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
}

// Credentials — учётная запись в хранилище пользователей (PostgreSQL).
type Credentials struct {
	ID           uuid.UUID
	Email        string
	PasswordHash []byte
	DisplayName  string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// User возвращает публичное представление учётной записи.
func (c Credentials) User() User {
	return User{UID: c.ID.String(), Email: c.Email, DisplayName: c.DisplayName}
}

// DefaultUsername — имя в профиле, если пользователь его не указал.
const DefaultUsername = "未設定"

// Profile — документ профиля, создаётся при первом входе.
type Profile struct {
	UID       string
	Email     string
	Username  string
	CreatedAt time.Time
}

// ProfileOf строит профиль из пользователя.
func ProfileOf(u User, now time.Time) Profile {
	name := u.DisplayName
	if name == "" {
		name = DefaultUsername
	}

	return Profile{UID: u.UID, Email: u.Email, Username: name, CreatedAt: now}
}

// Token — выданный токен доступа.
type Token struct {
	AccessToken string
	ExpiresAt   time.Time
	User        User
}
