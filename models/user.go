// Package models, uygulamanın domain modellerini tanımlar.
//
// Her model, veritabanındaki bir tablonun Go karşılığıdır ve aynı zamanda
// API'den gelen/giden verilerin şeklini belirler. json tag'leri
// serialize/deserialize davranışını kontrol eder.
package models

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"
)

// User, bir kullanıcıyı temsil eder.
// DB'deki "users" tablosunun Go karşılığı.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"` // json:"-" → API response'a DAHİL ETME
	CreatedAt    time.Time `json:"created_at"`
}

// CreateUserRequest, kayıt olurken client'tan gelen veri.
// PasswordHash yerine Password alırız — hash'leme service katmanında yapılır.
type CreateUserRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, CreateUserRequest'in geçerli olup olmadığını kontrol eder.
// Username: 3-32 karakter, alfanumerik + alt çizgi. Password: min 8 karakter.
func (r *CreateUserRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	usernameLen := utf8.RuneCountInString(r.Username)
	if usernameLen < 3 || usernameLen > 32 {
		return fmt.Errorf("username must be between 3 and 32 characters")
	}

	for _, ch := range r.Username {
		if !isValidUsernameChar(ch) {
			return fmt.Errorf("username can only contain letters, numbers, and underscores")
		}
	}

	if utf8.RuneCountInString(r.Password) < 8 {
		return fmt.Errorf("password must be at least 8 characters")
	}

	return nil
}

// LoginRequest, giriş yaparken client'tan gelen veri.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Validate, LoginRequest'in geçerli olup olmadığını kontrol eder.
func (r *LoginRequest) Validate() error {
	r.Username = strings.TrimSpace(r.Username)
	if r.Username == "" {
		return fmt.Errorf("username is required")
	}
	if r.Password == "" {
		return fmt.Errorf("password is required")
	}
	return nil
}

// isValidUsernameChar, username'de izin verilen karakterleri kontrol eder.
func isValidUsernameChar(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') ||
		(ch >= 'A' && ch <= 'Z') ||
		(ch >= '0' && ch <= '9') ||
		ch == '_'
}
