package models

import "time"

// AuthSession, JWT refresh token oturumunu temsil eder.
// DB'deki "auth_sessions" tablosunun Go karşılığı.
//
// Canlı websocket Session'ı ile karıştırılmamalı — o ws paketinde yaşar
// ve sadece bağlantı süresince var olan in-memory state'tir. AuthSession
// ise refresh token'ın kalıcı kaydıdır: çalınan token revoke edilebilir,
// logout'ta sadece ilgili oturum silinir.
type AuthSession struct {
	ID           string    `json:"id"`
	UserID       string    `json:"user_id"`
	RefreshToken string    `json:"-"` // API'ye gönderilmez
	ExpiresAt    time.Time `json:"expires_at"`
	CreatedAt    time.Time `json:"created_at"`
}
