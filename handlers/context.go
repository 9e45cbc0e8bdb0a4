// Package handlers, HTTP request/response işlemlerini yönetir.
//
// Handler'ın görevi çok basit ve "ince" (thin) olmalı:
// 1. Request body'yi parse et (JSON → struct)
// 2. Service katmanını çağır
// 3. Sonucu HTTP response olarak döndür
//
// Handler ASLA iş mantığı (business logic) içermez.
// Handler ASLA doğrudan DB'ye erişmez.
// Tüm akıl service'de, handler sadece köprü.
package handlers

import (
	"net/http"

	"github.com/akinalp/sohbet/models"
)

// contextKey, context.Value çakışmalarını önlemek için özel tip.
//
// Neden string değil?
// Başka bir paket de context'e "user" key'i ile değer koyabilir.
// Özel tip kullanınca çakışma imkansızlaşır — tip farklı olduğu için
// başka paketin key'i bizimkine asla eşit olamaz.
type contextKey string

// UserContextKey, auth middleware'ın doğrulanmış kullanıcıyı context'e
// koyduğu key. Handler'lar CurrentUser ile okur.
const UserContextKey contextKey = "user"

// CurrentUser, request context'indeki doğrulanmış kullanıcıyı döner.
// Auth middleware'dan geçmemiş bir route'ta çağrılırsa (nil, false) döner.
func CurrentUser(r *http.Request) (*models.User, bool) {
	user, ok := r.Context().Value(UserContextKey).(*models.User)
	return user, ok
}
