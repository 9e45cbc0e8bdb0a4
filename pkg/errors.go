// Package pkg, projede paylaşılan küçük utility'leri barındırır.
// Bu dosya domain-level error tanımlarını içerir.
//
// Error'lar sabit değerlerdir — karşılaştırma errors.Is ile yapılır,
// string karşılaştırması ile değil:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Service katmanı bu error'ları (gerekirse fmt.Errorf("%w: ...") ile
// sararak) döner, handler katmanı HTTP status code'una çevirir.
package pkg

import "errors"

// Domain-level error'lar.
//
// Hata sınıfları:
//   - ErrBadRequest: validasyon hatası — hiçbir yan etki oluşmadan reddedilir,
//     sadece isteği yapan client'a raporlanır.
//   - ErrForbidden: katılımcı/abonelik kontrolü başarısız.
//   - ErrInternal ve sarılmamış repo hataları: persistence hatası — mesaj
//     kalıcı olmadıysa fan-out da yapılmaz, hata göndericiye döner.
//   - Delivery hataları bu listede YOKTUR: bir session'a yazım hatası
//     göndericiye hiç yansıtılmaz, sadece loglanır ve o session düşürülür.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)

// UserMessage, bir error'ın client'a gösterilebilecek halini döner.
// Bilinen domain error'ları olduğu gibi geçer; tanınmayan hatalar detay
// sızdırmamak için genel bir mesaja çevrilir.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, ErrUnauthorized),
		errors.Is(err, ErrForbidden),
		errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrBadRequest):
		return err.Error()
	default:
		return "internal error"
	}
}
