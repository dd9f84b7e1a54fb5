// Package pkg, katmanlar arasında paylaşılan küçük yardımcıları toplar.
// Bu dosya uygulamanın sentinel error'larını tanımlar.
//
// Her hata kategorisi tek bir paket değişkenidir; service katmanı bu
// değerleri fmt.Errorf("%w: ...") ile sarıp döner, handler katmanı da
// errors.Is ile hangi kategoriye düştüğüne bakar:
//
//	if errors.Is(err, pkg.ErrNotFound) { ... }
//
// Sarmalama sayesinde mesaja bağlam eklense bile kategori kaybolmaz;
// hata metni üzerinden string karşılaştırmaya hiç gerek kalmaz.
package pkg

import "errors"

// Sentinel error'lar. HTTP status eşlemesi response.go'daki
// mapErrorToStatus'ta tek yerde yapılır — yeni kategori eklenirse
// oraya da satır eklenmeli.
var (
	ErrNotFound      = errors.New("not found")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrAlreadyExists = errors.New("already exists")
	ErrBadRequest    = errors.New("bad request")
	ErrInternal      = errors.New("internal error")
)
