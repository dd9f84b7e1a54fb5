// Package live, in-process canlı sorgu aboneliklerini sağlar.
//
// Model basittir: yazma yolları ilgili topic'i Publish eder, okuma
// tarafı Subscribe ile bir Subscription alır ve her sinyalde sorgusunu
// baştan çalıştırıp (snapshot-recompute) yeni sonucu yayınlar.
// Incremental diff yoktur — her güncelleme tam listedir.
//
// Sıralama garantileri:
//   - Tek bir Subscription içinde sinyaller üretim sırasıyla işlenir.
//   - Farklı Subscription'lar arasında HİÇBİR sıralama garantisi yoktur.
//
// Cancel çağrılmadan bırakılan abonelik goroutine sızdırır — view
// teardown'ında mutlaka Cancel çağrılmalı.
package live

import "sync"

// Bus, topic → abone eşlemesini tutar.
//
// Topic bir string anahtardır, örneğin "inbox:<userID>" veya
// "conversation:<convID>". Publish o topic'in tüm abonelerini uyandırır.
type Bus struct {
	mu   sync.RWMutex
	subs map[string]map[*Subscription]bool
}

// NewBus, boş bir Bus oluşturur.
func NewBus() *Bus {
	return &Bus{
		subs: make(map[string]map[*Subscription]bool),
	}
}

// Subscribe, verilen topic'lere abone olur ve bir Subscription döner.
// Abonelik oluşturulduğu anda bir kez sinyallenir — abone ilk
// snapshot'ını beklemeden hemen hesaplar (mevcut durumla başla,
// sonra her değişiklikte tekrar).
func (b *Bus) Subscribe(topics ...string) *Subscription {
	sub := &Subscription{
		bus:    b,
		topics: topics,
		signal: make(chan struct{}, 1),
		done:   make(chan struct{}),
	}

	b.mu.Lock()
	for _, topic := range topics {
		if b.subs[topic] == nil {
			b.subs[topic] = make(map[*Subscription]bool)
		}
		b.subs[topic][sub] = true
	}
	b.mu.Unlock()

	// İlk sinyal: abone mevcut durumu hemen hesaplasın
	sub.notify()
	return sub
}

// Publish, verilen topic'lerin tüm abonelerini uyandırır.
// Non-blocking'dir: yavaş bir abone yayıncıyı asla bekletmez.
func (b *Bus) Publish(topics ...string) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for _, topic := range topics {
		for sub := range b.subs[topic] {
			sub.notify()
		}
	}
}

// unsubscribe, aboneliği tüm topic'lerden çıkarır. Boş kalan topic
// map'leri temizlenir.
func (b *Bus) unsubscribe(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, topic := range sub.topics {
		delete(b.subs[topic], sub)
		if len(b.subs[topic]) == 0 {
			delete(b.subs, topic)
		}
	}
}

// Subscription, tek bir canlı sorgu aboneliğini temsil eder.
//
// Signal kanalı 1 kapasitelidir: abone hesaplama yaparken gelen N
// sinyal tek sinyale çöker (coalescing). Abone her uyanışta güncel
// durumu baştan okuduğu için ara sinyallerin kaybı sorun değildir —
// son durum her zaman görülür.
type Subscription struct {
	bus    *Bus
	topics []string
	signal chan struct{}
	done   chan struct{}
	once   sync.Once
}

// Signal, sinyal kanalını döner. Her alım "bir şeyler değişti,
// sorgunu tekrar çalıştır" anlamına gelir.
func (s *Subscription) Signal() <-chan struct{} {
	return s.signal
}

// Done, Cancel çağrıldığında kapanan kanalı döner.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

// Cancel, aboneliği sonlandırır: başka sinyal gelmez, Done kapanır.
// Birden fazla çağrı güvenlidir.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.bus.unsubscribe(s)
		close(s.done)
	})
}

func (s *Subscription) notify() {
	select {
	case s.signal <- struct{}{}:
	default:
		// Kanal zaten dolu — bekleyen sinyal yeni değişikliği de kapsar
	}
}
