package antiflood

import (
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Suppressor гасит повторные предупреждения одному пользователю.
// Сами сообщения-нарушения удаляются всегда, текст шлётся не чаще
// одного раза за период.
type Suppressor struct {
	recent *expirable.LRU[int64, time.Time]
}

func NewSuppressor(cooldown time.Duration) *Suppressor {
	return &Suppressor{
		recent: expirable.NewLRU[int64, time.Time](4096, nil, cooldown),
	}
}

// ShouldWarn — false, если предупреждение этому пользователю уже
// отправлялось за период. Иначе фиксирует отправку и даёт true.
func (s *Suppressor) ShouldWarn(userID int64) bool {
	if _, ok := s.recent.Get(userID); ok {
		return false
	}
	s.recent.Add(userID, time.Now())
	return true
}
