package editor

import (
	"slices"
	"time"

	"github.com/aretw0/patchbay/pkg/domain"
)

func (s *Session) notify(text string) {
	s.noticeSeq++
	n := domain.Notice{ID: s.noticeSeq, Text: text, At: time.Now()}
	s.notices = append(s.notices, n)
	s.logger.Info("Backend notice", "id", n.ID, "text", text)
	if s.hooks.OnNotice != nil {
		s.hooks.OnNotice(n)
	}
	if s.noticeTTL > 0 {
		time.AfterFunc(s.noticeTTL, func() { s.expire(n.ID) })
	}
}

func (s *Session) expire(id int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i := slices.IndexFunc(s.notices, func(n domain.Notice) bool { return n.ID == id })
	if i < 0 {
		return
	}
	n := s.notices[i]
	s.notices = slices.Delete(s.notices, i, i+1)
	if s.hooks.OnNoticeExpired != nil {
		s.hooks.OnNoticeExpired(n)
	}
}

// Notices returns the notices that have not expired yet, oldest first.
func (s *Session) Notices() []domain.Notice {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.notices)
}
