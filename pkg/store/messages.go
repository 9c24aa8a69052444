package store

import (
	"time"

	"github.com/gcammarata/wirechat/pkg/models"
)

// SaveMessage archives one direct message stamped with the server's wall
// clock. The auto-incremented row id defines the canonical history order.
func (s *Store) SaveMessage(sender, receiver, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.DirectMessage{
		Sender:   trim(sender),
		Receiver: trim(receiver),
		Body:     body,
		SentAt:   time.Now().Unix(),
	}
	return s.db.Create(&msg).Error
}

// ConversationHistory returns the most recent limit messages exchanged
// between a and b in either direction, ordered oldest first by ascending id.
// The result is identical regardless of argument order.
func (s *Store) ConversationHistory(a, b string, limit int) ([]models.DirectMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var msgs []models.DirectMessage
	err := s.db.
		Where("(sender = ? AND receiver = ?) OR (sender = ? AND receiver = ?)",
			trim(a), trim(b), trim(b), trim(a)).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

// SaveGroupMessage archives one group message with the same immutability and
// ordering contract as SaveMessage.
func (s *Store) SaveGroupMessage(group, sender, body string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	msg := models.GroupMessage{
		GroupName: trim(group),
		Sender:    trim(sender),
		Body:      body,
		SentAt:    time.Now().Unix(),
	}
	return s.db.Create(&msg).Error
}

// GroupHistory returns the most recent limit messages of the group, oldest
// first by ascending id.
func (s *Store) GroupHistory(group string, limit int) ([]models.GroupMessage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var msgs []models.GroupMessage
	err := s.db.
		Where("group_name = ?", trim(group)).
		Order("id DESC").
		Limit(limit).
		Find(&msgs).Error
	if err != nil {
		return nil, err
	}
	reverse(msgs)
	return msgs, nil
}

func reverse[T any](s []T) {
	for i, j := 0, len(s)-1; i < j; i, j = i+1, j-1 {
		s[i], s[j] = s[j], s[i]
	}
}
