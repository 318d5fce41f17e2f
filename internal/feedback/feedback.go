// SPDX-License-Identifier: MIT
package feedback

import (
	"context"
	"errors"
	"fmt"
	"html"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
	"github.com/rs/zerolog"
	"github.com/thatcatcamp/menukitty/internal/email"
	"github.com/thatcatcamp/menukitty/internal/logging"
	"github.com/thatcatcamp/menukitty/internal/models"
	"gorm.io/gorm"
)

const (
	maxMessageLen = 2000
	maxNameLen    = 80
)

var (
	ErrInvalidRating = errors.New("rating must be between 1 and 5")
	ErrEmptyMessage  = errors.New("message is required")
)

// Input is a guest submission before sanitizing.
type Input struct {
	Rating   int    `json:"rating" form:"rating"`
	Name     string `json:"name" form:"name"`
	Message  string `json:"message" form:"message"`
	Language string `json:"language" form:"language"`
}

// Service stores feedback and notifies restaurants.
type Service struct {
	db     *gorm.DB
	mailer email.Sender
	policy *bluemonday.Policy
	log    zerolog.Logger
	wg     sync.WaitGroup
}

// NewService creates a service. mailer may be nil to disable notifications.
func NewService(db *gorm.DB, mailer email.Sender) *Service {
	return &Service{
		db:     db,
		mailer: mailer,
		policy: bluemonday.StrictPolicy(),
		log:    logging.For("feedback"),
	}
}

// Submit sanitizes and stores in. When the restaurant has a notify address
// and a mailer is configured the notification is sent in the background.
func (s *Service) Submit(ctx context.Context, r *models.Restaurant, in Input) (*models.Feedback, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, ErrInvalidRating
	}

	message := truncate(s.sanitize(in.Message), maxMessageLen)
	if message == "" {
		return nil, ErrEmptyMessage
	}

	fb := &models.Feedback{
		RestaurantID: r.ID,
		Rating:       in.Rating,
		Name:         truncate(s.sanitize(in.Name), maxNameLen),
		Message:      message,
		Language:     truncate(strings.TrimSpace(in.Language), 16),
	}
	if err := s.db.WithContext(ctx).Create(fb).Error; err != nil {
		return nil, fmt.Errorf("failed to save feedback: %w", err)
	}

	s.log.Info().Str("restaurant", r.Slug).Int("rating", fb.Rating).Msg("Feedback received")

	if s.mailer != nil && r.NotifyEmail != "" {
		subject, body := email.FeedbackNotification(r.Name, fb.Rating, fb.Name, fb.Message)
		to := r.NotifyEmail
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			if err := s.mailer.SendEmail(to, subject, body); err != nil {
				s.log.Warn().Err(err).Str("restaurant", r.Slug).Msg("Failed to send feedback notification")
			}
		}()
	}

	return fb, nil
}

// List returns a restaurant's feedback, newest first.
func (s *Service) List(ctx context.Context, restaurantID uint, limit int) ([]models.Feedback, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	var out []models.Feedback
	err := s.db.WithContext(ctx).
		Where("restaurant_id = ?", restaurantID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback: %w", err)
	}
	return out, nil
}

// Delete removes one feedback entry.
func (s *Service) Delete(ctx context.Context, restaurantID, id uint) error {
	res := s.db.WithContext(ctx).Where("restaurant_id = ?", restaurantID).Delete(&models.Feedback{}, id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete feedback: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Wait blocks until background notifications have finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// sanitize strips markup and returns plain text; pages escape it on output.
func (s *Service) sanitize(v string) string {
	return strings.TrimSpace(html.UnescapeString(s.policy.Sanitize(v)))
}

func truncate(v string, n int) string {
	if utf8.RuneCountInString(v) <= n {
		return v
	}
	return string([]rune(v)[:n])
}
