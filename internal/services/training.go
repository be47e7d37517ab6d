package services

import (
	"context"
	"log"
	"time"

	"github.com/emifrog/ChatBotAI-RH-Backend/internal/cache"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/models"
	"github.com/emifrog/ChatBotAI-RH-Backend/internal/storage"
)

const catalogCacheTTL = 30 * time.Minute

// TrainingService exposes the training catalog and enrollments
type TrainingService struct {
	store storage.Store
	cache cache.Cache
}

// NewTrainingService creates a new training service
func NewTrainingService(store storage.Store, c cache.Cache) *TrainingService {
	return &TrainingService{store: store, cache: c}
}

// GetCatalog lists the active trainings
func (s *TrainingService) GetCatalog(ctx context.Context) ([]*models.Training, error) {
	const cacheKey = "training_catalog"

	var cached []*models.Training
	if hit, err := s.cache.Get(ctx, cacheKey, &cached); err == nil && hit {
		return cached, nil
	}

	trainings, err := s.store.GetActiveTrainings()
	if err != nil {
		return nil, err
	}
	if err := s.cache.Set(ctx, cacheKey, trainings, catalogCacheTTL); err != nil {
		log.Printf("Failed to cache training catalog: %v", err)
	}
	return trainings, nil
}

// Enroll registers a user on a training session
func (s *TrainingService) Enroll(ctx context.Context, userID, trainingID string) (*models.TrainingEnrollment, error) {
	training, err := s.store.GetTraining(trainingID)
	if err != nil {
		return nil, err
	}

	status := models.EnrollmentConfirmed
	if training.AvailableSpots <= 0 {
		status = models.EnrollmentWaitlist
	}

	enrollment := &models.TrainingEnrollment{
		UserID:     userID,
		TrainingID: trainingID,
		Status:     status,
	}
	if err := s.store.CreateEnrollment(enrollment); err != nil {
		return nil, err
	}

	log.Printf("Training enrollment: user=%s training=%s status=%s", userID, trainingID, status)
	return enrollment, nil
}

// GetUserTrainings lists a user's enrollments
func (s *TrainingService) GetUserTrainings(ctx context.Context, userID string) ([]*models.TrainingEnrollment, error) {
	return s.store.GetUserEnrollments(userID)
}
