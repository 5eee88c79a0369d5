package service

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"go-gin-pd-registration/internal/model"
	"go-gin-pd-registration/internal/repository"
	apperrors "go-gin-pd-registration/pkg/app_errors"

	"github.com/jackc/pgx/v5"
)

type AccommodationService interface {
	// 建立需求並連結到場次，不要求報名存在
	Record(ctx context.Context, tx pgx.Tx, eventID int, requestedBy *int, required bool, note string) (*model.AccommodationNote, error)
	ListByEvent(ctx context.Context, eventID int) ([]*model.AccommodationNote, error)
}

type AccommodationServiceImpl struct {
	repository      repository.AccommodationRepository
	eventRepository repository.EventRepository
}

func NewAccommodationService(
	accommodationRepository repository.AccommodationRepository,
	eventRepository repository.EventRepository,
) AccommodationService {
	return &AccommodationServiceImpl{
		repository:      accommodationRepository,
		eventRepository: eventRepository,
	}
}

func (s *AccommodationServiceImpl) Record(ctx context.Context, tx pgx.Tx, eventID int, requestedBy *int, required bool, note string) (*model.AccommodationNote, error) {
	note = strings.TrimSpace(note)
	if n := utf8.RuneCountInString(note); n > model.NoteMaxLength {
		return nil, fmt.Errorf("%w: accommodation note is %d characters, max %d", apperrors.ErrInvalidInput, n, model.NoteMaxLength)
	}

	record := &model.AccommodationNote{
		EventID:     eventID,
		Required:    required,
		RequestedBy: requestedBy,
	}
	if note != "" {
		record.Note = &note
	}

	return s.repository.Create(ctx, tx, record)
}

func (s *AccommodationServiceImpl) ListByEvent(ctx context.Context, eventID int) ([]*model.AccommodationNote, error) {
	if _, err := s.eventRepository.FindByID(ctx, eventID); err != nil {
		return nil, err
	}
	return s.repository.ListByEvent(ctx, eventID)
}
