package service

import (
	"context"
	"database/sql"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
)

type seasonReader interface {
	FindByID(ctx context.Context, id string) (*models.Season, error)
	ListTemplates(ctx context.Context, seasonID string) ([]models.SlotTemplate, error)
}

type slotCatalogRepository interface {
	ListBySeasonMonth(ctx context.Context, seasonID string, month models.Month) ([]models.SlotMonthSummary, error)
	ListEnrollmentsForSlots(ctx context.Context, slotIDs []string) (map[string][]models.SlotEnrollment, error)
	BulkCreate(ctx context.Context, slots []models.SlotMonth) (int, error)
	ResyncCapacity(ctx context.Context, seasonID string) (int, error)
}

type studentExistenceReader interface {
	ExistingIDs(ctx context.Context, ids []string) (map[string]bool, error)
}

// SlotService manages the slot-month catalog: generation from templates,
// capacity resync and monthly listings with display occupancy.
type SlotService struct {
	seasons  seasonReader
	slots    slotCatalogRepository
	students studentExistenceReader
	logger   *zap.Logger
}

// NewSlotService constructs SlotService.
func NewSlotService(seasons seasonReader, slots slotCatalogRepository, students studentExistenceReader, logger *zap.Logger) *SlotService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SlotService{seasons: seasons, slots: slots, students: students, logger: logger}
}

// GetByMonth lists a season's slots for one month. EnrolledCount is the
// raw enrollment count; OccupiedSeats is the peak-overlap occupancy used
// for display.
func (s *SlotService) GetByMonth(ctx context.Context, seasonID string, month models.Month) ([]models.SlotMonthSummary, error) {
	summaries, err := s.slots.ListBySeasonMonth(ctx, seasonID, month)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list slots")
	}
	if len(summaries) == 0 {
		return summaries, nil
	}

	slotIDs := make([]string, len(summaries))
	for i, summary := range summaries {
		slotIDs[i] = summary.ID
	}
	enrollMap, err := s.slots.ListEnrollmentsForSlots(ctx, slotIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	studentSet := make(map[string]struct{})
	for _, enrollments := range enrollMap {
		for _, e := range enrollments {
			studentSet[e.StudentID] = struct{}{}
		}
	}
	studentIDs := make([]string, 0, len(studentSet))
	for id := range studentSet {
		studentIDs = append(studentIDs, id)
	}
	known, err := s.students.ExistingIDs(ctx, studentIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to verify students")
	}

	for i := range summaries {
		summaries[i].OccupiedSeats = ComputeOccupiedSeats(summaries[i].SlotMonth, enrollMap[summaries[i].ID], known)
	}
	return summaries, nil
}

// GenerateForSeason materialises slot-months from the season's template
// catalog for every month in the season range. Existing keys are skipped,
// so regeneration is safe. Returns the number of slots created.
func (s *SlotService) GenerateForSeason(ctx context.Context, seasonID string) (int, error) {
	season, err := s.seasons.FindByID(ctx, seasonID)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "season not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load season")
	}
	templates, err := s.seasons.ListTemplates(ctx, seasonID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slot templates")
	}
	if len(templates) == 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidOperation, "season has no slot templates")
	}

	months := models.MonthsBetween(season.StartMonth, season.EndMonth)
	if len(months) == 0 {
		return 0, appErrors.Clone(appErrors.ErrInvalidOperation, "season has an empty month range")
	}

	slots := make([]models.SlotMonth, 0, len(months)*len(templates))
	for _, month := range months {
		for _, tpl := range templates {
			slots = append(slots, models.SlotMonth{
				ID:       models.SlotKey(month, tpl.TimeSlot, tpl.DayType),
				SeasonID: seasonID,
				Month:    month,
				TimeSlot: tpl.TimeSlot,
				DayType:  tpl.DayType,
				Category: tpl.Category,
				Capacity: tpl.Capacity,
				IsBreak:  tpl.IsBreak,
			})
		}
	}

	created, err := s.slots.BulkCreate(ctx, slots)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create slots")
	}
	s.logger.Sugar().Infow("season slots generated", "season", seasonID, "months", len(months), "created", created)
	return created, nil
}

// ResyncCapacity copies template capacity down onto existing slot-months
// after template edits. Returns the number of slots updated.
func (s *SlotService) ResyncCapacity(ctx context.Context, seasonID string) (int, error) {
	if _, err := s.seasons.FindByID(ctx, seasonID); err != nil {
		if err == sql.ErrNoRows {
			return 0, appErrors.Clone(appErrors.ErrNotFound, "season not found")
		}
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load season")
	}
	updated, err := s.slots.ResyncCapacity(ctx, seasonID)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resync capacity")
	}
	return updated, nil
}
