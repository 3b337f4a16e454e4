package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
)

type capacitySlotReader interface {
	ListByPattern(ctx context.Context, seasonID string, dayType models.DayType, timeSlot string) ([]models.SlotMonth, error)
	ListEnrollmentsForSlots(ctx context.Context, slotIDs []string) (map[string][]models.SlotEnrollment, error)
}

type capacityCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string)
}

type cacheMetricsRecorder interface {
	RecordCacheOperation(hit bool)
}

const capacityKeyFormat = "capacity:%s:%s:%s"

// CapacityService produces the advisory capacity snapshot for a recurring
// pattern. The snapshot is read-only and race-tolerant: it is not
// re-validated when a booking is later attempted.
type CapacityService struct {
	slots        capacitySlotReader
	cache        capacityCache
	cacheEnabled bool
	cacheTTL     time.Duration
	metrics      cacheMetricsRecorder
	logger       *zap.Logger
	now          func() time.Time
}

// NewCapacityService constructs CapacityService. cache and metrics may be nil.
func NewCapacityService(slots capacitySlotReader, cache capacityCache, cacheEnabled bool, cacheTTL time.Duration, metrics cacheMetricsRecorder, logger *zap.Logger) *CapacityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cacheTTL <= 0 {
		cacheTTL = time.Minute
	}
	return &CapacityService{
		slots:        slots,
		cache:        cache,
		cacheEnabled: cacheEnabled && cache != nil,
		cacheTTL:     cacheTTL,
		metrics:      metrics,
		logger:       logger,
		now:          time.Now,
	}
}

// GetCapacityInfo reports seat availability for the pattern's relevant
// slot-month: the earliest month at or after the current one, falling back
// to the season's last month once the season is entirely past. When the
// slot is full it projects the earliest date a seat frees up, either
// through an enrollment dropping off or a later month with spare seats.
func (s *CapacityService) GetCapacityInfo(ctx context.Context, seasonID string, dayType models.DayType, timeSlot string) (*models.CapacityInfo, error) {
	if seasonID == "" || timeSlot == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "season id and time slot are required")
	}
	if !dayType.Valid() {
		return nil, appErrors.Clone(appErrors.ErrValidation, "unknown day type")
	}

	cacheKey := fmt.Sprintf(capacityKeyFormat, seasonID, dayType, timeSlot)
	if s.cacheEnabled {
		var cached models.CapacityInfo
		if err := s.cache.Get(ctx, cacheKey, &cached); err == nil {
			s.recordCacheLookup(true)
			return &cached, nil
		}
		s.recordCacheLookup(false)
	}

	slots, err := s.slots.ListByPattern(ctx, seasonID, dayType, timeSlot)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load slots")
	}
	if len(slots) == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no slots exist for pattern")
	}

	currentMonth := models.MonthOf(s.now())
	relevant := slots[len(slots)-1]
	relevantIdx := len(slots) - 1
	for i, slot := range slots {
		if !slot.Month.Before(currentMonth) {
			relevant = slot
			relevantIdx = i
			break
		}
	}

	slotIDs := make([]string, len(slots))
	for i, slot := range slots {
		slotIDs[i] = slot.ID
	}
	enrollMap, err := s.slots.ListEnrollmentsForSlots(ctx, slotIDs)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load enrollments")
	}

	current := len(enrollMap[relevant.ID])
	available := relevant.Capacity - current
	if available < 0 {
		available = 0
	}
	info := &models.CapacityInfo{
		SlotID:            relevant.ID,
		Month:             relevant.Month,
		TotalCapacity:     relevant.Capacity,
		CurrentEnrollment: current,
		Available:         available,
		IsFull:            current >= relevant.Capacity,
	}

	if info.IsFull {
		info.EarliestAvailableDate = s.projectEarliestAvailable(relevant, slots[relevantIdx+1:], enrollMap)
	}

	if s.cacheEnabled {
		if err := s.cache.Set(ctx, cacheKey, info, s.cacheTTL); err != nil {
			s.logger.Sugar().Warnw("capacity cache write failed", "key", cacheKey, "error", err)
		}
	}
	return info, nil
}

// Invalidate drops the cached snapshot for one pattern. Called after a
// booking mutates the pattern's enrollment so readers do not serve a stale
// snapshot for the rest of the TTL.
func (s *CapacityService) Invalidate(ctx context.Context, seasonID string, dayType models.DayType, timeSlot string) {
	if !s.cacheEnabled {
		return
	}
	s.cache.Delete(ctx, fmt.Sprintf(capacityKeyFormat, seasonID, dayType, timeSlot))
}

func (s *CapacityService) recordCacheLookup(hit bool) {
	if s.metrics != nil {
		s.metrics.RecordCacheOperation(hit)
	}
}

func (s *CapacityService) projectEarliestAvailable(relevant models.SlotMonth, laterSlots []models.SlotMonth, enrollMap map[string][]models.SlotEnrollment) *time.Time {
	var earliest *time.Time

	// earliest drop-off within the relevant slot
	for _, e := range enrollMap[relevant.ID] {
		dropOff := models.DateOnly(e.EndDate).AddDate(0, 0, 1)
		if earliest == nil || dropOff.Before(*earliest) {
			d := dropOff
			earliest = &d
		}
	}

	// first later month with a spare seat
	for _, slot := range laterSlots {
		if len(enrollMap[slot.ID]) < slot.Capacity {
			candidate := slot.Month.Start()
			if earliest == nil || candidate.Before(*earliest) {
				earliest = &candidate
			}
			break
		}
	}
	return earliest
}
