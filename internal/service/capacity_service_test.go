package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/academy-booking-api/internal/models"
	appErrors "github.com/noah-isme/academy-booking-api/pkg/errors"
)

type mockCapacityCache struct {
	store   map[string][]byte
	gets    int
	sets    int
	deletes int
}

func (m *mockCapacityCache) Get(ctx context.Context, key string, dest interface{}) error {
	m.gets++
	raw, ok := m.store[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *mockCapacityCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	m.sets++
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	if m.store == nil {
		m.store = make(map[string][]byte)
	}
	m.store[key] = raw
	return nil
}

func (m *mockCapacityCache) Delete(ctx context.Context, keys ...string) {
	m.deletes++
	for _, key := range keys {
		delete(m.store, key)
	}
}

type countingCacheRecorder struct {
	hits   int
	misses int
}

func (c *countingCacheRecorder) RecordCacheOperation(hit bool) {
	if hit {
		c.hits++
	} else {
		c.misses++
	}
}

func capacityFixture() *mockSlotReader {
	return &mockSlotReader{
		slots: []models.SlotMonth{
			{ID: "2024-06_16:00-17:30_MWF", SeasonID: "summer", Month: "2024-06", TimeSlot: "16:00-17:30", DayType: models.DayTypeMWF, Capacity: 2},
			{ID: "2024-07_16:00-17:30_MWF", SeasonID: "summer", Month: "2024-07", TimeSlot: "16:00-17:30", DayType: models.DayTypeMWF, Capacity: 2},
			{ID: "2024-08_16:00-17:30_MWF", SeasonID: "summer", Month: "2024-08", TimeSlot: "16:00-17:30", DayType: models.DayTypeMWF, Capacity: 2},
		},
		enrollments: make(map[string][]models.SlotEnrollment),
	}
}

func frozenCapacityService(slots *mockSlotReader, cache capacityCache, enabled bool) *CapacityService {
	svc := NewCapacityService(slots, cache, enabled, time.Minute, nil, zap.NewNop())
	svc.now = func() time.Time { return day(2024, 6, 10) }
	return svc
}

func TestCapacityServicePicksCurrentMonth(t *testing.T) {
	slots := capacityFixture()
	slots.enrollments["2024-06_16:00-17:30_MWF"] = []models.SlotEnrollment{
		{StudentID: "s1", StartDate: day(2024, 6, 1), EndDate: day(2024, 6, 30)},
	}
	svc := frozenCapacityService(slots, nil, false)

	info, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, models.Month("2024-06"), info.Month)
	assert.Equal(t, 2, info.TotalCapacity)
	assert.Equal(t, 1, info.CurrentEnrollment)
	assert.Equal(t, 1, info.Available)
	assert.False(t, info.IsFull)
	assert.Nil(t, info.EarliestAvailableDate)
}

func TestCapacityServiceFallsBackToLastMonth(t *testing.T) {
	slots := capacityFixture()
	svc := frozenCapacityService(slots, nil, false)
	svc.now = func() time.Time { return day(2025, 1, 15) }

	info, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, models.Month("2024-08"), info.Month)
}

func TestCapacityServiceProjectsDropOff(t *testing.T) {
	slots := capacityFixture()
	slots.enrollments["2024-06_16:00-17:30_MWF"] = []models.SlotEnrollment{
		{StudentID: "s1", StartDate: day(2024, 6, 1), EndDate: day(2024, 6, 14)},
		{StudentID: "s2", StartDate: day(2024, 6, 1), EndDate: day(2024, 6, 20)},
	}
	// July and August full as well, so the drop-off wins
	full := []models.SlotEnrollment{
		{StudentID: "s3", StartDate: day(2024, 7, 1), EndDate: day(2024, 8, 31)},
		{StudentID: "s4", StartDate: day(2024, 7, 1), EndDate: day(2024, 8, 31)},
	}
	slots.enrollments["2024-07_16:00-17:30_MWF"] = full
	slots.enrollments["2024-08_16:00-17:30_MWF"] = full
	svc := frozenCapacityService(slots, nil, false)

	info, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.True(t, info.IsFull)
	require.NotNil(t, info.EarliestAvailableDate)
	assert.Equal(t, day(2024, 6, 15), *info.EarliestAvailableDate)
}

func TestCapacityServiceProjectsLaterOpenMonth(t *testing.T) {
	slots := capacityFixture()
	slots.enrollments["2024-06_16:00-17:30_MWF"] = []models.SlotEnrollment{
		{StudentID: "s1", StartDate: day(2024, 6, 1), EndDate: day(2024, 8, 31)},
		{StudentID: "s2", StartDate: day(2024, 6, 1), EndDate: day(2024, 8, 31)},
	}
	svc := frozenCapacityService(slots, nil, false)

	info, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.True(t, info.IsFull)
	require.NotNil(t, info.EarliestAvailableDate)
	// July has spare seats and opens before the June windows end
	assert.Equal(t, day(2024, 7, 1), *info.EarliestAvailableDate)
}

func TestCapacityServiceUsesCache(t *testing.T) {
	slots := capacityFixture()
	cache := &mockCapacityCache{}
	svc := frozenCapacityService(slots, cache, true)

	first, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	second, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, first.SlotID, second.SlotID)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 2, cache.gets)
}

func TestCapacityServiceRecordsCacheLookups(t *testing.T) {
	slots := capacityFixture()
	cache := &mockCapacityCache{}
	recorder := &countingCacheRecorder{}
	svc := NewCapacityService(slots, cache, true, time.Minute, recorder, zap.NewNop())
	svc.now = func() time.Time { return day(2024, 6, 10) }

	_, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, 0, recorder.hits)
	assert.Equal(t, 1, recorder.misses)

	_, err = svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, 1, recorder.hits)
	assert.Equal(t, 1, recorder.misses)
}

func TestCapacityServiceInvalidateDropsSnapshot(t *testing.T) {
	slots := capacityFixture()
	cache := &mockCapacityCache{}
	svc := frozenCapacityService(slots, cache, true)

	_, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	svc.Invalidate(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	assert.Equal(t, 1, cache.deletes)

	// snapshot is recomputed and re-cached after invalidation
	_, err = svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeMWF, "16:00-17:30")
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

func TestCapacityServiceNoSlotsForPattern(t *testing.T) {
	svc := frozenCapacityService(capacityFixture(), nil, false)

	_, err := svc.GetCapacityInfo(context.Background(), "summer", models.DayTypeTTH, "16:00-17:30")
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, appErrors.ErrNotFound.Code, appErr.Code)
}
