package application

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

const testUser = "auth|user-1"

// 2024-08-10 is a saturday.
var testNow = time.Date(2024, 8, 10, 12, 0, 0, 0, time.UTC)

type insightFixture struct {
	profile  *domain.Profile
	profiles *fakeProfileRepo
	meals    *fakeMealRepo
	loader   *InsightLoader
}

func newInsightFixture(t *testing.T, timezone string) *insightFixture {
	t.Helper()
	profile, err := domain.NewProfile(testUser, timezone, domain.DefaultGoalTargets())
	require.NoError(t, err)

	f := &insightFixture{
		profile:  profile,
		profiles: newFakeProfileRepo(profile),
		meals:    &fakeMealRepo{},
	}
	f.loader = NewInsightLoader(f.profiles, f.meals, DefaultInsightsConfig(), logging.Discard()).
		WithTimeProvider(fixedTime(testNow))
	return f
}

func (f *insightFixture) addMeal(t *testing.T, at time.Time, n domain.Nutrients) {
	t.Helper()
	e, err := domain.NewLogEntry(f.profile.ID(), at, n, true)
	require.NoError(t, err)
	f.meals.entries = append(f.meals.entries, e)
}

func (f *insightFixture) addDay(t *testing.T, day string, meals int, total domain.Nutrients) {
	t.Helper()
	d, err := domain.ParseDayKey(day)
	require.NoError(t, err)
	for i := 0; i < meals; i++ {
		f.addMeal(t, d.Add(time.Duration(8+4*i)*time.Hour), domain.Nutrients{
			Calories: total.Calories / float64(meals),
			Protein:  total.Protein / float64(meals),
			Carbs:    total.Carbs / float64(meals),
			Fat:      total.Fat / float64(meals),
		})
	}
}

var perfectDay = domain.Nutrients{Calories: 2000, Protein: 150, Carbs: 200, Fat: 65}

func TestInsightLoader_UnknownProfile(t *testing.T) {
	f := newInsightFixture(t, "UTC")
	uc := NewGetTrendsUseCase(f.loader, logging.Discard())

	_, err := uc.Execute(context.Background(), GetTrendsInput{ExternalUserID: "auth|nobody"})
	assert.ErrorIs(t, err, ErrProfileNotFound)

	_, err = uc.Execute(context.Background(), GetTrendsInput{ExternalUserID: ""})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestInsightLoader_RepositoryError(t *testing.T) {
	f := newInsightFixture(t, "UTC")
	f.meals.err = errBoom
	uc := NewGetProgressUseCase(f.loader, logging.Discard())

	_, err := uc.Execute(context.Background(), GetProgressInput{ExternalUserID: testUser})
	assert.ErrorIs(t, err, errBoom)
}

func TestInsightLoader_CachesResults(t *testing.T) {
	f := newInsightFixture(t, "UTC")
	f.addDay(t, "2024-08-10", 3, perfectDay)

	cache := newFakeCache()
	metrics := newFakeMetrics()
	f.loader.WithCache(cache).WithMetrics(metrics)
	uc := NewGetMomentumUseCase(f.loader, logging.Discard())

	first, err := uc.Execute(context.Background(), GetMomentumInput{ExternalUserID: testUser})
	require.NoError(t, err)
	second, err := uc.Execute(context.Background(), GetMomentumInput{ExternalUserID: testUser})
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, cache.sets)
	assert.Equal(t, 1, metrics.hits)
	assert.Equal(t, 1, metrics.misses)
	assert.Equal(t, 2, metrics.durations["momentum"])

	// a new entry changes the fingerprint, so the view is recomputed
	f.addMeal(t, testNow.Add(-time.Hour), domain.Nutrients{Calories: 300})
	_, err = uc.Execute(context.Background(), GetMomentumInput{ExternalUserID: testUser})
	require.NoError(t, err)
	assert.Equal(t, 2, cache.sets)
}

func TestInsightLoader_CacheErrorsAreTolerated(t *testing.T) {
	f := newInsightFixture(t, "UTC")
	f.addDay(t, "2024-08-09", 1, perfectDay)

	cache := newFakeCache()
	cache.getErr = errBoom
	cache.setErr = errBoom
	f.loader.WithCache(cache)
	uc := NewGetProgressUseCase(f.loader, logging.Discard())

	out, err := uc.Execute(context.Background(), GetProgressInput{ExternalUserID: testUser})
	require.NoError(t, err)
	assert.Equal(t, 10, out.TotalXP)
}

func TestFingerprintEntries(t *testing.T) {
	user := domain.NewUserID()
	at := time.Date(2024, 8, 1, 12, 0, 0, 0, time.UTC)
	a, err := domain.NewLogEntry(user, at, domain.Nutrients{Calories: 500}, true)
	require.NoError(t, err)
	b, err := domain.NewLogEntry(user, at.Add(time.Hour), domain.Nutrients{Calories: 700}, true)
	require.NoError(t, err)
	edited := domain.ReconstructLogEntry(b.ID(), user, b.ConsumedAt(), domain.Nutrients{Calories: 750}, true)

	assert.Equal(t, fingerprintEntries([]*domain.LogEntry{a, b}), fingerprintEntries([]*domain.LogEntry{b, a}))
	assert.NotEqual(t, fingerprintEntries([]*domain.LogEntry{a, b}), fingerprintEntries([]*domain.LogEntry{a, edited}))
	assert.NotEqual(t, fingerprintEntries([]*domain.LogEntry{a}), fingerprintEntries([]*domain.LogEntry{a, b}))
	assert.Equal(t, fingerprintEntries(nil), fingerprintEntries([]*domain.LogEntry{}))
}
