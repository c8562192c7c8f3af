package application

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/goccy/go-json"
	"golang.org/x/sync/singleflight"

	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
)

// TimeProvider abstracts time acquisition for testability.
// inject a custom implementation to control time in tests.
type TimeProvider func() time.Time

// RealTime returns the current UTC time.
// use this in production.
func RealTime() time.Time {
	return time.Now().UTC()
}

var (
	// ErrProfileNotFound is returned when the authenticated subject has no profile.
	ErrProfileNotFound = errors.New("profile not found")
)

// InsightCache stores encoded insight payloads by key.
// a miss is (nil, false, nil); errors are tolerated by callers.
type InsightCache interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// InsightMetrics abstracts prometheus metrics for insight views.
type InsightMetrics interface {
	RecordInsightDuration(view string, seconds float64)
	RecordInsightCache(view string, hit bool)
}

// InsightsConfig contains engine parameters shared by every insight view.
type InsightsConfig struct {
	// DefaultTimezone is used when a profile has no usable zone.
	DefaultTimezone string

	// Progression bounds the history XP and streaks are evaluated over.
	Progression domain.ProgressionConfig

	// CacheTTL is how long a computed view stays cached.
	CacheTTL time.Duration
}

// DefaultInsightsConfig returns sensible defaults.
func DefaultInsightsConfig() InsightsConfig {
	return InsightsConfig{
		DefaultTimezone: domain.DefaultTimezone,
		Progression:     domain.DefaultProgressionConfig(),
		CacheTTL:        5 * time.Minute,
	}
}

// fetchPadding widens the UTC fetch range so entries whose local day falls in
// the window are never cut off by the zone offset. the aggregator drops the extras.
const fetchPadding = 24 * time.Hour

// InsightLoader is the read path shared by the insight use cases:
// profile resolution, entry loading and result caching.
type InsightLoader struct {
	profiles     domain.ProfileRepository
	meals        domain.MealLogRepository
	cache        InsightCache
	metrics      InsightMetrics
	group        singleflight.Group
	config       InsightsConfig
	timeProvider TimeProvider
	logger       *logging.Logger
}

// NewInsightLoader creates a new InsightLoader.
func NewInsightLoader(
	profiles domain.ProfileRepository,
	meals domain.MealLogRepository,
	config InsightsConfig,
	logger *logging.Logger,
) *InsightLoader {
	if config.DefaultTimezone == "" {
		config.DefaultTimezone = domain.DefaultTimezone
	}
	config.Progression = config.Progression.WithDefaults()
	return &InsightLoader{
		profiles:     profiles,
		meals:        meals,
		config:       config,
		timeProvider: RealTime,
		logger:       logger.WithComponent("insight_loader"),
	}
}

// WithTimeProvider sets a custom time provider for testing.
func (l *InsightLoader) WithTimeProvider(tp TimeProvider) *InsightLoader {
	l.timeProvider = tp
	return l
}

// WithCache sets the result cache.
// when unset every request computes its view from the log.
func (l *InsightLoader) WithCache(c InsightCache) *InsightLoader {
	l.cache = c
	return l
}

// WithMetrics sets the metrics recorder.
func (l *InsightLoader) WithMetrics(m InsightMetrics) *InsightLoader {
	l.metrics = m
	return l
}

// Config returns the engine parameters.
func (l *InsightLoader) Config() InsightsConfig {
	return l.config
}

// subject is a resolved profile plus the day it currently is for them.
type subject struct {
	profile  *domain.Profile
	location *time.Location
	today    string
}

// resolve loads the profile behind an external id and pins "today" in its zone.
func (l *InsightLoader) resolve(ctx context.Context, externalUserID string) (*subject, error) {
	if strings.TrimSpace(externalUserID) == "" {
		return nil, fmt.Errorf("%w: user id is required", domain.ErrInvalidInput)
	}

	profile, err := l.profiles.FindByExternalID(ctx, externalUserID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, ErrProfileNotFound
		}
		return nil, fmt.Errorf("profile lookup: %w", err)
	}

	loc := domain.ResolveLocation(profile.TimezoneOr(l.config.DefaultTimezone))

	return &subject{
		profile:  profile,
		location: loc,
		today:    domain.DayKeyIn(l.timeProvider(), loc),
	}, nil
}

// load fetches the counted entries that can land in window for this subject.
func (l *InsightLoader) load(ctx context.Context, s *subject, window domain.DateWindow) ([]*domain.LogEntry, error) {
	from, to := window.UTCBounds(s.location)
	entries, err := l.meals.FindCountedByUserInRange(ctx, s.profile.ID(), from.Add(-fetchPadding), to.Add(fetchPadding))
	if err != nil {
		return nil, fmt.Errorf("loading meal logs: %w", err)
	}
	return entries, nil
}

// loadAll fetches entries for several windows, dropping duplicates where the
// padded ranges overlap.
func (l *InsightLoader) loadAll(ctx context.Context, s *subject, windows ...domain.DateWindow) ([]*domain.LogEntry, error) {
	if len(windows) == 1 {
		return l.load(ctx, s, windows[0])
	}

	seen := make(map[domain.MealLogID]bool)
	var out []*domain.LogEntry
	for _, w := range windows {
		entries, err := l.load(ctx, s, w)
		if err != nil {
			return nil, err
		}
		for _, e := range entries {
			if e == nil || seen[e.ID()] {
				continue
			}
			seen[e.ID()] = true
			out = append(out, e)
		}
	}
	return out, nil
}

// serve returns the view for key, computing and caching it on a miss.
// concurrent misses for the same key compute once. the result is decoded
// into out; the returned bool reports a cache hit.
func (l *InsightLoader) serve(ctx context.Context, view, key string, out any, compute func() any) (bool, error) {
	start := time.Now()
	defer func() {
		if l.metrics != nil {
			l.metrics.RecordInsightDuration(view, time.Since(start).Seconds())
		}
	}()

	if l.cache != nil {
		raw, ok, err := l.cache.Get(ctx, key)
		switch {
		case err != nil:
			l.logger.CacheFallback("get", key, err)
		case ok:
			if err := json.Unmarshal(raw, out); err == nil {
				l.recordCache(view, true)
				return true, nil
			}
			l.logger.Warn("discarding undecodable cache entry", "key", key)
		}
	}
	l.recordCache(view, false)

	payload, err, _ := l.group.Do(key, func() (any, error) {
		encoded, err := json.Marshal(compute())
		if err != nil {
			return nil, fmt.Errorf("encoding %s view: %w", view, err)
		}

		if l.cache != nil {
			// best-effort, the log store stays the source of truth
			if err := l.cache.Set(ctx, key, encoded, l.config.CacheTTL); err != nil {
				l.logger.CacheFallback("set", key, err)
			}
		}
		return encoded, nil
	})
	if err != nil {
		return false, err
	}

	if err := json.Unmarshal(payload.([]byte), out); err != nil {
		return false, fmt.Errorf("decoding %s view: %w", view, err)
	}
	return false, nil
}

func (l *InsightLoader) recordCache(view string, hit bool) {
	if l.metrics != nil {
		l.metrics.RecordInsightCache(view, hit)
	}
}

// cacheKey derives a key from everything the view depends on:
// the user, the current day, the goals, the window, extra view parameters
// and a fingerprint of the entries.
func cacheKey(view string, s *subject, window domain.DateWindow, entries []*domain.LogEntry, extra ...string) string {
	goals := s.profile.Goals()
	parts := []string{
		"platewise", "insight", view,
		s.profile.ID().String(),
		s.today,
		s.location.String(),
		formatFloat(goals.Calories) + "/" + formatFloat(goals.Protein) + "/" +
			formatFloat(goals.Carbs) + "/" + formatFloat(goals.Fat),
		window.Start + ".." + window.End,
	}
	parts = append(parts, extra...)
	parts = append(parts, fingerprintEntries(entries))
	return strings.Join(parts, ":")
}

// fingerprintEntries hashes the entries independent of their order.
func fingerprintEntries(entries []*domain.LogEntry) string {
	sums := make([]uint64, 0, len(entries))
	buf := make([]byte, 8)
	for _, e := range entries {
		if e == nil {
			continue
		}
		d := xxhash.New()
		id := e.ID().UUID()
		_, _ = d.Write(id[:])

		binary.LittleEndian.PutUint64(buf, uint64(e.ConsumedAt().UnixNano()))
		_, _ = d.Write(buf)

		n := e.Nutrients()
		for _, v := range []float64{n.Calories, n.Protein, n.Carbs, n.Fat} {
			binary.LittleEndian.PutUint64(buf, math.Float64bits(v))
			_, _ = d.Write(buf)
		}
		if e.IsCounted() {
			_, _ = d.Write([]byte{1})
		}
		sums = append(sums, d.Sum64())
	}
	sort.Slice(sums, func(i, j int) bool { return sums[i] < sums[j] })

	d := xxhash.New()
	for _, s := range sums {
		binary.LittleEndian.PutUint64(buf, s)
		_, _ = d.Write(buf)
	}
	return strconv.FormatUint(d.Sum64(), 16) + "-" + strconv.Itoa(len(sums))
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
