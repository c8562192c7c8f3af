package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joacominatel/platewise/internal/application"
	"github.com/joacominatel/platewise/internal/domain"
	"github.com/joacominatel/platewise/internal/infrastructure/auth"
	"github.com/joacominatel/platewise/internal/infrastructure/cache"
	"github.com/joacominatel/platewise/internal/infrastructure/logging"
	"github.com/joacominatel/platewise/internal/infrastructure/metrics"
)

const (
	testSecret = "api-test-secret"
	testUser   = "user-ext-1"
)

var testNow = time.Date(2024, 8, 10, 12, 0, 0, 0, time.UTC)

type memProfiles struct {
	profiles map[string]*domain.Profile
}

func (r *memProfiles) Save(_ context.Context, p *domain.Profile) error {
	r.profiles[p.ExternalID()] = p
	return nil
}

func (r *memProfiles) FindByExternalID(_ context.Context, externalID string) (*domain.Profile, error) {
	p, ok := r.profiles[externalID]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return p, nil
}

type memMeals struct {
	mu      sync.Mutex
	entries []*domain.LogEntry
}

func (r *memMeals) Save(_ context.Context, e *domain.LogEntry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, e)
	return nil
}

func (r *memMeals) SaveBatch(ctx context.Context, entries []*domain.LogEntry) error {
	for _, e := range entries {
		_ = r.Save(ctx, e)
	}
	return nil
}

func (r *memMeals) FindCountedByUserInRange(_ context.Context, userID domain.UserID, from, to time.Time) ([]*domain.LogEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*domain.LogEntry
	for _, e := range r.entries {
		if e.UserID() == userID && e.IsCounted() && !e.ConsumedAt().Before(from) && e.ConsumedAt().Before(to) {
			out = append(out, e)
		}
	}
	return out, nil
}

type apiFixture struct {
	echo  *echo.Echo
	meals *memMeals
}

type fixtureOption func(*fixtureOpts)

type fixtureOpts struct {
	entryChan chan *domain.LogEntry
	ready     map[string]Pinger
}

func withEntryChannel(ch chan *domain.LogEntry) fixtureOption {
	return func(o *fixtureOpts) { o.entryChan = ch }
}

func withReadyChecks(checks map[string]Pinger) fixtureOption {
	return func(o *fixtureOpts) { o.ready = checks }
}

func newAPIFixture(t *testing.T, opts ...fixtureOption) *apiFixture {
	t.Helper()
	var o fixtureOpts
	for _, opt := range opts {
		opt(&o)
	}

	logger := logging.Discard()
	profile, err := domain.NewProfile(testUser, "UTC", domain.DefaultGoalTargets())
	require.NoError(t, err)

	profiles := &memProfiles{profiles: map[string]*domain.Profile{testUser: profile}}
	meals := &memMeals{}
	clock := func() time.Time { return testNow }

	loader := application.NewInsightLoader(profiles, meals, application.DefaultInsightsConfig(), logger).
		WithTimeProvider(clock).
		WithCache(cache.NewMemoryCache(100))

	logMeal := application.NewLogMealUseCase(meals, profiles, logger).WithTimeProvider(clock)
	if o.entryChan != nil {
		logMeal.WithEntryChannel(o.entryChan)
	}

	server := NewServer(DefaultServerConfig(), logger)
	RegisterRoutes(server.Echo(), RouterConfig{
		LogMealUseCase: logMeal,
		Insights: InsightUseCases{
			Calendar: application.NewGetCalendarUseCase(loader, logger),
			Trends:   application.NewGetTrendsUseCase(loader, logger),
			Compare:  application.NewComparePeriodsUseCase(loader, logger),
			Progress: application.NewGetProgressUseCase(loader, logger),
			Momentum: application.NewGetMomentumUseCase(loader, logger),
		},
		TokenValidator: auth.NewJWTValidator(testSecret),
		ReadyChecks:    o.ready,
		Logger:         logger,
		Metrics:        metrics.New(),
	})

	return &apiFixture{echo: server.Echo(), meals: meals}
}

func bearer(t *testing.T, subject string) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + token
}

func (f *apiFixture) do(t *testing.T, method, path, body, subject string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if subject != "" {
		req.Header.Set(echo.HeaderAuthorization, bearer(t, subject))
	}
	rec := httptest.NewRecorder()
	f.echo.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func TestHealth(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/health", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body HealthResponse
	decode(t, rec, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "platewise", body.Service)
}

func TestReady(t *testing.T) {
	t.Run("all dependencies up", func(t *testing.T) {
		f := newAPIFixture(t, withReadyChecks(map[string]Pinger{
			"database": PingFunc(func(context.Context) error { return nil }),
		}))

		rec := f.do(t, http.MethodGet, "/ready", "", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var body HealthResponse
		decode(t, rec, &body)
		assert.Equal(t, "ok", body.Checks["database"])
	})

	t.Run("dependency down", func(t *testing.T) {
		f := newAPIFixture(t, withReadyChecks(map[string]Pinger{
			"database": PingFunc(func(context.Context) error { return errors.New("connection refused") }),
		}))

		rec := f.do(t, http.MethodGet, "/ready", "", "")
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)

		var body HealthResponse
		decode(t, rec, &body)
		assert.Equal(t, "not_ready", body.Status)
		assert.Equal(t, "connection refused", body.Checks["database"])
	})
}

func TestAuthRequired(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/insights/progress", "", "")
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	var body ErrorResponse
	decode(t, rec, &body)
	assert.Equal(t, "Unauthorized", body.Error)
}

func TestUnknownProfile(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodGet, "/api/v1/insights/momentum", "", "someone-else")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestLogMealThenReadViews(t *testing.T) {
	f := newAPIFixture(t)

	rec := f.do(t, http.MethodPost, "/api/v1/meals",
		`{"calories":650,"protein":45,"carbs":70,"fat":20,"consumedAt":"2024-08-10T08:30:00Z"}`, testUser)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var logged application.LogMealOutput
	decode(t, rec, &logged)
	assert.Equal(t, "2024-08-10", logged.DayKey)
	assert.True(t, logged.Counted)
	assert.False(t, logged.Async)

	t.Run("calendar", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/insights/calendar?month=2024-08", "", testUser)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out application.GetCalendarOutput
		decode(t, rec, &out)
		assert.Len(t, out.Days, 31)
		assert.Equal(t, 1, out.Days["2024-08-10"].MealCount)
		assert.Equal(t, domain.DayNoData, out.Days["2024-08-09"].DayStatus)
	})

	t.Run("progress", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/insights/progress", "", testUser)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out application.GetProgressOutput
		decode(t, rec, &out)
		assert.Equal(t, domain.FirstMealXP, out.TotalXP)
		assert.Equal(t, 1, out.Streak)
	})

	t.Run("trends", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/insights/trends?days=7", "", testUser)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out application.GetTrendsOutput
		decode(t, rec, &out)
		assert.Len(t, out.Series, 7)
		assert.Equal(t, 1, out.Confidence.LoggedDays)
	})

	t.Run("compare", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/insights/compare?days=7", "", testUser)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out application.ComparePeriodsOutput
		decode(t, rec, &out)
		assert.Equal(t, 1, out.Current.LoggedDays)
		assert.Equal(t, 0, out.Previous.LoggedDays)
		assert.Equal(t, 100, out.Deltas.Calories)
	})

	t.Run("momentum", func(t *testing.T) {
		rec := f.do(t, http.MethodGet, "/api/v1/insights/momentum", "", testUser)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var out application.GetMomentumOutput
		decode(t, rec, &out)
		assert.Equal(t, 1, out.Streak)
		assert.NotEmpty(t, out.Level)
	})
}

func TestValidationErrors(t *testing.T) {
	f := newAPIFixture(t)

	tests := []struct {
		name   string
		method string
		path   string
		body   string
	}{
		{"negative calories", http.MethodPost, "/api/v1/meals", `{"calories":-1}`},
		{"malformed body", http.MethodPost, "/api/v1/meals", `{"calories":`},
		{"unsupported trend window", http.MethodGet, "/api/v1/insights/trends?days=5", ""},
		{"bad month", http.MethodGet, "/api/v1/insights/calendar?month=2024-13", ""},
		{"partial explicit windows", http.MethodGet, "/api/v1/insights/compare?currentStart=2024-08-01&currentEnd=2024-08-07", ""},
		{"overlapping windows", http.MethodGet, "/api/v1/insights/compare?currentStart=2024-08-01&currentEnd=2024-08-07&previousStart=2024-08-05&previousEnd=2024-08-10", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := f.do(t, tt.method, tt.path, tt.body, testUser)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())

			var body ErrorResponse
			decode(t, rec, &body)
			assert.Equal(t, "Bad Request", body.Error)
		})
	}
}

func TestLogMeal_BufferFull(t *testing.T) {
	// unbuffered and never read: every async send fails immediately
	f := newAPIFixture(t, withEntryChannel(make(chan *domain.LogEntry)))

	rec := f.do(t, http.MethodPost, "/api/v1/meals", `{"calories":300}`, testUser)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestLogMeal_AsyncAccepted(t *testing.T) {
	ch := make(chan *domain.LogEntry, 1)
	f := newAPIFixture(t, withEntryChannel(ch))

	rec := f.do(t, http.MethodPost, "/api/v1/meals", `{"calories":300,"counted":false}`, testUser)
	require.Equal(t, http.StatusAccepted, rec.Code, rec.Body.String())

	entry := <-ch
	assert.False(t, entry.IsCounted())
	assert.Equal(t, testNow, entry.ConsumedAt())
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		code int
	}{
		{application.ErrProfileNotFound, http.StatusNotFound},
		{domain.ErrNotFound, http.StatusNotFound},
		{domain.ErrInvalidInput, http.StatusBadRequest},
		{domain.ErrInvalidWindow, http.StatusBadRequest},
		{application.ErrIngestionBufferFull, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		he, ok := mapDomainError(tt.err).(*echo.HTTPError)
		require.True(t, ok)
		assert.Equal(t, tt.code, he.Code, tt.err.Error())
	}
}
