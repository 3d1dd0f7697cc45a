package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/xaenox/school-bot/internal/classifier"
	"github.com/xaenox/school-bot/internal/dateparse"
	"github.com/xaenox/school-bot/internal/models"
	"github.com/xaenox/school-bot/internal/provider"
	"github.com/xaenox/school-bot/internal/storage"
)

type TimetableProvider interface {
	Timetable(ctx context.Context, grade, classNumber int, date time.Time) provider.Result
}

type MealProvider interface {
	Meal(ctx context.Context, date time.Time) provider.Result
}

type CalendarProvider interface {
	Events(ctx context.Context, from, to time.Time) provider.Result
}

// FallbackClassifier gets a second look at utterances no keyword matched.
type FallbackClassifier interface {
	Classify(ctx context.Context, text string) (models.Intent, error)
}

type Providers struct {
	Timetable TimetableProvider
	Meal      MealProvider
	Calendar  CalendarProvider
}

var errNotConfigured = errors.New("provider not configured")

// Bot routes one utterance at a time. It holds no per-conversation state; the
// registry is the only thing that survives between requests.
type Bot struct {
	storage    storage.Storage
	classifier classifier.Classifier
	fallback   FallbackClassifier
	providers  Providers
	logger     *zap.Logger
}

func New(store storage.Storage, clf classifier.Classifier, providers Providers, logger *zap.Logger) *Bot {
	return &Bot{
		storage:    store,
		classifier: clf,
		providers:  providers,
		logger:     logger,
	}
}

// WithFallbackClassifier enables a second classifier for unmatched utterances.
func (b *Bot) WithFallbackClassifier(f FallbackClassifier) *Bot {
	b.fallback = f
	return b
}

// Handle answers one utterance. now is the reference time, already in the
// school's local timezone. Handle always returns a reply; failures are described
// in the reply text.
func (b *Bot) Handle(ctx context.Context, userID, text string, now time.Time) models.Reply {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return models.NewReply(msgNoUserID, defaultQuickReplies()...)
	}
	text = strings.TrimSpace(text)
	logger := b.logger.With(zap.String("user_id", userID))

	user, err := b.storage.GetUser(ctx, userID)
	if err != nil && !errors.Is(err, storage.ErrUserNotFound) {
		logger.Error("Failed to get user", zap.Error(err))
		return models.NewReply(msgRegistryError, defaultQuickReplies()...)
	}

	if reg, ok := classifier.ParseRegistration(text); ok {
		return b.register(ctx, logger, userID, user, reg)
	}

	if user == nil {
		return models.NewReply(msgOnboarding, onboardingQuickReplies()...)
	}

	intent := b.classify(ctx, logger, text)
	logger.Debug("Classified utterance", zap.String("intent", string(intent)))

	switch intent {
	case models.IntentTimetable:
		return b.handleTimetable(ctx, logger, user, text, now)
	case models.IntentMeal:
		return b.handleMeal(ctx, logger, text, now)
	case models.IntentCalendarWeek:
		from, to := dateparse.WeekRange(now)
		return b.handleCalendar(ctx, logger, from, to, headerCalendarWeek, noEventsWeek)
	case models.IntentCalendarMonth:
		from, to := dateparse.MonthRange(now)
		return b.handleCalendar(ctx, logger, from, to, headerCalendarMonth, noEventsMonth)
	default:
		return models.NewReply(msgHelp, defaultQuickReplies()...)
	}
}

func (b *Bot) register(ctx context.Context, logger *zap.Logger, userID string, existing *models.UserProfile, reg classifier.Registration) models.Reply {
	if reg.Err != nil {
		logger.Info("Rejected registration", zap.Error(reg.Err))
		return models.NewReply(msgUsage, usageQuickReplies()...)
	}

	if err := b.storage.UpsertUser(ctx, userID, reg.Grade, reg.ClassNumber); err != nil {
		logger.Error("Failed to save user",
			zap.Error(err),
			zap.Int("grade", reg.Grade),
			zap.Int("class_number", reg.ClassNumber))
		return models.NewReply(msgRegistryError, defaultQuickReplies()...)
	}

	logger.Info("Registered user",
		zap.Int("grade", reg.Grade),
		zap.Int("class_number", reg.ClassNumber),
		zap.Bool("first", existing == nil))
	return registeredReply(reg.Grade, reg.ClassNumber, existing == nil)
}

func (b *Bot) classify(ctx context.Context, logger *zap.Logger, text string) models.Intent {
	intent := b.classifier.Classify(text)
	if intent != models.IntentFallback || b.fallback == nil {
		return intent
	}

	intent, err := b.fallback.Classify(ctx, text)
	if err != nil {
		logger.Warn("Fallback classifier failed", zap.Error(err))
		return models.IntentFallback
	}
	return intent
}

func (b *Bot) handleTimetable(ctx context.Context, logger *zap.Logger, user *models.UserProfile, text string, now time.Time) models.Reply {
	date := dateparse.ResolveOrDefault(text, now)
	header := fmt.Sprintf(headerTimetable, user.Grade, user.ClassNumber, dateparse.ShortLabel(date))

	if dateparse.IsWeekend(date) {
		return withHeader(header, noTimetableWeekend)
	}

	res := b.lookup(ctx, logger, "timetable", "시간표", func(ctx context.Context) provider.Result {
		if b.providers.Timetable == nil {
			return provider.Failure("시간표", errNotConfigured)
		}
		return b.providers.Timetable.Timetable(ctx, user.Grade, user.ClassNumber, date)
	})
	return withHeader(header, bodyOr(res, noTimetable))
}

func (b *Bot) handleMeal(ctx context.Context, logger *zap.Logger, text string, now time.Time) models.Reply {
	date := dateparse.ResolveOrDefault(text, now)
	header := fmt.Sprintf(headerMeal, dateparse.ISO(date))

	res := b.lookup(ctx, logger, "meal", "급식", func(ctx context.Context) provider.Result {
		if b.providers.Meal == nil {
			return provider.Failure("급식", errNotConfigured)
		}
		return b.providers.Meal.Meal(ctx, date)
	})
	return withHeader(header, bodyOr(res, noMeal))
}

func (b *Bot) handleCalendar(ctx context.Context, logger *zap.Logger, from, to time.Time, header, empty string) models.Reply {
	res := b.lookup(ctx, logger, "calendar", "학사일정", func(ctx context.Context) provider.Result {
		if b.providers.Calendar == nil {
			return provider.Failure("학사일정", errNotConfigured)
		}
		return b.providers.Calendar.Events(ctx, from, to)
	})
	return withHeader(header, bodyOr(res, empty))
}

// lookup runs one provider call, turning a panic into a failure result.
func (b *Bot) lookup(ctx context.Context, logger *zap.Logger, name, label string, fn func(context.Context) provider.Result) (res provider.Result) {
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("Provider panicked", zap.String("provider", name), zap.Any("panic", r))
			res = provider.Failure(label, fmt.Errorf("%v", r))
		}
	}()

	res = fn(ctx)
	if res.Failed {
		logger.Warn("Provider lookup failed",
			zap.String("provider", name),
			zap.Error(res.Cause),
			zap.Duration("elapsed", time.Since(start)))
	}
	return res
}

func bodyOr(res provider.Result, empty string) string {
	if res.Empty() {
		return empty
	}
	return res.Text()
}
