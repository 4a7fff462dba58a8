package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"slotbook/internal/model"
	"slotbook/internal/schedule"
)

// Snapshot supplies the interval collections the bot needs to answer
// availability questions.
type Snapshot interface {
	WindowsInRange(ctx context.Context, from, to time.Time) ([]model.AvailabilityWindow, error)
	ActiveBookingsInRange(ctx context.Context, from, to time.Time) ([]model.Booking, error)
	BusyInRange(ctx context.Context, from, to time.Time) ([]model.BusyInterval, error)
}

// Bot answers /dates and slot queries over Telegram.
type Bot struct {
	api    *tgbotapi.BotAPI
	store  Snapshot
	logger *zerolog.Logger
	now    func() time.Time

	// mu guards durationMinutes, which changes on config reload.
	mu              sync.RWMutex
	durationMinutes int
}

// New creates the bot.
func New(token string, store Snapshot, durationMinutes int, logger *zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}
	if durationMinutes <= 0 {
		durationMinutes = schedule.DefaultSlotMinutes
	}
	return &Bot{
		api:             api,
		store:           store,
		durationMinutes: durationMinutes,
		logger:          logger,
		now:             time.Now,
	}, nil
}

// SetSlotDuration switches the duration used for new queries. Non-positive
// values are ignored.
func (b *Bot) SetSlotDuration(minutes int) {
	if minutes <= 0 {
		return
	}
	b.mu.Lock()
	b.durationMinutes = minutes
	b.mu.Unlock()
}

func (b *Bot) slotDuration() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.durationMinutes
}

// Start consumes updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := b.api.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return
		case update := <-updates:
			b.handleUpdate(ctx, update)
		}
	}
}

func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	requestID := uuid.New().String()
	logger := b.logger.With().Str("request_id", requestID).Logger()

	switch {
	case update.Message != nil && update.Message.IsCommand():
		b.handleCommand(ctx, &logger, update.Message)
	case update.CallbackQuery != nil:
		b.handleCallback(ctx, &logger, update.CallbackQuery)
	}
}

func (b *Bot) handleCommand(ctx context.Context, logger *zerolog.Logger, msg *tgbotapi.Message) {
	switch msg.Command() {
	case "dates", "start":
		now := b.now()
		keyboard, err := b.monthKeyboard(ctx, now)
		if err != nil {
			logger.Error().Err(err).Msg("build calendar")
			b.send(logger, tgbotapi.NewMessage(msg.Chat.ID, "Something went wrong, try again later."))
			return
		}
		reply := tgbotapi.NewMessage(msg.Chat.ID, "Pick a date:")
		reply.ReplyMarkup = keyboard
		b.send(logger, reply)
	default:
		b.send(logger, tgbotapi.NewMessage(msg.Chat.ID, "Use /dates to see bookable days."))
	}
}

func (b *Bot) handleCallback(ctx context.Context, logger *zerolog.Logger, cb *tgbotapi.CallbackQuery) {
	defer func() {
		_, _ = b.api.Request(tgbotapi.NewCallback(cb.ID, ""))
	}()

	data := cb.Data
	switch {
	case strings.HasPrefix(data, "date:"):
		dateStr := strings.TrimPrefix(data, "date:")
		date, err := time.Parse(schedule.DateLayout, dateStr)
		if err != nil {
			return
		}
		b.sendSlots(ctx, logger, cb.Message.Chat.ID, date)
	case data == "back:dates":
		keyboard, err := b.monthKeyboard(ctx, b.now())
		if err != nil {
			logger.Error().Err(err).Msg("build calendar")
			return
		}
		reply := tgbotapi.NewMessage(cb.Message.Chat.ID, "Pick a date:")
		reply.ReplyMarkup = keyboard
		b.send(logger, reply)
	}
}

func (b *Bot) sendSlots(ctx context.Context, logger *zerolog.Logger, chatID int64, date time.Time) {
	now := b.now()
	dayEnd := date.AddDate(0, 0, 1)

	windows, bookings, busy, err := b.snapshot(ctx, date, dayEnd)
	if err != nil {
		logger.Error().Err(err).Msg("load snapshot")
		return
	}

	slots := schedule.AvailableSlots(windows, bookings, date, b.slotDuration(), busy, now)
	if len(slots) == 0 {
		b.send(logger, tgbotapi.NewMessage(chatID, "No free slots left on "+date.Format(schedule.DateLayout)+"."))
		return
	}

	reply := tgbotapi.NewMessage(chatID, "Free slots on "+date.Format(schedule.DateLayout)+":")
	reply.ReplyMarkup = SlotKeyboard(slots)
	b.send(logger, reply)
}

// monthKeyboard renders the current month with bookable days highlighted.
func (b *Bot) monthKeyboard(ctx context.Context, now time.Time) (tgbotapi.InlineKeyboardMarkup, error) {
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	monthEnd := monthStart.AddDate(0, 1, 0).AddDate(0, 0, -1)

	windows, bookings, busy, err := b.snapshot(ctx, monthStart, monthEnd.AddDate(0, 0, 1))
	if err != nil {
		return tgbotapi.InlineKeyboardMarkup{}, err
	}

	dates := schedule.AvailableDates(windows, bookings, monthStart, monthEnd, b.slotDuration(), busy, now)
	available := make(map[string]bool, len(dates))
	for _, d := range dates {
		available[d] = true
	}

	return CalendarKeyboard(now.Year(), int(now.Month()), available), nil
}

func (b *Bot) snapshot(ctx context.Context, from, to time.Time) ([]model.AvailabilityWindow, []model.Booking, []model.BusyInterval, error) {
	windows, err := b.store.WindowsInRange(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("windows: %w", err)
	}
	bookings, err := b.store.ActiveBookingsInRange(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("bookings: %w", err)
	}
	busy, err := b.store.BusyInRange(ctx, from, to)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("busy: %w", err)
	}
	return windows, bookings, busy, nil
}

func (b *Bot) send(logger *zerolog.Logger, c tgbotapi.Chattable) {
	if _, err := b.api.Send(c); err != nil {
		logger.Error().Err(err).Msg("send message")
	}
}
