package bot

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"onesmallstep/internal/config"
	"onesmallstep/internal/live"
	"onesmallstep/internal/logger"
	"onesmallstep/internal/service"
)

const (
	cbPhobiaPrefix   = "phobia:"
	cbLevelPrefix    = "level:"
	cbActivatePrefix = "activate:"
	cbResetPrefix    = "reset:"
	cbConfirmPrefix  = "confirm:"
	cbCancelPrefix   = "cancel:"
)

const (
	menuLabelPhobias  = "🗂 Phobias"
	menuLabelProgress = "📈 Progress"
	menuLabelHelp     = "ℹ️ Help"
)

// Services groups what the bot needs from the service layer.
type Services struct {
	Catalog  *service.CatalogService
	Exposure *service.ExposureService
	Progress *service.ProgressService
	Reminder *service.ReminderService
}

// Bot aggregates Telegram API with services.
type Bot struct {
	api         *tgbotapi.BotAPI
	svc         Services
	hub         *live.Hub
	log         *logger.Logger
	ownerChatID int64

	mu         sync.Mutex
	resets     map[int64]uint
	dashboards map[int64]*live.Subscription[service.Overview]
}

func New(cfg config.Config, svc Services, hub *live.Hub, log *logger.Logger) (*Bot, error) {
	if err := cfg.RequireBot(); err != nil {
		return nil, err
	}
	api, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("create bot api: %w", err)
	}

	log = log.With("component", "Bot")
	log.Info("bot authorized", "account", api.Self.UserName)

	return &Bot{
		api:         api,
		svc:         svc,
		hub:         hub,
		log:         log,
		ownerChatID: cfg.OwnerChatID,
		resets:      make(map[int64]uint),
		dashboards:  make(map[int64]*live.Subscription[service.Overview]),
	}, nil
}

// Start begins polling updates until ctx is cancelled.
func (b *Bot) Start(ctx context.Context) error {
	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 60
	updates := b.api.GetUpdatesChan(updateConfig)

	b.log.Info("start polling updates")

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates()
	}()
	defer b.releaseDashboards()

	for update := range updates {
		switch {
		case update.CallbackQuery != nil:
			if err := b.handleCallback(ctx, update.CallbackQuery); err != nil {
				b.log.Error("handle callback", "error", err)
			}
		case update.Message != nil:
			if update.Message.Chat == nil || !update.Message.Chat.IsPrivate() {
				continue
			}
			if err := b.handleMessage(ctx, update.Message); err != nil {
				b.log.Error("handle message", "error", err)
			}
		}
	}

	return nil
}

// SendDailyReminder pushes the daily check-in to the owner chat.
func (b *Bot) SendDailyReminder(ctx context.Context) error {
	if b.ownerChatID == 0 {
		b.log.Debug("no owner chat configured, reminder skipped")
		return nil
	}
	text, err := b.svc.Reminder.DailySummary(ctx, time.Now())
	if err != nil {
		return fmt.Errorf("build daily summary: %w", err)
	}
	if err := b.sendText(b.ownerChatID, text); err != nil {
		return fmt.Errorf("send daily summary: %w", err)
	}
	b.log.Info("daily reminder sent", "chat_id", b.ownerChatID)
	return nil
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) error {
	if !b.allowed(msg.Chat.ID) {
		b.log.Warn("message from foreign chat", "chat_id", msg.Chat.ID)
		return b.sendText(msg.Chat.ID, "This bot is private.")
	}

	if msg.IsCommand() {
		b.log.Info("command", "chat_id", msg.Chat.ID, "command", msg.Command(), "args", msg.CommandArguments())
		return b.handleCommand(ctx, msg.Chat.ID, msg.Command(), msg.CommandArguments())
	}

	switch strings.ToLower(strings.TrimSpace(msg.Text)) {
	case strings.ToLower(menuLabelPhobias):
		return b.handlePhobias(ctx, msg.Chat.ID, "")
	case strings.ToLower(menuLabelProgress):
		return b.handleProgress(ctx, msg.Chat.ID)
	case strings.ToLower(menuLabelHelp):
		return b.handleHelp(msg.Chat.ID)
	}

	return b.sendText(msg.Chat.ID, "I did not get that. Try /phobias to browse or /help for the command list.")
}

func (b *Bot) handleCommand(ctx context.Context, chatID int64, command, args string) error {
	switch command {
	case "start":
		return b.handleStart(chatID)
	case "help":
		return b.handleHelp(chatID)
	case "phobias":
		return b.handlePhobias(ctx, chatID, args)
	case "search":
		return b.handleSearch(ctx, chatID, args)
	case "phobia":
		return b.withID(chatID, args, "/phobia 1", func(id uint) error { return b.handlePhobia(ctx, chatID, id) })
	case "level":
		return b.withID(chatID, args, "/level 1", func(id uint) error { return b.handleLevel(ctx, chatID, id) })
	case "activate":
		return b.withID(chatID, args, "/activate 1", func(id uint) error { return b.handleActivate(ctx, chatID, id) })
	case "reset":
		return b.withID(chatID, args, "/reset 1", func(id uint) error { return b.askResetConfirmation(ctx, chatID, id) })
	case "done":
		return b.handleDone(ctx, chatID, args)
	case "progress":
		return b.handleProgress(ctx, chatID)
	default:
		return b.sendText(chatID, "Unknown command. See /help.")
	}
}

func (b *Bot) withID(chatID int64, args, example string, fn func(uint) error) error {
	id, err := parseID(args)
	if err != nil {
		return b.sendText(chatID, fmt.Sprintf("Give me a number, for example: %s", example))
	}
	return fn(id)
}

func (b *Bot) allowed(chatID int64) bool {
	return b.ownerChatID == 0 || chatID == b.ownerChatID
}

func (b *Bot) sendText(chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	msg.ReplyMarkup = mainMenuKeyboard()
	_, err := b.api.Send(msg)
	return err
}

func (b *Bot) sendWithInline(chatID int64, text string, rows [][]tgbotapi.InlineKeyboardButton) (tgbotapi.Message, error) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeHTML
	if len(rows) > 0 {
		msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	}
	return b.api.Send(msg)
}

// sendFailure reports a storage error to the user without changing any state.
func (b *Bot) sendFailure(chatID int64, action string, err error) error {
	b.log.Error(action+" failed", "chat_id", chatID, "error", err)
	return b.sendText(chatID, fmt.Sprintf("⚠️ Could not %s right now. Please try again.", action))
}

func (b *Bot) ack(cb *tgbotapi.CallbackQuery, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(cb.ID, text)); err != nil {
		b.log.Warn("callback ack", "error", err)
	}
}

func mainMenuKeyboard() tgbotapi.ReplyKeyboardMarkup {
	kb := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelPhobias),
			tgbotapi.NewKeyboardButton(menuLabelProgress),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(menuLabelHelp),
		),
	)
	kb.ResizeKeyboard = true
	kb.OneTimeKeyboard = false
	return kb
}
