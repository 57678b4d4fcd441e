package bot

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"onesmallstep/internal/service"
)

func (b *Bot) handleStart(chatID int64) error {
	text := "👋 <b>Welcome to One Small Step.</b>\n" +
		"Face a fear gradually: pick a phobia, work through four levels of exposure steps and track how your anxiety changes.\n\n" +
		helpText
	return b.sendText(chatID, text)
}

func (b *Bot) handleHelp(chatID int64) error {
	return b.sendText(chatID, "ℹ️ <b>Commands</b>\n"+helpText)
}

const helpText = "• /phobias [common|rare|all] — browse the catalog\n" +
	"• /search &lt;text&gt; — find a phobia by name\n" +
	"• /phobia &lt;id&gt; — details, levels and progress\n" +
	"• /level &lt;id&gt; — steps of a level\n" +
	"• /done &lt;step&gt; &lt;rating 1-10&gt; [notes] — complete a step\n" +
	"• /activate &lt;id&gt; — start or stop working on a phobia\n" +
	"• /progress — streak, weekly steps and active plans\n" +
	"• /reset &lt;id&gt; — delete the progress of one phobia"

func (b *Bot) handlePhobias(ctx context.Context, chatID int64, args string) error {
	return b.sendBrowse(ctx, chatID, parseCategory(args), "")
}

func (b *Bot) handleSearch(ctx context.Context, chatID int64, args string) error {
	if strings.TrimSpace(args) == "" {
		return b.sendText(chatID, "What should I look for? Example: /search spider")
	}
	return b.sendBrowse(ctx, chatID, service.CategoryAll, args)
}

func (b *Bot) sendBrowse(ctx context.Context, chatID int64, category, query string) error {
	res, err := b.svc.Catalog.Browse(ctx, category, query)
	if err != nil {
		return b.sendFailure(chatID, "load phobias", err)
	}
	if len(res.Phobias) == 0 {
		return b.sendText(chatID, escape(res.Message))
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, p := range res.Phobias {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(phobiaButton(p), fmt.Sprintf("%s%d", cbPhobiaPrefix, p.ID)),
		))
	}
	_, err = b.sendWithInline(chatID, formatBrowse(res), rows)
	return err
}

func (b *Bot) handlePhobia(ctx context.Context, chatID int64, phobiaID uint) error {
	details, err := b.svc.Catalog.Details(ctx, phobiaID)
	if errors.Is(err, service.ErrUnknownPhobia) {
		return b.sendText(chatID, "Phobia not found.")
	}
	if err != nil {
		return b.sendFailure(chatID, "load the phobia", err)
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, level := range details.Levels {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(
				fmt.Sprintf("%d. %s", level.LevelNumber, shortTitle(level.Title, 28)),
				fmt.Sprintf("%s%d", cbLevelPrefix, level.ID),
			),
		))
	}
	activate := "▶️ Start working on it"
	if details.Phobia.IsActive {
		activate = "⏸ Stop working on it"
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData(activate, fmt.Sprintf("%s%d", cbActivatePrefix, details.Phobia.ID)),
		tgbotapi.NewInlineKeyboardButtonData("🧹 Reset", fmt.Sprintf("%s%d", cbResetPrefix, details.Phobia.ID)),
	))

	_, err = b.sendWithInline(chatID, formatDetails(*details), rows)
	return err
}

func (b *Bot) handleLevel(ctx context.Context, chatID int64, levelID uint) error {
	plan, err := b.svc.Exposure.Level(ctx, levelID)
	if errors.Is(err, service.ErrUnknownLevel) {
		return b.sendText(chatID, "Level not found.")
	}
	if err != nil {
		return b.sendFailure(chatID, "load the level", err)
	}
	return b.sendText(chatID, formatLevel(*plan))
}

func (b *Bot) handleActivate(ctx context.Context, chatID int64, phobiaID uint) error {
	phobia, err := b.svc.Catalog.ToggleActive(ctx, phobiaID)
	if errors.Is(err, service.ErrUnknownPhobia) {
		return b.sendText(chatID, "Phobia not found.")
	}
	if err != nil {
		return b.sendFailure(chatID, "update the phobia", err)
	}
	if phobia.IsActive {
		return b.sendText(chatID, fmt.Sprintf("🎯 You are now working on <b>%s</b>. Open /phobia %d to see the levels.", escape(phobia.Name), phobia.ID))
	}
	return b.sendText(chatID, fmt.Sprintf("⏸ <b>%s</b> is no longer active. Your progress is kept.", escape(phobia.Name)))
}

func (b *Bot) handleDone(ctx context.Context, chatID int64, args string) error {
	in, err := parseDoneArgs(args)
	if err != nil {
		b.log.Debug("bad /done arguments", "args", args, "error", err)
		return b.sendText(chatID, "Usage: /done &lt;step&gt; &lt;rating 1-10&gt; [notes]\nExample: /done 4 6 felt easier than yesterday")
	}
	in.CompletedAt = time.Now()

	row, err := b.svc.Exposure.CompleteStep(ctx, in)
	switch {
	case errors.Is(err, service.ErrInvalidRating):
		return b.sendText(chatID, "The anxiety rating must be between 1 and 10.")
	case errors.Is(err, service.ErrUnknownStep):
		return b.sendText(chatID, "Step not found.")
	case err != nil:
		return b.sendFailure(chatID, "save your progress", err)
	}

	overview, err := b.svc.Progress.Overview(ctx, time.Now())
	if err != nil {
		return b.sendFailure(chatID, "load your progress", err)
	}
	return b.sendText(chatID, formatCompletion(*row, overview))
}

func (b *Bot) handleProgress(ctx context.Context, chatID int64) error {
	overview, err := b.svc.Progress.Overview(ctx, time.Now())
	if err != nil {
		return b.sendFailure(chatID, "load your progress", err)
	}
	sent, err := b.sendWithInline(chatID, formatOverview(overview), nil)
	if err != nil {
		return err
	}
	b.followOverview(ctx, chatID, sent.MessageID)
	return nil
}

// followOverview keeps the last progress message of a chat in sync with new
// completions. Only one message per chat is followed.
func (b *Bot) followOverview(ctx context.Context, chatID int64, messageID int) {
	sub := b.svc.Progress.WatchOverview(ctx, b.hub, time.Now)

	b.mu.Lock()
	if old, ok := b.dashboards[chatID]; ok {
		old.Release()
	}
	b.dashboards[chatID] = sub
	b.mu.Unlock()

	go func() {
		first := true
		for snap := range sub.C() {
			if first {
				first = false
				continue
			}
			if snap.Err != nil {
				b.log.Warn("overview refresh failed", "chat_id", chatID, "error", snap.Err)
				continue
			}
			edit := tgbotapi.NewEditMessageText(chatID, messageID, formatOverview(snap.Value))
			edit.ParseMode = tgbotapi.ModeHTML
			if _, err := b.api.Send(edit); err != nil {
				b.log.Debug("overview edit skipped", "chat_id", chatID, "error", err)
			}
		}
	}()
}

func (b *Bot) releaseDashboards() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for chatID, sub := range b.dashboards {
		sub.Release()
		delete(b.dashboards, chatID)
	}
}

func (b *Bot) askResetConfirmation(ctx context.Context, chatID int64, phobiaID uint) error {
	details, err := b.svc.Catalog.Details(ctx, phobiaID)
	if errors.Is(err, service.ErrUnknownPhobia) {
		return b.sendText(chatID, "Phobia not found.")
	}
	if err != nil {
		return b.sendFailure(chatID, "load the phobia", err)
	}

	b.mu.Lock()
	b.resets[chatID] = phobiaID
	b.mu.Unlock()

	text := fmt.Sprintf("Delete all progress for <b>%s</b> (%d completed steps)? This cannot be undone.",
		escape(details.Phobia.Name), details.Progress.Completed)
	_, err = b.sendWithInline(chatID, text, [][]tgbotapi.InlineKeyboardButton{
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("✅ Confirm", fmt.Sprintf("%s%d", cbConfirmPrefix, phobiaID)),
			tgbotapi.NewInlineKeyboardButtonData("↩️ Cancel", fmt.Sprintf("%s%d", cbCancelPrefix, phobiaID)),
		),
	})
	return err
}

func (b *Bot) confirmReset(ctx context.Context, chatID int64, phobiaID uint) error {
	b.mu.Lock()
	pending, ok := b.resets[chatID]
	delete(b.resets, chatID)
	b.mu.Unlock()
	if !ok || pending != phobiaID {
		return b.sendText(chatID, "That reset request has expired. Send /reset again.")
	}

	deleted, err := b.svc.Progress.Reset(ctx, phobiaID)
	if errors.Is(err, service.ErrUnknownPhobia) {
		return b.sendText(chatID, "Phobia not found.")
	}
	if err != nil {
		return b.sendFailure(chatID, "reset the progress", err)
	}
	return b.sendText(chatID, fmt.Sprintf("🧹 Progress cleared (%d records removed).", deleted))
}

func (b *Bot) handleCallback(ctx context.Context, cb *tgbotapi.CallbackQuery) error {
	if cb == nil || cb.From == nil || cb.Message == nil || cb.Message.Chat == nil {
		return nil
	}
	chatID := cb.Message.Chat.ID
	if !b.allowed(chatID) {
		b.ack(cb, "This bot is private.")
		return nil
	}

	prefix, id, err := parseCallback(cb.Data)
	if err != nil {
		b.ack(cb, "")
		return nil
	}
	b.log.Info("callback", "chat_id", chatID, "action", prefix, "id", id)

	switch prefix {
	case cbPhobiaPrefix:
		b.ack(cb, "")
		return b.handlePhobia(ctx, chatID, id)
	case cbLevelPrefix:
		b.ack(cb, "")
		return b.handleLevel(ctx, chatID, id)
	case cbActivatePrefix:
		b.ack(cb, "")
		return b.handleActivate(ctx, chatID, id)
	case cbResetPrefix:
		b.ack(cb, "")
		return b.askResetConfirmation(ctx, chatID, id)
	case cbConfirmPrefix:
		b.ack(cb, "")
		return b.confirmReset(ctx, chatID, id)
	case cbCancelPrefix:
		b.mu.Lock()
		delete(b.resets, chatID)
		b.mu.Unlock()
		b.ack(cb, "Cancelled")
		return nil
	default:
		b.ack(cb, "")
		return nil
	}
}
