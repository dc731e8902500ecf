// Package bot runs the Telegram front end: a long-polling loop handling the
// /start command and echoing everything else back.
package bot

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/F0nkell/AI-careerist/internal/store"
)

// UserStore records users the bot has talked to.
type UserStore interface {
	UpsertUser(ctx context.Context, user *store.User) error
}

type Bot struct {
	api    *tgbotapi.BotAPI
	users  UserStore
	logger *slog.Logger
}

func New(token string, users UserStore, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("failed to create bot API client: %w", err)
	}
	return &Bot{api: api, users: users, logger: logger}, nil
}

// Run registers the command menu and polls for updates until ctx is
// cancelled. It returns only after the polling loop has fully drained, so the
// caller can wait on it before shutting the process down.
func (b *Bot) Run(ctx context.Context) {
	commands := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Начать работу / Проверить статус"},
	)
	if _, err := b.api.Request(commands); err != nil {
		b.logger.Warn("failed to register bot commands", "error", err)
	}

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = 30
	updates := b.api.GetUpdatesChan(updateConfig)

	go func() {
		<-ctx.Done()
		b.api.StopReceivingUpdates() // closes the updates channel
	}()

	b.logger.Info("bot polling started", "username", b.api.Self.UserName)
	for update := range updates {
		if update.Message == nil {
			continue
		}
		b.handleMessage(ctx, update.Message)
	}
	b.logger.Info("bot polling stopped")
}

func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.IsCommand() && msg.Command() == "start" {
		b.handleStart(ctx, msg)
		return
	}

	// Echo anything else back verbatim. Some message kinds cannot be copied;
	// that is not worth surfacing to the user.
	echo := tgbotapi.NewCopyMessage(msg.Chat.ID, msg.Chat.ID, msg.MessageID)
	if _, err := b.api.CopyMessage(echo); err != nil {
		b.logger.Debug("failed to copy message back", "chat_id", msg.Chat.ID, "error", err)
	}
}

func (b *Bot) handleStart(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From != nil {
		// The bot API client does not expose the premium flag; that only
		// arrives through the WebApp init data on the HTTP side.
		err := b.users.UpsertUser(ctx, &store.User{
			ID:        msg.From.ID,
			Username:  msg.From.UserName,
			FirstName: msg.From.FirstName,
			LastName:  msg.From.LastName,
		})
		if err != nil {
			b.logger.Error("failed to upsert bot user", "user_id", msg.From.ID, "error", err)
		}
	}

	name := "кандидат"
	if msg.From != nil && msg.From.FirstName != "" {
		name = msg.From.FirstName
	}
	greeting := fmt.Sprintf("Привет, %s! Я твой AI-карьерист: тренер собеседований и помощник по резюме. Ядро запущено.", name)

	if _, err := b.api.Send(tgbotapi.NewMessage(msg.Chat.ID, greeting)); err != nil {
		b.logger.Error("failed to send greeting", "chat_id", msg.Chat.ID, "error", err)
	}
}
