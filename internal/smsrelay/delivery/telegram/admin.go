package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"golang-futures-bot/internal/smsrelay/repository"
	"golang-futures-bot/internal/smsrelay/service"
	"golang-futures-bot/pkg/logger"
	"golang-futures-bot/pkg/telegram"
)

// IntentKind tags the parsed admin intents.
type IntentKind int

const (
	IntentUnknown IntentKind = iota
	IntentStatus
	IntentAdd
	IntentRemove
	IntentList
	IntentClear
)

// Intent is a tagged variant of an admin command.
type Intent struct {
	Kind        IntentKind
	Destination string
}

// ParseIntent parses an admin chat message into an Intent.
func ParseIntent(text string) (Intent, error) {
	fields := strings.Fields(strings.TrimSpace(text))
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return Intent{Kind: IntentUnknown}, nil
	}

	command := strings.ToLower(strings.TrimPrefix(fields[0], "/"))
	if at := strings.Index(command, "@"); at >= 0 {
		command = command[:at]
	}
	args := fields[1:]

	switch command {
	case "status":
		return Intent{Kind: IntentStatus}, nil
	case "add":
		if len(args) != 1 {
			return Intent{}, errors.New("Usage: /add <chat-id or @channel>")
		}
		return Intent{Kind: IntentAdd, Destination: args[0]}, nil
	case "remove":
		if len(args) != 1 {
			return Intent{}, errors.New("Usage: /remove <chat-id or @channel>")
		}
		return Intent{Kind: IntentRemove, Destination: args[0]}, nil
	case "list":
		return Intent{Kind: IntentList}, nil
	case "clear":
		return Intent{Kind: IntentClear}, nil
	default:
		return Intent{Kind: IntentUnknown}, nil
	}
}

// AdminHandler consumes Telegram updates for the relay's administrative
// commands. Privileged commands are restricted to the primary chat.
type AdminHandler struct {
	client        *telegram.Client
	relay         *service.RelayService
	destinations  repository.DestinationRepository
	logger        *logger.Logger
	primaryChatID int64
}

// NewAdminHandler creates the relay admin handler.
func NewAdminHandler(client *telegram.Client, relay *service.RelayService, destinations repository.DestinationRepository, log *logger.Logger, primaryChatID int64) *AdminHandler {
	return &AdminHandler{
		client:        client,
		relay:         relay,
		destinations:  destinations,
		logger:        log,
		primaryChatID: primaryChatID,
	}
}

// Run polls for updates until the context is canceled.
func (h *AdminHandler) Run(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	updates := h.client.BotAPI().GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			h.client.BotAPI().StopReceivingUpdates()
			return
		case update, ok := <-updates:
			if !ok {
				return
			}
			if update.Message == nil || update.Message.Text == "" {
				continue
			}
			h.handleMessage(ctx, update.Message)
		}
	}
}

func (h *AdminHandler) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	chatID := msg.Chat.ID

	intent, err := ParseIntent(msg.Text)
	if err != nil {
		h.reply(chatID, "❌ "+err.Error())
		return
	}
	if intent.Kind == IntentUnknown {
		return
	}

	if chatID != h.primaryChatID {
		h.reply(chatID, "⛔ This command is restricted to the primary chat.")
		return
	}

	switch intent.Kind {
	case IntentStatus:
		h.handleStatus(ctx, chatID)
	case IntentAdd:
		h.handleAdd(ctx, chatID, intent.Destination)
	case IntentRemove:
		h.handleRemove(ctx, chatID, intent.Destination)
	case IntentList:
		h.handleList(ctx, chatID)
	case IntentClear:
		h.handleClear(ctx, chatID)
	case IntentUnknown:
	}
}

func (h *AdminHandler) reply(chatID int64, text string) {
	if err := h.client.SendMessageUser(text, chatID); err != nil {
		h.logger.Error("Failed to send reply", logger.ErrorField(err), logger.Field("chat_id", chatID))
	}
}

func (h *AdminHandler) handleStatus(ctx context.Context, chatID int64) {
	status := h.relay.Status(ctx)

	connected := "✅ connected"
	if !status.Connected {
		connected = "⚠️ disconnected"
	}
	text := fmt.Sprintf(
		"📡 *SMS Relay Status*\n\nAPI: %s\nInitialized: %t\nSeen messages: %d\nDestinations: %d",
		connected, status.Initialized, status.SeenCount, status.Destinations)
	if status.LastCycleTime != "" {
		text += fmt.Sprintf("\nLast cycle: %s", status.LastCycleTime)
	}
	h.reply(chatID, text)
}

func (h *AdminHandler) handleAdd(ctx context.Context, chatID int64, dest string) {
	// Probe deliverability before persisting; an undeliverable destination
	// is rejected outright.
	if err := h.client.SendMessageTo(dest, "✅ This chat now receives forwarded SMS messages."); err != nil {
		h.reply(chatID, fmt.Sprintf("❌ Cannot deliver to %s. Make sure the bot is a member there.", dest))
		return
	}

	switch err := h.destinations.Add(ctx, dest); {
	case errors.Is(err, repository.ErrDestinationExists):
		h.reply(chatID, fmt.Sprintf("ℹ️ %s is already registered.", dest))
	case err != nil:
		h.logger.Error("Failed to add destination", logger.ErrorField(err), logger.StringField("destination", dest))
		h.reply(chatID, "❌ Failed to save the destination.")
	default:
		h.reply(chatID, fmt.Sprintf("✅ Added %s.", dest))
	}
}

func (h *AdminHandler) handleRemove(ctx context.Context, chatID int64, dest string) {
	switch err := h.destinations.Remove(ctx, dest); {
	case errors.Is(err, repository.ErrPrimaryDestination):
		h.reply(chatID, "⛔ The primary destination cannot be removed.")
	case errors.Is(err, repository.ErrDestinationNotFound):
		h.reply(chatID, fmt.Sprintf("ℹ️ %s is not registered.", dest))
	case err != nil:
		h.logger.Error("Failed to remove destination", logger.ErrorField(err), logger.StringField("destination", dest))
		h.reply(chatID, "❌ Failed to save the destination list.")
	default:
		h.reply(chatID, fmt.Sprintf("✅ Removed %s.", dest))
	}
}

func (h *AdminHandler) handleList(ctx context.Context, chatID int64) {
	dests := h.destinations.List(ctx)

	var b strings.Builder
	b.WriteString("📋 *Destinations*\n\n")
	for i, d := range dests {
		if d == h.destinations.Primary() {
			b.WriteString(fmt.Sprintf("%d. %s (primary)\n", i+1, d))
		} else {
			b.WriteString(fmt.Sprintf("%d. %s\n", i+1, d))
		}
	}
	h.reply(chatID, b.String())
}

func (h *AdminHandler) handleClear(ctx context.Context, chatID int64) {
	if err := h.relay.Clear(ctx); err != nil {
		h.logger.Error("Failed to clear seen set", logger.ErrorField(err))
		h.reply(chatID, "❌ Failed to clear the seen set.")
		return
	}
	h.reply(chatID, "🧹 Seen set cleared. The next fetch re-initializes without forwarding.")
}
