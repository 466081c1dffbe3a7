package telegram

import (
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// Notifier defines the interface for sending Telegram messages.
type Notifier interface {
	SendMessage(text string) error
	SendMessageUser(text string, chatID int64) error
	SendMessageTo(dest string, text string) error
}

// Client is a Telegram bot client implementing Notifier.
type Client struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

// NewClient creates a new Telegram client. chatID is the default chat
// messages are sent to when no explicit destination is given.
func NewClient(botToken string, chatID int64) (*Client, error) {
	bot, err := tgbotapi.NewBotAPI(botToken)
	if err != nil {
		return nil, err
	}
	return &Client{
		bot:    bot,
		chatID: chatID,
	}, nil
}

// BotAPI exposes the underlying bot for update polling.
func (c *Client) BotAPI() *tgbotapi.BotAPI {
	return c.bot
}

// SendMessage sends a message to the default chat.
func (c *Client) SendMessage(text string) error {
	return c.SendMessageUser(text, c.chatID)
}

// SendMessageUser sends a message to the given chat ID.
func (c *Client) SendMessageUser(text string, chatID int64) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := c.bot.Send(msg)
	return err
}

// SendMessageTo sends a message to a destination identifier, which is either
// a numeric chat ID or an @channel username.
func (c *Client) SendMessageTo(dest string, text string) error {
	if strings.HasPrefix(dest, "@") {
		msg := tgbotapi.NewMessageToChannel(dest, text)
		msg.ParseMode = tgbotapi.ModeMarkdown
		_, err := c.bot.Send(msg)
		return err
	}

	chatID, err := strconv.ParseInt(dest, 10, 64)
	if err != nil {
		return fmt.Errorf("invalid destination %q: %w", dest, err)
	}
	return c.SendMessageUser(text, chatID)
}
