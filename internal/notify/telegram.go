// Package notify mirrors feed events to outside channels.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/google/uuid"
	"github.com/mroshb/kudos/internal/feed"
	"github.com/mroshb/kudos/internal/models"
	"github.com/mroshb/kudos/pkg/logger"
)

const lookupTimeout = 5 * time.Second

// Sender is the part of *tgbotapi.BotAPI the relay needs.
type Sender interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Directory resolves user ids to display names.
type Directory interface {
	GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error)
}

// TelegramRelay is a feed subscriber that posts every new kudo to one chat.
// It has its own queue, so a slow Bot API never stalls the hub.
type TelegramRelay struct {
	sender Sender
	users  Directory
	chatID int64

	queue     chan []byte
	quit      chan struct{}
	done      chan struct{}
	closeOnce sync.Once
}

func NewTelegramRelay(sender Sender, users Directory, chatID int64, buffer int) *TelegramRelay {
	if buffer < 1 {
		buffer = 1
	}
	r := &TelegramRelay{
		sender: sender,
		users:  users,
		chatID: chatID,
		queue:  make(chan []byte, buffer),
		quit:   make(chan struct{}),
		done:   make(chan struct{}),
	}
	go r.run()
	return r
}

// Deliver never reports the relay as slow: when its queue is full the
// message is dropped and the relay stays subscribed.
func (r *TelegramRelay) Deliver(msg []byte) bool {
	select {
	case <-r.quit:
		return false
	default:
	}

	select {
	case r.queue <- msg:
	default:
		logger.Warn("Telegram relay queue full, dropping event", "chat_id", r.chatID)
	}
	return true
}

func (r *TelegramRelay) Close() {
	r.closeOnce.Do(func() {
		close(r.quit)
	})
}

// Done is closed once the worker has exited.
func (r *TelegramRelay) Done() <-chan struct{} {
	return r.done
}

func (r *TelegramRelay) run() {
	defer close(r.done)

	for {
		select {
		case <-r.quit:
			return
		case msg := <-r.queue:
			r.handle(msg)
		}
	}
}

func (r *TelegramRelay) handle(msg []byte) {
	var env feed.Envelope
	if err := json.Unmarshal(msg, &env); err != nil {
		logger.Warn("Telegram relay got malformed envelope", "error", err)
		return
	}
	if env.Event != feed.KudoCreated {
		return
	}

	var kudo models.Kudo
	if err := json.Unmarshal(env.Data, &kudo); err != nil {
		logger.Warn("Telegram relay got malformed kudo", "error", err)
		return
	}

	text := r.format(&kudo)
	if _, err := r.sender.Send(tgbotapi.NewMessage(r.chatID, text)); err != nil {
		logger.Error("Failed to post kudo to Telegram", "kudo_id", kudo.ID, "error", err)
		return
	}
	logger.Debug("Kudo posted to Telegram", "kudo_id", kudo.ID, "chat_id", r.chatID)
}

func (r *TelegramRelay) format(k *models.Kudo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "🎉 %s gave %d points to %s", r.name(k.SenderID), k.Points, r.name(k.ReceiverID))
	if k.Description != nil && *k.Description != "" {
		b.WriteString("\n\n")
		b.WriteString(*k.Description)
	}
	return b.String()
}

func (r *TelegramRelay) name(id uuid.UUID) string {
	if r.users == nil {
		return "someone"
	}

	ctx, cancel := context.WithTimeout(context.Background(), lookupTimeout)
	defer cancel()

	user, err := r.users.GetUserByID(ctx, id)
	if err != nil {
		return "someone"
	}
	return DisplayName(user)
}

// DisplayName prefers the full name and falls back to the user name.
func DisplayName(u *models.User) string {
	full := strings.TrimSpace(u.FirstName + " " + u.LastName)
	if full != "" {
		return full
	}
	return u.UserName
}
