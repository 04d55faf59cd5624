package services

import (
	"context"
	"errors"
	"strings"

	"cav/flightrelay/internal/common"
	"cav/flightrelay/internal/constants"
	"cav/flightrelay/internal/logging"
)

var ErrEmptyMessage = errors.New("message is empty")

// ChatAPI posts chat messages through the relay.
type ChatAPI interface {
	SendMessage(ctx context.Context, message string) error
}

type ChatService struct {
	API      ChatAPI
	Notifier common.Notifier
}

func NewChatService(api ChatAPI, notifier common.Notifier) *ChatService {
	if notifier == nil {
		notifier = common.LogNotifier{}
	}
	return &ChatService{API: api, Notifier: notifier}
}

// Send posts text unless it is blank, in which case no request is made.
func (s *ChatService) Send(ctx context.Context, text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}
	if err := s.API.SendMessage(ctx, text); err != nil {
		logging.Warn("Failed to send chat message", "error", err.Error())
		s.Notifier.Notify(common.Notification{
			Plugin:  constants.PluginLiveFlights,
			Type:    constants.NotifyDanger,
			Message: constants.MsgFailedSendMessage,
		})
		return err
	}
	return nil
}
