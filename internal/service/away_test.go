package service

import (
	"context"
	"testing"
	"time"

	"tgsentry/pkg/telegram/types"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

const ownerID = int64(1000)

func ownerMessage(text string) *types.Message {
	return &types.Message{
		MessageID: 1,
		From:      &types.User{ID: ownerID},
		Chat:      types.Chat{ID: ownerID, Type: "private"},
		Text:      text,
	}
}

func contactMessage(userID, messageID int64) *types.Message {
	return &types.Message{
		MessageID: messageID,
		From:      &types.User{ID: userID},
		Chat:      types.Chat{ID: userID, Type: "private"},
		Text:      "hey, are you there?",
	}
}

func TestAwayRepliesOncePerContact(t *testing.T) {
	client := &mockClient{}
	responder := NewAwayResponder(client, ownerID, newTestLogger())
	ctx := context.Background()

	client.On("SendText", mock.Anything, ownerID, mock.Anything).Return(nil)
	client.On("SendReply", mock.Anything, int64(2), int64(10), mock.Anything).Return(nil).Once()

	responder.HandleMessage(ctx, ownerMessage("/afk in a meeting"))
	responder.HandleMessage(ctx, contactMessage(2, 10))
	responder.HandleMessage(ctx, contactMessage(2, 11))

	client.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "SendReply", 1)
}

func TestAwayReplyContainsReasonAndDuration(t *testing.T) {
	client := &mockClient{}
	responder := NewAwayResponder(client, ownerID, newTestLogger())
	base := time.Now()
	responder.now = func() time.Time { return base }
	ctx := context.Background()

	client.On("SendText", mock.Anything, ownerID, mock.Anything).Return(nil)
	responder.HandleMessage(ctx, ownerMessage("/afk in a meeting"))

	responder.now = func() time.Time { return base.Add(time.Hour + 2*time.Minute + 3*time.Second) }
	client.On("SendReply", mock.Anything, int64(3), int64(20), "in a meeting (away for 1h2m3s)").Return(nil)

	responder.HandleMessage(ctx, contactMessage(3, 20))
	client.AssertExpectations(t)
}

func TestAwayOffStopsReplies(t *testing.T) {
	client := &mockClient{}
	responder := NewAwayResponder(client, ownerID, newTestLogger())
	ctx := context.Background()

	client.On("SendText", mock.Anything, ownerID, mock.Anything).Return(nil)

	responder.HandleMessage(ctx, ownerMessage("/afk"))
	responder.HandleMessage(ctx, ownerMessage("/afk_off"))
	responder.HandleMessage(ctx, contactMessage(2, 10))

	client.AssertNotCalled(t, "SendReply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAwayOffWhenInactiveStillConfirms(t *testing.T) {
	client := &mockClient{}
	responder := NewAwayResponder(client, ownerID, newTestLogger())

	client.On("SendText", mock.Anything, ownerID, "Away mode is not active").Return(nil)

	responder.HandleMessage(context.Background(), ownerMessage("/afk_off"))
	client.AssertExpectations(t)
}

func TestAwayNewSessionResetsNotifiedContacts(t *testing.T) {
	client := &mockClient{}
	responder := NewAwayResponder(client, ownerID, newTestLogger())
	ctx := context.Background()

	client.On("SendText", mock.Anything, ownerID, mock.Anything).Return(nil)
	client.On("SendReply", mock.Anything, int64(2), mock.Anything, mock.Anything).Return(nil).Twice()

	responder.HandleMessage(ctx, ownerMessage("/afk"))
	responder.HandleMessage(ctx, contactMessage(2, 10))
	responder.HandleMessage(ctx, ownerMessage("/afk"))
	responder.HandleMessage(ctx, contactMessage(2, 11))

	client.AssertExpectations(t)
}

func TestAwayIgnoresGroupChats(t *testing.T) {
	client := &mockClient{}
	responder := NewAwayResponder(client, ownerID, newTestLogger())
	ctx := context.Background()

	client.On("SendText", mock.Anything, ownerID, mock.Anything).Return(nil)
	responder.HandleMessage(ctx, ownerMessage("/afk"))

	group := contactMessage(2, 10)
	group.Chat.Type = "group"
	responder.HandleMessage(ctx, group)

	client.AssertNotCalled(t, "SendReply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAwayDisabledByDefault(t *testing.T) {
	client := &mockClient{}
	responder := NewAwayResponder(client, ownerID, newTestLogger())

	responder.HandleMessage(context.Background(), contactMessage(2, 10))
	client.AssertNotCalled(t, "SendReply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestAwayCommandsIgnoredFromNonOwner(t *testing.T) {
	client := &mockClient{}
	responder := NewAwayResponder(client, ownerID, newTestLogger())

	impostor := contactMessage(2, 10)
	impostor.Text = "/afk hijack"
	responder.HandleMessage(context.Background(), impostor)

	responder.HandleMessage(context.Background(), contactMessage(3, 11))
	client.AssertNotCalled(t, "SendReply", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		want     string
	}{
		{"seconds only", 45 * time.Second, "45s"},
		{"minutes and seconds", 2*time.Minute + 5*time.Second, "2m5s"},
		{"hours", 3*time.Hour + 4*time.Minute + 5*time.Second, "3h4m5s"},
		{"zero", 0, "0s"},
		{"negative clamps to zero", -time.Minute, "0s"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatDuration(tt.duration))
		})
	}
}
