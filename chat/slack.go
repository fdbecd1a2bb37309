package chat

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/slack-go/slack"
)

// historyLimit caps a single conversations.history page.
const historyLimit = 100

var _ API = &SlackAPI{}

// SlackAPI implements API on the Slack Web API. A client is built per call
// because every call may carry a different token.
type SlackAPI struct {
	apiURL     string
	httpClient *http.Client
}

// NewSlackAPI targets apiURL (e.g. "https://slack.com/api/").
func NewSlackAPI(apiURL string, httpClient *http.Client) *SlackAPI {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &SlackAPI{apiURL: apiURL, httpClient: httpClient}
}

func (s *SlackAPI) client(token string) *slack.Client {
	return slack.New(token, slack.OptionAPIURL(s.apiURL), slack.OptionHTTPClient(s.httpClient))
}

func (s *SlackAPI) PostMessage(ctx context.Context, token, channel, text string) (*MessageRef, error) {
	ch, ts, err := s.client(token).PostMessageContext(ctx, channel, slack.MsgOptionText(text, false))
	if err != nil {
		return nil, err
	}
	return &MessageRef{Channel: ch, TS: ts, Text: text}, nil
}

func (s *SlackAPI) ScheduleMessage(ctx context.Context, token, channel, text string, postAt time.Time) (*MessageRef, error) {
	at := strconv.FormatInt(postAt.Unix(), 10)
	ch, ts, err := s.client(token).ScheduleMessageContext(ctx, channel, at, slack.MsgOptionText(text, false))
	if err != nil {
		return nil, err
	}
	return &MessageRef{Channel: ch, TS: ts, Text: text}, nil
}

func (s *SlackAPI) History(ctx context.Context, token, channel string, r Range) ([]Message, error) {
	resp, err := s.client(token).GetConversationHistoryContext(ctx, &slack.GetConversationHistoryParameters{
		ChannelID: channel,
		Oldest:    r.Oldest,
		Latest:    r.Latest,
		Inclusive: true,
		Limit:     historyLimit,
	})
	if err != nil {
		return nil, err
	}
	out := make([]Message, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		out = append(out, Message{
			TS:       m.Timestamp,
			Type:     m.Type,
			User:     m.User,
			Text:     m.Text,
			ThreadTS: m.ThreadTimestamp,
		})
	}
	return out, nil
}

func (s *SlackAPI) UpdateMessage(ctx context.Context, token, channel, ts, text string) (*MessageRef, error) {
	ch, newTS, newText, err := s.client(token).UpdateMessageContext(ctx, channel, ts, slack.MsgOptionText(text, false))
	if err != nil {
		return nil, err
	}
	return &MessageRef{Channel: ch, TS: newTS, Text: newText}, nil
}

func (s *SlackAPI) DeleteMessage(ctx context.Context, token, channel, ts string) (*Ack, error) {
	ch, deletedTS, err := s.client(token).DeleteMessageContext(ctx, channel, ts)
	if err != nil {
		return nil, err
	}
	return &Ack{Channel: ch, TS: deletedTS}, nil
}
