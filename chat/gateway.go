package chat

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
)

// MaxScheduleAhead is the furthest in the future a message may be scheduled.
const MaxScheduleAhead = 120 * 24 * time.Hour

// API is the remote chat capability set, called with a resolved token.
type API interface {
	PostMessage(ctx context.Context, token, channel, text string) (*MessageRef, error)
	ScheduleMessage(ctx context.Context, token, channel, text string, postAt time.Time) (*MessageRef, error)
	History(ctx context.Context, token, channel string, r Range) ([]Message, error)
	UpdateMessage(ctx context.Context, token, channel, ts, text string) (*MessageRef, error)
	DeleteMessage(ctx context.Context, token, channel, ts string) (*Ack, error)
}

// SendRequest posts now, or at PostAt (unix seconds) when set.
type SendRequest struct {
	Channel string `json:"channel"`
	Text    string `json:"text"`
	PostAt  *int64 `json:"postAt,omitempty"`
}

// ListRequest selects either a single instant (TS) or a range.
type ListRequest struct {
	Channel string
	TS      string
	Oldest  string
	Latest  string
}

// Gateway validates message operations and forwards them to the API.
// It never retries.
type Gateway struct {
	api    API
	now    func() time.Time
	logger *zap.Logger
}

func NewGateway(api API, logger *zap.Logger) *Gateway {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Gateway{api: api, now: time.Now, logger: logger}
}

// Send posts or schedules a message.
func (g *Gateway) Send(ctx context.Context, token string, req SendRequest) (*MessageRef, error) {
	if strings.TrimSpace(req.Channel) == "" {
		return nil, ErrMissingChannel
	}
	if strings.TrimSpace(req.Text) == "" {
		return nil, ErrEmptyText
	}

	if req.PostAt == nil {
		ref, err := g.api.PostMessage(ctx, token, req.Channel, req.Text)
		if err != nil {
			return nil, g.remote("send message", err)
		}
		return ref, nil
	}

	postAt := time.Unix(*req.PostAt, 0)
	if err := g.checkSchedule(postAt); err != nil {
		return nil, err
	}
	ref, err := g.api.ScheduleMessage(ctx, token, req.Channel, req.Text, postAt)
	if err != nil {
		return nil, g.remote("schedule message", err)
	}
	ref.Scheduled = true
	ref.PostAt = *req.PostAt
	return ref, nil
}

func (g *Gateway) checkSchedule(postAt time.Time) error {
	now := g.now()
	if !postAt.After(now) {
		return ErrPastSchedule
	}
	if postAt.After(now.Add(MaxScheduleAhead)) {
		return ErrScheduleTooFar
	}
	return nil
}

// List returns the channel messages at TS or within [Oldest, Latest].
// An empty result is ErrNotFound.
func (g *Gateway) List(ctx context.Context, token string, req ListRequest) ([]Message, error) {
	if strings.TrimSpace(req.Channel) == "" {
		return nil, ErrMissingChannel
	}
	var r Range
	switch {
	case req.TS != "":
		r = Range{Oldest: req.TS, Latest: req.TS}
	case req.Oldest != "" || req.Latest != "":
		r = Range{Oldest: req.Oldest, Latest: req.Latest}
	default:
		return nil, ErrMissingRange
	}

	msgs, err := g.api.History(ctx, token, req.Channel, r)
	if err != nil {
		return nil, g.remote("retrieve messages", err)
	}
	if len(msgs) == 0 {
		return nil, ErrNotFound
	}
	for i := range msgs {
		msgs[i].ISOTime = ISOTimestamp(msgs[i].TS)
	}
	return msgs, nil
}

// Edit replaces the text of the message at ts.
func (g *Gateway) Edit(ctx context.Context, token, channel, ts, text string) (*MessageRef, error) {
	if strings.TrimSpace(channel) == "" {
		return nil, ErrMissingChannel
	}
	if strings.TrimSpace(ts) == "" {
		return nil, ErrMissingTS
	}
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyText
	}
	ref, err := g.api.UpdateMessage(ctx, token, channel, ts, text)
	if err != nil {
		return nil, g.remote("update message", err)
	}
	return ref, nil
}

// Delete removes the message at ts.
func (g *Gateway) Delete(ctx context.Context, token, channel, ts string) (*Ack, error) {
	if strings.TrimSpace(channel) == "" {
		return nil, ErrMissingChannel
	}
	if strings.TrimSpace(ts) == "" {
		return nil, ErrMissingTS
	}
	ack, err := g.api.DeleteMessage(ctx, token, channel, ts)
	if err != nil {
		return nil, g.remote("delete message", err)
	}
	return ack, nil
}

func (g *Gateway) remote(op string, err error) error {
	re := remoteError(op, err)
	g.logger.Warn("chat api call failed", zap.String("op", op), zap.Error(err))
	return re
}
