package server

import (
	"encoding/json"
	"net/http"

	"github.com/Seann-Moser/chatrelay/chat"
	"github.com/Seann-Moser/chatrelay/session"
)

// maxBodyBytes bounds message request bodies.
const maxBodyBytes = 64 << 10

type messageBody struct {
	Channel string `json:"channel"`
	TS      string `json:"ts"`
	Text    string `json:"text"`
	PostAt  *int64 `json:"postAt,omitempty"`
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst *messageBody) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func token(r *http.Request) string {
	cred, _ := session.FromContext(r.Context())
	return cred.Token
}

// SendMessageHandler posts a message now or schedules it for postAt.
func (s *Server) SendMessageHandler(w http.ResponseWriter, r *http.Request) {
	var body messageBody
	if !decodeBody(w, r, &body) {
		return
	}
	ref, err := s.gateway.Send(r.Context(), token(r), chat.SendRequest{
		Channel: body.Channel,
		Text:    body.Text,
		PostAt:  body.PostAt,
	})
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// ListMessagesHandler returns the messages at ts or within oldest/latest.
func (s *Server) ListMessagesHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	msgs, err := s.gateway.List(r.Context(), token(r), chat.ListRequest{
		Channel: q.Get("channel"),
		TS:      q.Get("ts"),
		Oldest:  q.Get("oldest"),
		Latest:  q.Get("latest"),
	})
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, msgs)
}

// EditMessageHandler replaces a message's text.
func (s *Server) EditMessageHandler(w http.ResponseWriter, r *http.Request) {
	var body messageBody
	if !decodeBody(w, r, &body) {
		return
	}
	ref, err := s.gateway.Edit(r.Context(), token(r), body.Channel, body.TS, body.Text)
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ref)
}

// DeleteMessageHandler removes a message. channel and ts are read from the
// query string, or from a JSON body when the query omits them.
func (s *Server) DeleteMessageHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	body := messageBody{Channel: q.Get("channel"), TS: q.Get("ts")}
	if body.Channel == "" && body.TS == "" && r.ContentLength != 0 {
		if !decodeBody(w, r, &body) {
			return
		}
	}
	ack, err := s.gateway.Delete(r.Context(), token(r), body.Channel, body.TS)
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}
