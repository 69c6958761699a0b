package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"iter"

	domainChat "github.com/AzielCF/az-chat/domains/chat"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/AzielCF/az-chat/pkg/metrics"
	"github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"
)

type chatService struct {
	client      domainChat.ICompletionClient
	deployment  string
	trimChoices bool
	metrics     *metrics.Collector
}

// NewChatService proxies conversations to client. With trimChoices only the
// first choice of every event is forwarded.
func NewChatService(client domainChat.ICompletionClient, deployment string, trimChoices bool, collector *metrics.Collector) domainChat.IChatUsecase {
	return &chatService{
		client:      client,
		deployment:  deployment,
		trimChoices: trimChoices,
		metrics:     collector,
	}
}

func (s *chatService) Stream(ctx context.Context, request domainChat.StreamRequest) iter.Seq[[]byte] {
	return func(yield func([]byte) bool) {
		// This sends all messages, so the request may exceed the model's context window.
		messages := make([]domainChat.Message, 0, len(request.Messages)+1)
		messages = append(messages, domainChat.Message{Role: domainChat.RoleSystem, Content: domainChat.SystemPrompt})
		messages = append(messages, request.Messages...)

		stream := s.client.StreamChat(ctx, s.deployment, messages)
		defer stream.Close()

		for stream.Next() {
			line, ok := s.encodeEvent(stream.Current())
			if !ok {
				continue
			}
			if !yield(line) {
				s.metrics.RecordStream(metrics.StreamCancelled)
				return
			}
			s.metrics.RecordStreamLine()
		}

		err := stream.Err()
		switch {
		case err == nil:
			s.metrics.RecordStream(metrics.StreamCompleted)
		case ctx.Err() != nil:
			// The client went away; nobody is left to read an error line.
			s.metrics.RecordStream(metrics.StreamCancelled)
		default:
			streamErr := pkgError.UpstreamStreamError{Err: err}
			logrus.WithError(streamErr).Error("[CHAT] Completion stream failed")
			s.metrics.RecordStream(metrics.StreamFailed)
			yield(errorLine(streamErr))
		}
	}
}

// encodeEvent renders one upstream event as a single NDJSON line. It reports
// false for events that produce no line.
func (s *chatService) encodeEvent(raw []byte) ([]byte, bool) {
	if s.trimChoices {
		choice := gjson.GetBytes(raw, "choices.0")
		if !choice.Exists() {
			return nil, false
		}
		raw = []byte(choice.Raw)
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		logrus.WithError(err).Warn("[CHAT] Dropping malformed completion event")
		return nil, false
	}
	buf.WriteByte('\n')
	return buf.Bytes(), true
}

func errorLine(err error) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(map[string]string{"error": err.Error()})
	return buf.Bytes()
}
