package rest

import (
	"bufio"
	"context"
	"iter"

	domainChat "github.com/AzielCF/az-chat/domains/chat"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	"github.com/AzielCF/az-chat/pkg/utils"
	"github.com/AzielCF/az-chat/validations"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"github.com/valyala/fasthttp"
)

const contentTypeNDJSON = "application/x-ndjson"

type Chat struct {
	Service domainChat.IChatUsecase
}

// InitRestChat mounts the streaming endpoint and its legacy alias behind
// loginRequired.
func InitRestChat(app fiber.Router, service domainChat.IChatUsecase, loginRequired fiber.Handler) Chat {
	rest := Chat{Service: service}
	app.Post("/chat/stream", loginRequired, rest.Stream)
	app.Post("/chat", loginRequired, rest.Stream)

	return rest
}

func (handler *Chat) Stream(c *fiber.Ctx) error {
	var request domainChat.StreamRequest
	if err := c.BodyParser(&request); err != nil {
		utils.PanicIfNeeded(pkgError.ValidationError("invalid request body: " + err.Error()))
	}
	utils.PanicIfNeeded(validations.ValidateStreamRequest(c.UserContext(), request))

	// The body is written after the handler returns, so the request context
	// is already recycled by then; a failed flush cancels this one instead.
	ctx, cancel := context.WithCancel(context.Background())
	lines := handler.Service.Stream(ctx, request)

	c.Set(fiber.HeaderContentType, contentTypeNDJSON)
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		writeLines(w, lines, cancel)
	}))
	return nil
}

// writeLines flushes each line as it arrives and cancels the upstream
// stream once the client stops accepting bytes.
func writeLines(w *bufio.Writer, lines iter.Seq[[]byte], cancel context.CancelFunc) {
	defer cancel()
	for line := range lines {
		if _, err := w.Write(line); err != nil {
			logrus.WithError(err).Debug("[CHAT] Client went away")
			return
		}
		if err := w.Flush(); err != nil {
			logrus.WithError(err).Debug("[CHAT] Client went away")
			return
		}
	}
}
