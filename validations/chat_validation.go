package validations

import (
	"context"
	"errors"

	domainChat "github.com/AzielCF/az-chat/domains/chat"
	pkgError "github.com/AzielCF/az-chat/pkg/error"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

func ValidateStreamRequest(ctx context.Context, request domainChat.StreamRequest) error {
	err := validation.ValidateStructWithContext(ctx, &request,
		validation.Field(&request.Messages, validation.Required, validation.Each(validation.By(validateMessage))),
	)

	if err != nil {
		return pkgError.ValidationError(err.Error())
	}

	return nil
}

// The system message is synthesized server-side, so callers may only send
// user and assistant turns.
func validateMessage(value any) error {
	m, ok := value.(domainChat.Message)
	if !ok {
		return errors.New("must be a message object")
	}
	return validation.ValidateStruct(&m,
		validation.Field(&m.Role, validation.Required, validation.In(domainChat.RoleUser, domainChat.RoleAssistant)),
		validation.Field(&m.Content, validation.Required),
	)
}
