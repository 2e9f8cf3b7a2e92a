package service

import (
	"context"

	"github.com/leadervibe/internal/logging"
	"github.com/leadervibe/internal/mailer"
)

// notify sends a rendered message without failing the caller. Render and
// delivery errors are logged.
func notify(ctx context.Context, sender mailer.Sender, msg mailer.Message, renderErr error) {
	log := logging.Ctx(ctx)
	if renderErr != nil {
		log.Error().Err(renderErr).Str("template", msg.Template).Msg("failed to render email")
		return
	}
	if sender == nil {
		return
	}
	if err := sender.Send(ctx, msg); err != nil {
		log.Error().Err(err).Str("template", msg.Template).Strs("to", msg.To).Msg("failed to send email")
	}
}
