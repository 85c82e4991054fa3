package console

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"txagent/internal/agent"
	"txagent/internal/logger"
)

// Turner resolves one user turn within a session.
type Turner interface {
	Turn(ctx context.Context, session *agent.Session, userText string) (*agent.TurnResult, error)
}

// Run reads user lines until end of input and prints the answer for each.
// A failed turn is printed and the loop continues with the same session.
// Cancellation of ctx ends the loop after the in-flight turn. Run returns
// an error only when input cannot be read.
func Run(ctx context.Context, in LineReader, out *Writer, turner Turner, session *agent.Session) error {
	log := logger.FromContext(ctx)

	for {
		if ctx.Err() != nil {
			return nil
		}

		line, err := in.ReadLine(UserPrompt)
		if errors.Is(err, io.EOF) {
			log.Debug("End of input, closing session %s", session.ID)
			return nil
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}

		text := strings.TrimSpace(line)
		if text == "" {
			continue
		}

		result, err := turner.Turn(ctx, session, text)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			log.Error("Turn failed: %v", err)
			out.Error(err)
			continue
		}

		out.Answer(result.Answer)
	}
}
