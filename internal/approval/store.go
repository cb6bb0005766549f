package approval

import (
	"context"
	"errors"
	"time"

	"github.com/dgallion1/docedit/internal/llm"
)

// ErrTokenNotFound means the token is unknown, expired or already used.
var ErrTokenNotFound = errors.New("approval token not found")

// Continuation is everything needed to resume a suspended run: the
// conversation up to and including the assistant turn whose tool calls await
// approval.
type Continuation struct {
	Token     string        `json:"token"`
	Document  string        `json:"document"`
	Messages  []llm.Message `json:"messages"`
	Step      int           `json:"step"`
	Request   Request       `json:"request"`
	CreatedAt time.Time     `json:"created_at"`
}

// Store holds continuations between the two phases. Take removes the
// continuation so a token resumes at most once.
type Store interface {
	Save(ctx context.Context, c *Continuation) error
	Take(ctx context.Context, token string) (*Continuation, error)
}
