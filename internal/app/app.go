// Package app assembles docedit's components from configuration.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgallion1/docedit/internal/approval"
	"github.com/dgallion1/docedit/internal/config"
	"github.com/dgallion1/docedit/internal/docstore"
	"github.com/dgallion1/docedit/internal/indexer"
	"github.com/dgallion1/docedit/internal/llm"
	"github.com/dgallion1/docedit/internal/session"
	"github.com/dgallion1/docedit/internal/tools"
)

// statsWindow is how far back model latency stats reach.
const statsWindow = time.Hour

// App holds the wired components shared by the server and the CLI.
type App struct {
	Resolver *docstore.Resolver
	Sessions *session.Registry
	Gateway  *tools.Gateway
	Policy   approval.Policy
	Stats    *llm.Stats
	Runner   *approval.Runner
	Pending  approval.Store
	Model    string

	closers []func()
}

// New builds the application. The model is only constructed when withModel
// is set, so read-only commands work without provider credentials.
func New(ctx context.Context, cfg config.Config, log *slog.Logger, withModel bool) (*App, error) {
	a := &App{Resolver: &docstore.Resolver{Root: cfg.DocumentRoot}}

	if cfg.S3Enabled() {
		bucket, err := docstore.NewS3Bucket(docstore.S3Config{
			Endpoint:  cfg.S3Endpoint,
			Region:    cfg.S3Region,
			AccessKey: cfg.S3AccessKey,
			SecretKey: cfg.S3SecretKey,
			Bucket:    cfg.S3Bucket,
			UseSSL:    cfg.S3UseSSL,
		})
		if err != nil {
			return nil, err
		}
		a.Resolver.S3 = bucket
	}

	reg, err := session.NewRegistry(a.Resolver, indexer.New(), cfg.SessionCacheSize, log)
	if err != nil {
		return nil, fmt.Errorf("create session registry: %w", err)
	}
	a.Sessions = reg
	a.Gateway = tools.NewGateway(reg, a.Resolver, cfg.ExportDir, log)

	a.Policy, err = approval.LoadPolicy(cfg.ApprovalPolicyFile)
	if err != nil {
		return nil, err
	}

	if !withModel {
		return a, nil
	}

	model, err := llm.New(llm.Config{
		Provider:       cfg.LLMProvider,
		OpenAIKey:      cfg.OpenAIAPIKey,
		OpenAIModel:    cfg.OpenAIModel,
		OpenAIBaseURL:  cfg.OpenAIBaseURL,
		AnthropicKey:   cfg.AnthropicAPIKey,
		AnthropicModel: cfg.AnthropicModel,
	})
	if err != nil {
		return nil, err
	}
	if c, ok := model.(interface{ Close() }); ok {
		a.closers = append(a.closers, c.Close)
	}
	a.Model = cfg.OpenAIModel
	if cfg.LLMProvider == "anthropic" {
		a.Model = cfg.AnthropicModel
	}

	a.Pending, err = pendingStore(ctx, cfg, log, a)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.Stats = llm.NewStats(statsWindow)
	chat := llm.WithStats(llm.WithRetry(model, log), a.Stats)
	a.Runner = approval.NewRunner(chat, a.Gateway, a.Pending, log,
		approval.WithPolicy(a.Policy),
		approval.WithMaxSteps(cfg.MaxSteps),
		approval.WithPreviewer(a.Gateway),
	)
	return a, nil
}

// pendingStore returns a Redis store when REDIS_URL is set, otherwise an
// in-process store swept in the background until ctx ends.
func pendingStore(ctx context.Context, cfg config.Config, log *slog.Logger, a *App) (approval.Store, error) {
	if cfg.RedisURL != "" {
		rs, err := approval.NewRedisStore(ctx, cfg.RedisURL, cfg.PendingTTL)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { rs.Close() })
		log.Info("pending approvals stored in redis")
		return rs, nil
	}

	ms := approval.NewMemoryStore(cfg.PendingTTL)
	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				ms.Cleanup()
			}
		}
	}()
	return ms, nil
}

// Close releases model and store connections.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
