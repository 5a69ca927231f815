package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/config"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/scheduler"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/secret"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/service"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/session"
	"github.com/STORAZE-COMPANY/STORAZE-COMPANY-indicador-online-dash/internal/vault"
)

func getContext(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

// loadSealer builds the token sealer. Vault wins over SESSION_ENCRYPTION_KEY
// when VAULT_ADDR is set.
func loadSealer(ctx context.Context, cfg *config.Config) (*secret.Box, error) {
	raw := cfg.Session.EncryptionKey
	if cfg.Vault.Enabled() {
		client, err := vault.NewClient(&vault.Config{
			Address: cfg.Vault.Address,
			Token:   cfg.Vault.Token,
			KVMount: cfg.Vault.KVMount,
		})
		if err != nil {
			return nil, err
		}

		if err := client.Health(ctx); err != nil {
			return nil, err
		}

		vctx, cancel := context.WithTimeout(ctx, 10*time.Second)
		defer cancel()
		raw, err = client.GetString(vctx, cfg.Vault.KeyPath, cfg.Vault.KeyField)
		if err != nil {
			return nil, fmt.Errorf("failed to read key from vault: %w", err)
		}
		slog.Info("Session encryption key loaded from Vault", "path", cfg.Vault.KeyPath)
	}

	key, err := secret.KeyFromString(raw)
	if err != nil {
		return nil, err
	}
	return secret.NewBox(key)
}

// sweepSessions returns the task that drops expired sessions
func sweepSessions(sessions *session.Manager) scheduler.Task {
	return func(ctx context.Context) error {
		n, err := sessions.Sweep(ctx)
		if err != nil {
			return err
		}
		if n > 0 {
			slog.Info("Expired sessions removed", "count", n)
		}
		return nil
	}
}

// evictDrafts returns the task that unloads drafts idle for maxIdle
func evictDrafts(checklists *service.ChecklistService, maxIdle time.Duration) scheduler.Task {
	return func(context.Context) error {
		if n := checklists.EvictIdle(maxIdle); n > 0 {
			slog.Debug("Idle drafts unloaded", "count", n)
		}
		return nil
	}
}
