package main

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/fyrsmithlabs/pipetriage/internal/adf"
	"github.com/fyrsmithlabs/pipetriage/internal/analyzer"
	"github.com/fyrsmithlabs/pipetriage/internal/catalog"
	"github.com/fyrsmithlabs/pipetriage/internal/config"
	"github.com/fyrsmithlabs/pipetriage/internal/embeddings"
	"github.com/fyrsmithlabs/pipetriage/internal/factcheck"
	"github.com/fyrsmithlabs/pipetriage/internal/genai"
	"github.com/fyrsmithlabs/pipetriage/internal/knowledge"
	"github.com/fyrsmithlabs/pipetriage/internal/logging"
	"github.com/fyrsmithlabs/pipetriage/internal/notify"
	"github.com/fyrsmithlabs/pipetriage/internal/report"
	"github.com/fyrsmithlabs/pipetriage/internal/vectorstore"
)

// app holds the wired components shared by the CLI commands. Optional
// collaborators (vector store, AI client) are nil when unavailable and
// everything downstream degrades.
type app struct {
	cfg     *config.Config
	logger  *zap.Logger
	catalog *catalog.Catalog

	patterns *knowledge.PatternMatcher
	semantic *knowledge.SemanticMatcher
	store    *vectorstore.ChromemStore
	client   genai.Client
	triager  *analyzer.Service
}

// newApp loads configuration and wires the triage pipeline. Vector
// search and AI failures are logged and degrade, never fatal.
func newApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(resolveConfigPath())
	if err != nil {
		return nil, err
	}

	logger, err := logging.New(cfg.App.LogLevel, cfg.App.LogFormat)
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, logger: logger}
	a.catalog = catalog.Default(logger)
	a.patterns = knowledge.NewPatternMatcher(a.catalog, logger)

	a.initSemantic(ctx)
	a.initGenAI(ctx)

	checker := factcheck.NewChecker(a.client, logger)
	a.triager = analyzer.NewService(a.patterns, a.semantic, a.client, checker, logger)
	return a, nil
}

// initSemantic builds the embedding service, the vector store and the
// semantic matcher, and populates the index on first use.
func (a *app) initSemantic(ctx context.Context) {
	embedder, err := embeddings.NewService(embeddings.Config{
		BaseURL: a.cfg.Embeddings.BaseURL,
		Model:   a.cfg.Embeddings.Model,
		APIKey:  a.cfg.Embeddings.APIKey,
	})
	if err != nil {
		a.logger.Warn("embedding service unavailable, semantic search disabled", zap.Error(err))
		return
	}

	store, err := vectorstore.NewChromemStore(vectorstore.ChromemConfig{
		Path:       a.cfg.VectorStore.Path,
		Compress:   a.cfg.VectorStore.Compress,
		Collection: a.cfg.VectorStore.Collection,
	}, embedder, a.logger)
	if err != nil {
		a.logger.Warn("vector store unavailable, semantic search disabled", zap.Error(err))
		return
	}

	semantic := knowledge.NewSemanticMatcher(store, a.catalog, a.logger)
	if err := semantic.EnsureIndexed(ctx); err != nil {
		a.logger.Warn("indexing knowledge base failed, semantic search disabled", zap.Error(err))
		_ = store.Close()
		return
	}

	a.store = store
	a.semantic = semantic
}

// initGenAI builds the Gemini client. A missing API key is normal and
// leaves the client nil.
func (a *app) initGenAI(ctx context.Context) {
	client, err := genai.NewGemini(ctx, genai.Config{
		APIKey:      a.cfg.AI.APIKey,
		Model:       a.cfg.AI.Model,
		Temperature: a.cfg.AI.Temperature,
	}, a.logger)
	switch {
	case errors.Is(err, genai.ErrNotConfigured):
		a.logger.Info("AI client not configured, using deterministic fallback")
	case err != nil:
		a.logger.Warn("AI client unavailable, using deterministic fallback", zap.Error(err))
	default:
		a.client = client
	}
}

// adfClient builds the Data Factory client; the Azure section must be
// fully configured.
func (a *app) adfClient() (*adf.Client, error) {
	if !a.cfg.Azure.Configured() {
		return nil, fmt.Errorf("azure section is not fully configured (need tenant_id, client_id, client_secret, subscription_id, resource_group, factory_name)")
	}
	return adf.NewClient(adf.Config{
		TenantID:       a.cfg.Azure.TenantID,
		ClientID:       a.cfg.Azure.ClientID,
		ClientSecret:   a.cfg.Azure.ClientSecret,
		SubscriptionID: a.cfg.Azure.SubscriptionID,
		ResourceGroup:  a.cfg.Azure.ResourceGroup,
		FactoryName:    a.cfg.Azure.FactoryName,
	}, a.logger)
}

// mailer builds the SMTP mailer from config.
func (a *app) mailer() *notify.Mailer {
	return notify.NewMailer(notify.Config{
		Host:     a.cfg.SMTP.Host,
		Port:     a.cfg.SMTP.Port,
		Username: a.cfg.SMTP.Username,
		Password: a.cfg.SMTP.Password,
		From:     a.cfg.SMTP.From,
		To:       a.cfg.SMTP.To,
		StartTLS: a.cfg.SMTP.StartTLS,
	}, a.logger)
}

// reportBuilder builds the HTML/text report renderer.
func (a *app) reportBuilder() (*report.Builder, error) {
	return report.NewBuilder(report.PortalConfig{
		SubscriptionID: a.cfg.Azure.SubscriptionID,
		ResourceGroup:  a.cfg.Azure.ResourceGroup,
		FactoryName:    a.cfg.Azure.FactoryName,
	}, a.logger)
}

// close releases held resources. Safe on a partially built app.
func (a *app) close() {
	if a.store != nil {
		_ = a.store.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}
