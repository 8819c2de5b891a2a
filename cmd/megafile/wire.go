package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/custodia-labs/megafile/internal/adapters/driven/ai"
	"github.com/custodia-labs/megafile/internal/adapters/driven/blob"
	"github.com/custodia-labs/megafile/internal/adapters/driven/config/env"
	"github.com/custodia-labs/megafile/internal/adapters/driven/config/file"
	"github.com/custodia-labs/megafile/internal/adapters/driven/extract"
	"github.com/custodia-labs/megafile/internal/adapters/driven/pdf"
	"github.com/custodia-labs/megafile/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/megafile/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/megafile/internal/adapters/driving/cli"
	"github.com/custodia-labs/megafile/internal/core/domain"
	"github.com/custodia-labs/megafile/internal/core/ports/driven"
	"github.com/custodia-labs/megafile/internal/core/ports/driving"
	"github.com/custodia-labs/megafile/internal/core/services"
	"github.com/custodia-labs/megafile/internal/logger"
)

// uploadsDir holds stored uploads inside the data directory.
const uploadsDir = "uploads"

// envSettings overlays the environment on every settings read.
type envSettings struct {
	driving.SettingsService
	overrides env.Overrides
}

func (s *envSettings) Get() (*domain.Settings, error) {
	settings, err := s.SettingsService.Get()
	if err != nil {
		return nil, err
	}
	s.overrides.Apply(settings)
	return settings, nil
}

// bootstrap wires the adapters and services for one command run.
func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func(), error) {
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	fail := func(err error) (*cli.Services, func(), error) {
		cleanup()
		return nil, nil, err
	}

	configDir, err := file.DefaultDir()
	if err != nil {
		return fail(err)
	}

	var (
		configStore driven.ConfigStore
		fileConfig  *file.ConfigStore
	)
	if opts.Ephemeral {
		configStore = memory.NewConfigStore()
	} else {
		fileConfig, err = file.NewConfigStore(configDir)
		if err != nil {
			return fail(fmt.Errorf("loading configuration: %w", err))
		}
		configStore = fileConfig
	}

	overrides, err := env.Load()
	if err != nil {
		return fail(err)
	}
	settingsService := &envSettings{
		SettingsService: services.NewSettingsService(configStore, ai.NewConfigValidator()),
		overrides:       overrides,
	}
	settings, err := settingsService.Get()
	if err != nil {
		return fail(fmt.Errorf("loading settings: %w", err))
	}

	var (
		operations driven.OperationStore
		blobs      driven.BlobStore
	)
	if opts.Ephemeral {
		logger.Debug("Ephemeral run: operations and uploads stay in memory")
		operations = memory.NewOperationStore()
		blobs = memory.NewBlobStore()
	} else {
		dataDir := firstNonEmpty(opts.DataDir, settings.DataDir, filepath.Join(configDir, "data"))
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			return fail(fmt.Errorf("opening database: %w", err))
		}
		closers = append(closers, func() { _ = store.Close() })
		logger.Debug("Database: %s", store.Path())

		files, err := blob.NewStore(filepath.Join(dataDir, uploadsDir))
		if err != nil {
			return fail(err)
		}
		operations = store.OperationStore()
		blobs = files
	}

	llm := ai.Init(&settings.LLM)
	closers = append(closers, llm.Close)
	for _, warning := range llm.Warnings {
		logger.Warn("%s", warning)
	}
	if llm.FellBack {
		logger.Warn("LLM unavailable: documents keep their PDF text and answers list the matches")
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"))
	if err != nil {
		return fail(err)
	}

	reader := pdf.NewReader()
	extractor := extract.NewExtractor(reader, llm.LLMService, settings.Extraction.MaxPromptChars)
	extractor.SetPromptStore(prompts)

	queue, err := services.NewExtractionQueue(operations, blobs, extractor, settings.Extraction)
	if err != nil {
		return fail(fmt.Errorf("starting extraction queue: %w", err))
	}
	closers = append(closers, func() {
		if err := queue.Close(); err != nil {
			logger.Warn("Closing extraction queue: %v", err)
		}
	})

	search := services.NewSearchService(operations, settings.Search)
	assistant := services.NewAssistantService(search, llm.LLMService, settings.Assistant)
	assistant.SetPromptStore(prompts)

	if fileConfig != nil {
		watchCtx, cancel := context.WithCancel(ctx)
		done := make(chan struct{})
		go func() {
			defer close(done)
			err := fileConfig.Watch(watchCtx, func() {
				updated, err := settingsService.Get()
				if err != nil {
					logger.Warn("Reloading settings: %v", err)
					return
				}
				search.UpdateSettings(updated.Search)
				prompts.Reload()
			})
			if err != nil {
				logger.Debug("Config watch stopped: %v", err)
			}
		}()
		closers = append(closers, func() {
			cancel()
			<-done
		})
	}

	return &cli.Services{
		Search:    search,
		Assistant: assistant,
		Operation: services.NewOperationService(operations, blobs, queue),
		Evidence:  services.NewEvidenceService(operations, blobs, reader, settings.Search.Highlights),
		Settings:  settingsService,
		Actions:   services.NewResultActionService(operations),
	}, cleanup, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
