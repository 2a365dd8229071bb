// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"

	"github.com/spf13/viper"

	"github.com/pdiddy/lex-engine/internal/ai"
	"github.com/pdiddy/lex-engine/internal/secrets"
	"github.com/pdiddy/lex-engine/pkg/types"
)

// pipelineConfig assembles the stage configuration from the config file
// and environment. Unset keys keep their zero value; each stage applies
// its own defaults.
func pipelineConfig() types.PipelineConfig {
	cfg := types.PipelineConfig{
		AI: types.AIConfig{
			Provider:   viper.GetString("ai.provider"),
			Model:      viper.GetString("ai.model"),
			APIKey:     viper.GetString("ai.api_key"),
			MaxRetries: viper.GetInt("ai.max_retries"),
			Timeout:    viper.GetDuration("ai.timeout"),
		},
		Router: types.RouterConfig{
			DefaultRoute: types.Route(viper.GetString("router.default_route")),
		},
		Synthesizer: types.SynthesizerConfig{
			MaxResults: viper.GetInt("synthesizer.max_results"),
		},
		Registry: types.RegistryConfig{
			Endpoint:   viper.GetString("registry.endpoint"),
			MaxRetries: viper.GetInt("registry.max_retries"),
			CacheTTL:   viper.GetDuration("registry.cache_ttl"),
			CacheSize:  viper.GetInt("registry.cache_size"),
		},
		Retriever: types.RetrieverConfig{
			IndexDir: viper.GetString("retriever.index_dir"),
			TopK:     viper.GetInt("retriever.top_k"),
		},
	}

	cfg.Registry.Timeout = viper.GetDuration("registry.timeout")
	cfg.Registry.UserAgent = viper.GetString("registry.user_agent")
	if cfg.Registry.UserAgent == "" {
		cfg.Registry.UserAgent = "lex-engine/" + version
	}
	if cfg.Retriever.IndexDir == "" {
		cfg.Retriever.IndexDir = "corpus/index"
	}
	for _, l := range viper.GetStringSlice("registry.language_order") {
		cfg.Registry.LanguageOrder = append(cfg.Registry.LanguageOrder, types.Language(l))
	}

	cfg.AI.APIKey = secretDefault(secrets.KeyForProvider(cfg.AI.Provider), cfg.AI.APIKey)

	return cfg
}

// buildBackend constructs the configured AI backend, resolving the API
// key from .secrets/ when the config does not carry one.
func buildBackend(ctx context.Context, cfg types.AIConfig) (ai.Backend, error) {
	return ai.New(ctx, cfg)
}

// queryLanguage resolves the --lang flag, defaulting to German.
func queryLanguage(lang string) types.Language {
	l := types.Language(lang)
	if !l.Valid() {
		return types.LangGerman
	}
	return l
}
