package main

import (
	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/intake-cli/internal/config"
	"github.com/sells-group/intake-cli/internal/correction"
	"github.com/sells-group/intake-cli/internal/pipeline"
)

// loadStages returns the active correction stages: the rules file when one
// is configured, otherwise the built-in list, minus disabled IDs.
func loadStages(c *config.Config) ([]correction.Stage, error) {
	stages := correction.DefaultStages()
	if c.Corrections.RulesFile != "" {
		loaded, err := correction.LoadStages(c.Corrections.RulesFile)
		if err != nil {
			return nil, eris.Wrap(err, "load correction rules")
		}
		stages = loaded
	}

	if len(c.Corrections.Disabled) > 0 {
		known := make(map[string]bool, len(stages))
		for _, s := range stages {
			known[s.ID] = true
		}
		for _, id := range c.Corrections.Disabled {
			if !known[id] {
				zap.L().Warn("disabled correction stage not found", zap.String("stage", id))
			}
		}
	}
	return correction.Filter(stages, c.Corrections.Disabled), nil
}

// initPipeline validates the config for mode and builds the Pipeline.
func initPipeline(mode string) (*pipeline.Pipeline, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	stages, err := loadStages(cfg)
	if err != nil {
		return nil, err
	}

	p, err := pipeline.New(cfg, stages)
	if err != nil {
		return nil, eris.Wrap(err, "init pipeline")
	}

	zap.L().Debug("pipeline initialized",
		zap.String("mode", mode),
		zap.Int("correction_stages", len(stages)),
	)
	return p, nil
}
