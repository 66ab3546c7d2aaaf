package main

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"contractrisk/internal/app/config"
	"contractrisk/internal/app/domains/entity/etrisk"
	"contractrisk/internal/app/pkg/logger"
	"contractrisk/internal/app/providers"
)

// errHighRisk --fail-on-high 时发现高风险
var errHighRisk = errors.New("contract evaluated as high risk")

// reportEvaluator 命令行使用的评估能力
type reportEvaluator interface {
	Evaluate(ctx context.Context, contractText string) (*etrisk.Report, error)
}

// newEvaluator 测试中替换
var newEvaluator = func(ctx context.Context, cfg *config.Config, log logger.Logger) (reportEvaluator, error) {
	return providers.NewEvaluator(ctx, cfg, log)
}

type rootOptions struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "riskctl",
		Short:         "Contract risk evaluation from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultConfigPath, "config file path")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(newEvaluateCmd(opts))
	cmd.AddCommand(newCriteriaCmd())
	return cmd
}

func (o *rootOptions) load() (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, err
	}
	if err := cfg.LLM.Validate(); err != nil {
		return nil, nil, err
	}

	log, err := logger.NewZapLogger(o.logLevel)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}

func exitCode(err error) int {
	if errors.Is(err, errHighRisk) {
		return 2
	}
	return 1
}
