package cmd

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/cobra"

	"allocsim/config"
	"allocsim/internal/engine"
	"allocsim/internal/journal"
	"allocsim/internal/report"
	"allocsim/internal/repository"
	"allocsim/strategies/momentum"
	"allocsim/strategies/static"
	"allocsim/types"
)

var runConfigPath string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one simulation described by a config file",
	Args:  cobra.NoArgs,
	RunE:  runSimulation,
}

func init() {
	rootCmd.AddCommand(runCmd)
	runCmd.Flags().StringVarP(&runConfigPath, "config", "c", "allocsim.yaml", "path to run config (YAML or JSON)")
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadFromFile(runConfigPath)
	if err != nil {
		return err
	}

	ctx := context.Background()
	db, err := repository.NewDatabase(ctx, cfg.Database.URL)
	if err != nil {
		return fmt.Errorf("connect datasource: %w", err)
	}
	defer db.Close()

	start, _ := config.ParseDate(cfg.Simulation.Start)
	end, _ := config.ParseDate(cfg.Simulation.End)

	rng := rand.New(rand.NewSource(cfg.Simulation.Seed))
	model, err := priceModel(cfg.Broker.PriceModel, rng)
	if err != nil {
		return err
	}
	slip := engine.Slippage{
		BuyFrac:   decimal.NewFromFloat(cfg.Broker.Slippage.BuyFraction),
		BuyConst:  decimal.NewFromFloat(cfg.Broker.Slippage.BuyConst),
		SellFrac:  decimal.NewFromFloat(cfg.Broker.Slippage.SellFraction),
		SellConst: decimal.NewFromFloat(cfg.Broker.Slippage.SellConst),
	}

	broker, err := loadBroker(ctx, &db, cfg, model, slip, start, end)
	if err != nil {
		return err
	}

	predictor, err := buildPredictor(cfg)
	if err != nil {
		return err
	}

	simCfg := engine.DefaultSimulationConfig()
	simCfg.Start = start
	simCfg.End = end
	simCfg.AccountId = cfg.Account.ID
	if cfg.Account.Kind != "" {
		simCfg.AccountKind = types.AccountKind(cfg.Account.Kind)
	}
	simCfg.Principal = decimal.NewFromFloat(cfg.Account.Principal)
	simCfg.ReinvestDividends = cfg.Account.ReinvestDividends
	if cfg.Simulation.RebalanceEveryDays > 0 {
		simCfg.RebalanceEveryDays = cfg.Simulation.RebalanceEveryDays
	}
	if cfg.Simulation.TargetChangeEps > 0 {
		simCfg.TargetChangeEps = decimal.NewFromFloat(cfg.Simulation.TargetChangeEps)
	}
	if cfg.Simulation.TrackingEps > 0 {
		simCfg.TrackingEps = decimal.NewFromFloat(cfg.Simulation.TrackingEps)
	}
	simCfg.MaxRebalanceDelayDays = cfg.Simulation.MaxRebalanceDelayDays
	simCfg.Seed = cfg.Simulation.Seed
	simCfg.Progress = cfg.Simulation.Progress

	sim := engine.NewSimulation(simCfg, broker, predictor, rng)
	result, err := sim.Run()
	if err != nil {
		return fmt.Errorf("simulation: %w", err)
	}

	rep := report.Generate(result.Daily, result.Ledger, decimal.NewFromFloat(cfg.Report.RiskFreeRate))
	report.Print(rep)

	if err := writeOutputs(cfg, result); err != nil {
		return err
	}
	return nil
}

// loadBroker pulls every configured series out of the repository and
// wires a broker around them.
func loadBroker(ctx context.Context, db *repository.Database, cfg *config.Config, model engine.PriceModel, slip engine.Slippage, start, end time.Time) (*engine.Broker, error) {
	if start.IsZero() {
		start = time.Date(1900, 1, 1, 0, 0, 0, 0, time.UTC)
	}
	if end.IsZero() {
		end = time.Now().UTC()
	}

	loaded := make([]*types.Series, 0, len(cfg.Broker.Tickers))
	aux := make([]*types.ValueSeries, 0, len(cfg.Broker.Tickers))
	var broker *engine.Broker
	for _, ticker := range cfg.Broker.Tickers {
		asset, err := db.GetAssetByTicker(ctx, ticker)
		if err != nil {
			return nil, err
		}
		series, err := db.GetCandles(ctx, asset, start, end)
		if err != nil {
			return nil, err
		}
		loaded = append(loaded, series)

		if ticker == cfg.Broker.Guide {
			broker, err = engine.NewBroker(series, model, slip, cfg.Broker.AdjustPrices)
			if err != nil {
				return nil, err
			}
		}

		divs, err := db.GetDividends(ctx, asset)
		if err != nil && !errors.Is(err, repository.ErrNoSeries) {
			return nil, err
		}
		if divs != nil {
			aux = append(aux, divs)
		}
	}
	if broker == nil {
		return nil, fmt.Errorf("guide ticker %q is not among broker.tickers", cfg.Broker.Guide)
	}
	for _, series := range loaded {
		broker.AddSeries(series)
	}
	for _, vs := range aux {
		broker.AddAux(vs)
	}

	rates, err := db.GetInterestRates(ctx)
	if err != nil && !errors.Is(err, repository.ErrNoSeries) {
		return nil, err
	}
	if rates != nil {
		broker.AddAux(rates)
	}
	return broker, nil
}

func priceModel(name string, rng *rand.Rand) (engine.PriceModel, error) {
	switch strings.ToLower(name) {
	case "", "close":
		return engine.ClosePrice{}, nil
	case "open":
		return engine.OpenPrice{}, nil
	case "adjclose":
		return engine.AdjustedClosePrice{}, nil
	case "random-low-high":
		return engine.RandomInRange{Rng: rng}, nil
	case "random-open-close":
		return engine.RandomOpenClose{Rng: rng}, nil
	default:
		return nil, fmt.Errorf("unknown price model %q", name)
	}
}

func buildPredictor(cfg *config.Config) (engine.Predictor, error) {
	switch cfg.Strategy.Name {
	case "static":
		return static.New(cfg.Strategy.Weights)
	case "momentum":
		return momentum.New(cfg.Broker.Tickers, cfg.Strategy.Lookback), nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", cfg.Strategy.Name)
	}
}

func writeOutputs(cfg *config.Config, result *engine.Result) error {
	if cfg.Report.DailyCSV != "" {
		if err := report.WriteSeriesCSVFile(cfg.Report.DailyCSV, result.Daily); err != nil {
			return err
		}
	}
	if cfg.Report.MonthlyCSV != "" {
		if err := report.WriteSeriesCSVFile(cfg.Report.MonthlyCSV, result.Monthly); err != nil {
			return err
		}
	}
	if cfg.Report.HoldingsCSV != "" {
		if err := report.WriteHoldingsCSVFile(cfg.Report.HoldingsCSV, result.Holdings); err != nil {
			return err
		}
	}

	var j journal.Journal
	var err error
	switch strings.ToLower(cfg.Journal.Type) {
	case "sqlite":
		j, err = journal.NewSQLite(cfg.Journal.DBPath)
	case "csv":
		j, err = journal.NewCSV(cfg.Journal.TransactionsFile, cfg.Journal.ValuesFile)
	default:
		return nil
	}
	if err != nil {
		return fmt.Errorf("open journal: %w", err)
	}
	defer j.Close()

	if err := journal.WriteRun(j, result.Ledger, result.Receipts, result.Values); err != nil {
		return fmt.Errorf("write journal: %w", err)
	}
	return nil
}
