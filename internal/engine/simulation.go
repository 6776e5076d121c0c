package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"allocsim/types"
)

// SimulationConfig tunes one simulation run. Both rebalance tolerances
// are exposed rather than hard-coded: TargetChangeEps triggers on the
// strategy changing its mind, TrackingEps (typically looser) on the
// account drifting away from the target.
type SimulationConfig struct {
	Start time.Time
	End   time.Time

	AccountId         string
	AccountKind       types.AccountKind
	Principal         decimal.Decimal
	ReinvestDividends bool

	// RebalanceEveryDays forces a rebalance after this many calendar
	// days even if nothing else triggers one.
	RebalanceEveryDays    int
	TargetChangeEps       decimal.Decimal
	TrackingEps           decimal.Decimal
	MaxRebalanceDelayDays int

	Seed     int64
	Progress bool
}

// DefaultSimulationConfig returns the tuning used when a config file
// leaves the knobs unset.
func DefaultSimulationConfig() SimulationConfig {
	return SimulationConfig{
		AccountId:          "sim",
		AccountKind:        types.Taxable,
		Principal:          decimal.New(10000, 0),
		RebalanceEveryDays: 30,
		TargetChangeEps:    decimal.New(1, -2), // 0.01
		TrackingEps:        decimal.New(5, -2), // 0.05
	}
}

// HoldingsSnapshot pairs a period boundary with the account's realized
// allocation at that moment.
type HoldingsSnapshot struct {
	Time     time.Time
	Holdings *types.Distribution
}

// Result is the output boundary consumed by reporting: both return
// series normalized to start at 1.0, period holdings, and the full
// ledger for audit.
type Result struct {
	Daily      *types.ValueSeries
	Monthly    *types.ValueSeries
	Holdings   []HoldingsSnapshot
	Ledger     []types.Transaction
	Receipts   []types.Receipt
	Values     *types.ValueSeries // raw daily total-value snapshots
	FinalValue decimal.Decimal
}

// Simulation drives one account through the guide calendar, asking the
// predictor for a target allocation each day and rebalancing toward it
// when due. Single-threaded and deterministic: all randomness (price
// models, rebalance delay) must come from rng, seeded by the caller.
type Simulation struct {
	cfg       SimulationConfig
	broker    *Broker
	predictor Predictor
	rng       *rand.Rand
}

func NewSimulation(cfg SimulationConfig, broker *Broker, predictor Predictor, rng *rand.Rand) *Simulation {
	return &Simulation{cfg: cfg, broker: broker, predictor: predictor, rng: rng}
}

// Run resets the broker, opens a fresh account, and walks the guide
// series day by day. The run aborts on the first precondition violation
// so the caller can diagnose the strategy or configuration behind it.
func (s *Simulation) Run() (*Result, error) {
	s.broker.Reset()

	guide := s.broker.Guide()
	startIdx, endIdx, err := s.window(guide)
	if err != nil {
		return nil, err
	}
	s.broker.setTime(guide.Time(startIdx))
	account := s.broker.OpenAccount(s.cfg.AccountId, s.cfg.AccountKind, s.cfg.Principal, s.cfg.ReinvestDividends)

	var bar *progressbar.ProgressBar
	if s.cfg.Progress {
		bar = initProgressBar(endIdx - startIdx + 1)
	}

	daily := types.NewValueSeries("daily-returns")
	monthly := types.NewValueSeries("monthly-returns")
	var holdings []HoldingsSnapshot

	var lastTarget *types.Distribution
	var pendingTarget *types.Distribution
	var lastRebalance time.Time
	pendingDelay := -1

	for i := startIdx; i <= endIdx; i++ {
		var prev, next time.Time
		if i > startIdx {
			prev = guide.Time(i - 1)
		}
		if i < endIdx {
			next = guide.Time(i + 1)
		}
		cur := guide.Time(i)

		ti, err := NewTimeInfo(prev, cur, next)
		if err != nil {
			return nil, fmt.Errorf("day %s: %w", cur.Format("2006-01-02"), err)
		}
		s.broker.setTime(cur)

		target, err := s.predictor.Allocate(s.broker)
		if err != nil {
			return nil, fmt.Errorf("predictor %s on %s: %w", s.predictor.Name(), cur.Format("2006-01-02"), err)
		}

		if target != nil && pendingDelay < 0 {
			due, err := s.rebalanceDue(account, target, cur, lastTarget, lastRebalance)
			if err != nil {
				return nil, err
			}
			if due {
				pendingTarget = target.Copy()
				pendingDelay = s.drawDelay()
			}
		}

		if pendingDelay == 0 {
			// A fresher opinion from today supersedes the queued one.
			if target != nil {
				pendingTarget = target.Copy()
			}
			if err := account.Rebalance(pendingTarget); err != nil {
				return nil, fmt.Errorf("rebalance on %s: %w", cur.Format("2006-01-02"), err)
			}
			lastTarget = pendingTarget
			lastRebalance = cur
			pendingTarget = nil
			pendingDelay = -1
		} else if pendingDelay > 0 {
			pendingDelay--
		}

		if err := account.EndOfDay(ti); err != nil {
			return nil, fmt.Errorf("end of day %s: %w", cur.Format("2006-01-02"), err)
		}

		total, err := account.TotalValue()
		if err != nil {
			return nil, err
		}
		daily.Append(cur, total.Div(s.cfg.Principal))
		if ti.LastDayOfMonth {
			monthly.Append(cur, total.Div(s.cfg.Principal))
			dist, err := account.CurrentDistribution()
			if err != nil {
				return nil, err
			}
			holdings = append(holdings, HoldingsSnapshot{Time: cur, Holdings: dist})
		}

		if bar != nil {
			bar.Add(1)
		}
	}

	return s.finishRun(account, daily, monthly, holdings)
}

// finishRun liquidates the account and normalizes both output series to
// start at 1.0.
func (s *Simulation) finishRun(account *Account, daily, monthly *types.ValueSeries, holdings []HoldingsSnapshot) (*Result, error) {
	if err := account.Liquidate("end of run"); err != nil {
		return nil, err
	}
	daily.Normalize()
	monthly.Normalize()
	return &Result{
		Daily:      daily,
		Monthly:    monthly,
		Holdings:   holdings,
		Ledger:     account.Ledger(),
		Receipts:   account.Receipts(),
		Values:     account.ValueHistory(),
		FinalValue: account.Cash(),
	}, nil
}

// rebalanceDue decides whether today warrants trading: too long since
// the last rebalance, the strategy's target moved, or the account
// drifted off target.
func (s *Simulation) rebalanceDue(account *Account, target *types.Distribution, now time.Time, lastTarget *types.Distribution, lastRebalance time.Time) (bool, error) {
	if lastTarget == nil {
		return true, nil
	}
	if s.cfg.RebalanceEveryDays > 0 {
		elapsed := now.Sub(lastRebalance)
		if elapsed > time.Duration(s.cfg.RebalanceEveryDays)*24*time.Hour {
			return true, nil
		}
	}
	if target.Distance(lastTarget).GreaterThan(s.cfg.TargetChangeEps) {
		return true, nil
	}
	current, err := account.CurrentDistribution()
	if err != nil {
		return false, err
	}
	if current.Distance(target).GreaterThan(s.cfg.TrackingEps) {
		return true, nil
	}
	return false, nil
}

// drawDelay picks how many days a due rebalance waits before executing,
// uniform in [0, MaxRebalanceDelayDays].
func (s *Simulation) drawDelay() int {
	if s.cfg.MaxRebalanceDelayDays <= 0 {
		return 0
	}
	return s.rng.Intn(s.cfg.MaxRebalanceDelayDays + 1)
}

// window maps the configured start/end onto guide indices. Zero times
// mean "from the first day" and "to the last".
func (s *Simulation) window(guide *types.Series) (int, int, error) {
	startIdx := 0
	endIdx := guide.Len() - 1
	if !s.cfg.Start.IsZero() {
		for startIdx <= endIdx && guide.Time(startIdx).Before(s.cfg.Start) {
			startIdx++
		}
	}
	if !s.cfg.End.IsZero() {
		for endIdx >= startIdx && guide.Time(endIdx).After(s.cfg.End) {
			endIdx--
		}
	}
	if startIdx > endIdx {
		return 0, 0, errors.New("simulation window contains no guide days")
	}
	return startIdx, endIdx, nil
}

func initProgressBar(maxTicks int) *progressbar.ProgressBar {
	return progressbar.NewOptions(maxTicks,
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionSetElapsedTime(true),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetDescription("Simulating..."),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}))
}
