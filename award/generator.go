/*
generator.go - Annual award generation

PURPOSE:
  Generate is the single entry point that turns the population into a
  persisted award set for one year.

STATE MACHINE (per year):
  ungenerated --Generate--> generated
  generated --Generate(Force)--> generated (whole set replaced)
  generated --Generate--> AlreadyGeneratedError, records untouched

  While a run holds the year lock the year is mid-regeneration; a second
  run for the same year waits, runs for other years proceed.

FAILURES:
  Nothing is retried. A failed ReplaceYear in a transactional store leaves
  the prior set in place. A store that reports ErrPartialReplace has lost
  the prior set, and the returned PersistenceError says so.

SEE ALSO:
  - eligibility.go, assign.go: The pure steps
  - store.go: ReplaceYear contract
  - scheduler.go: Automatic generation of the previous year
*/
package award

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/warp/hr-engine/hr"
	"github.com/warp/hr-engine/metrics"
)

// MinYear is the first year awards can be generated for.
const MinYear = 2020

// GenerateRequest asks for one year's awards.
type GenerateRequest struct {
	Year  int
	Force bool // replace an existing set
}

// Result is a successful generation run.
type Result struct {
	Year       int
	Records    []Record    // in rank order
	Candidates []Candidate // the awarded candidates, in rank order
	Statistics Statistics
	Replaced   int // prior records discarded
}

// Generator ranks and persists annual awards.
type Generator struct {
	Store      Store
	Population Population
	Tiers      TierTable
	Source     ScoreSource
	Logger     *zap.Logger
	Metrics    *metrics.Manager
	Now        func() time.Time

	// OnReplace is called after a year's set has been committed.
	OnReplace func(year int)

	locks *YearLocks
}

// NewGenerator creates a generator with the default tier table and the
// lifetime score source.
func NewGenerator(store Store, population Population, logger *zap.Logger) *Generator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Generator{
		Store:      store,
		Population: population,
		Tiers:      DefaultTierTable(),
		Source:     ScoreSourceLifetime,
		Logger:     logger.Named("award"),
		Now:        time.Now,
		locks:      NewYearLocks(),
	}
}

func (g *Generator) now() time.Time {
	if g.Now != nil {
		return g.Now()
	}
	return time.Now()
}

// ValidateYear checks MinYear <= year <= current year.
func (g *Generator) ValidateYear(year int) error {
	current := g.now().Year()
	if year < MinYear || year > current {
		return fmt.Errorf("%w: %d (must be between %d and %d)", ErrInvalidYear, year, MinYear, current)
	}
	return nil
}

// Generate computes and persists the award set for req.Year.
func (g *Generator) Generate(ctx context.Context, req GenerateRequest) (result *Result, err error) {
	start := time.Now()
	log := g.Logger.With(zap.Int("year", req.Year), zap.Bool("force", req.Force))
	defer func() {
		g.Metrics.ObserveGeneration(outcomeOf(err), time.Since(start))
	}()

	if err := g.ValidateYear(req.Year); err != nil {
		return nil, err
	}
	if err := g.Tiers.Validate(); err != nil {
		return nil, err
	}
	if !g.Source.Valid() {
		return nil, fmt.Errorf("%w: unknown score source %q", ErrInvalidTiers, g.Source)
	}

	if g.locks == nil {
		g.locks = NewYearLocks()
	}
	unlock := g.locks.Lock(req.Year)
	defer unlock()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	existing, err := g.Store.CountAwards(ctx, req.Year)
	if err != nil {
		return nil, &PersistenceError{Year: req.Year, Op: "count", Err: err}
	}
	if existing > 0 && !req.Force {
		log.Info("refusing to overwrite generated year", zap.Int("existing", existing))
		return nil, &AlreadyGeneratedError{Year: req.Year, Existing: existing}
	}

	employees, err := g.Population.AllEmployees(ctx)
	if err != nil {
		return nil, &PersistenceError{Year: req.Year, Op: "load employees", Err: err}
	}
	from, to := hr.YearBounds(req.Year)
	yearly, err := g.Population.ScoreSummaries(ctx, from, to)
	if err != nil {
		return nil, &PersistenceError{Year: req.Year, Op: "load scores", Err: err}
	}

	candidates, eligible, err := SelectCandidates(req.Year, employees, yearly, g.Source)
	g.Metrics.SetEligible(req.Year, len(candidates))
	if err != nil {
		if errors.Is(err, ErrDuplicateCandidate) {
			log.Error("invariant violation in population", zap.Error(err))
		}
		return nil, err
	}

	records := Assign(req.Year, candidates, g.Tiers)
	Stamp(records, g.now())

	replaced, err := g.Store.ReplaceYear(ctx, req.Year, records, req.Force)
	if err != nil {
		var gen *AlreadyGeneratedError
		if errors.As(err, &gen) {
			log.Info("refusing to overwrite generated year", zap.Int("existing", gen.Existing))
			return nil, gen
		}
		perr := &PersistenceError{
			Year:         req.Year,
			Op:           "replace",
			PriorSetLost: errors.Is(err, ErrPartialReplace),
			Err:          err,
		}
		switch {
		case errors.Is(err, ErrDuplicateAward):
			log.Error("invariant violation: duplicate award on insert", zap.Error(err))
		case perr.PriorSetLost:
			log.Error("award replace lost the previous set", zap.Int("lost", existing), zap.Error(err))
		default:
			log.Error("award replace failed", zap.Error(err))
		}
		return nil, perr
	}
	g.Metrics.AddAwardsCreated(len(records))
	if g.OnReplace != nil {
		g.OnReplace(req.Year)
	}

	counts, totalBonus := Summarize(records)
	result = &Result{
		Year:       req.Year,
		Records:    records,
		Candidates: awardedCandidates(candidates, records),
		Replaced:   replaced,
		Statistics: Statistics{
			TotalEmployees:    eligible,
			EligibleEmployees: len(candidates),
			AwardedEmployees:  len(records),
			TotalBonus:        totalBonus,
			LevelCounts:       counts,
		},
	}

	log.Info("awards generated",
		zap.Int("employees", len(employees)),
		zap.Int("eligible", eligible),
		zap.Int("candidates", len(candidates)),
		zap.Int("awarded", len(records)),
		zap.Int("replaced", replaced),
		zap.Int64("totalBonus", totalBonus),
		zap.String("source", string(g.Source)),
		zap.Duration("took", time.Since(start)),
	)
	return result, nil
}

// awardedCandidates returns the candidates behind records, in rank order.
func awardedCandidates(candidates []Candidate, records []Record) []Candidate {
	byID := make(map[string]Candidate, len(candidates))
	for _, c := range candidates {
		byID[c.EmployeeID] = c
	}
	out := make([]Candidate, 0, len(records))
	for _, r := range records {
		out = append(out, byID[r.EmployeeID])
	}
	return out
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeSuccess
	case errors.Is(err, ErrAlreadyGenerated):
		return metrics.OutcomeAlreadyGenerated
	case errors.Is(err, ErrNoEligibleCandidates):
		return metrics.OutcomeNoEligible
	case errors.Is(err, ErrPersistence):
		return metrics.OutcomePersistence
	case IsClientError(err):
		return metrics.OutcomeInvalid
	default:
		return metrics.OutcomeError
	}
}
