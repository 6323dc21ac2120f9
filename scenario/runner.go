package scenario

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Runner executes stages in order, the first failing stage aborts the rest
type Runner struct {
	backend Backend
	stages  []Stage
	logger  log.Logger
}

// NewRunner returns a runner of stages, DefaultStages when none are given
func NewRunner(b Backend, logger log.Logger, stages ...Stage) *Runner {
	if len(stages) == 0 {
		stages = DefaultStages()
	}
	if logger == nil {
		logger = log.Root()
	}
	return &Runner{
		backend: b,
		stages:  stages,
		logger:  logger,
	}
}

// Stages returns the stages of the runner
func (r *Runner) Stages() []Stage {
	return append([]Stage{}, r.stages...)
}

// Run executes the scenario with params and returns the last context, the report and the
// error of the failed stage
func (r *Runner) Run(ctx context.Context, params Params) (Context, *Report, error) {
	id := uuid.NewString()
	sc := Context{
		RunID:  id,
		Params: params,
		Logger: r.logger.New("run", id),
	}
	rp := &Report{RunID: id}

	var failure error
	for _, st := range r.stages {
		if failure != nil {
			rp.Results = append(rp.Results, StageResult{Name: st.Name, Status: Skipped})
			continue
		}
		if err := ctx.Err(); err != nil {
			failure = errors.Wrapf(err, "stage %s", st.Name)
			rp.Results = append(rp.Results, StageResult{Name: st.Name, Status: Failed, Err: failure})
			continue
		}

		sc.Logger.Debug("Stage started", "stage", st.Name)
		begin := time.Now()
		next, err := st.Run(ctx, r.backend, sc)
		res := StageResult{Name: st.Name, Duration: time.Since(begin)}
		sc = next
		if err != nil {
			failure = errors.Wrapf(err, "stage %s", st.Name)
			res.Status, res.Err = Failed, failure
			sc.Logger.Error("Stage failed", "stage", st.Name, "err", err)
		} else {
			res.Status = Passed
			sc.Logger.Debug("Stage passed", "stage", st.Name, "elapsed", res.Duration)
		}
		rp.Results = append(rp.Results, res)
	}
	return sc, rp, failure
}
