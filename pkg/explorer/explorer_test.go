package explorer_test

import (
	"context"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	clocktesting "k8s.io/utils/clock/testing"

	"github.com/p-org/psym/pkg/config"
	"github.com/p-org/psym/pkg/explorer"
	"github.com/p-org/psym/pkg/guard"
	"github.com/p-org/psym/pkg/metrics"
	"github.com/p-org/psym/pkg/runtime"
	"github.com/p-org/psym/pkg/scheduler"
	vs "github.com/p-org/psym/pkg/valuesummary"
)

// overlapping sends like Broadcast but first builds a summary from two
// values under the same guard.
type overlapping struct {
	*runtime.Broadcast
}

func (o overlapping) Step(sender *vs.PrimitiveVS[*runtime.Machine]) error {
	g := sender.Universe()
	vs.FromGuardedValues(
		vs.GuardedValue[int]{Value: vs.New(1).Values()[0], Guard: g},
		vs.GuardedValue[int]{Value: vs.New(2).Values()[0], Guard: g},
	)
	return o.Broadcast.Step(sender)
}

var _ = Describe("Run", func() {
	var (
		cfg    *config.Config
		logger *logrus.Logger
		hook   *test.Hook
		ctx    context.Context
	)

	BeforeEach(func() {
		guard.Reset()
		cfg = config.Default()
		cfg.MaxIterations = 0
		logger, hook = test.NewNullLogger()
		ctx = context.Background()
	})

	run := func(s scheduler.Scheduler) (*explorer.Report, error) {
		return explorer.Run(ctx, s, explorer.WithLogger(logger), explorer.WithRunID("test-run"))
	}

	Context("with a program free of violations", func() {
		It("explores every interleaving without reduction", func() {
			s := scheduler.NewIterativeBoundedScheduler(cfg, runtime.NewBroadcast(3, 1, 1), logger)
			report, err := run(s)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Outcome).To(Equal(metrics.Completed))
			Expect(report.Exhausted).To(BeTrue())
			Expect(report.Iterations).To(Equal(6))
			Expect(report.MaxDepth).To(Equal(3))
			Expect(report.RunID).To(Equal("test-run"))
		})

		It("needs one iteration when no senders share a receiver", func() {
			s := scheduler.NewDPORScheduler(cfg, runtime.NewBroadcast(3, 3, 1), logger)
			report, err := run(s)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Outcome).To(Equal(metrics.Completed))
			Expect(report.Iterations).To(Equal(1))
		})

		It("stops at the iteration bound", func() {
			cfg.MaxIterations = 2
			s := scheduler.NewDPORScheduler(cfg, runtime.NewBroadcast(3, 1, 1), logger)
			report, err := run(s)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Outcome).To(Equal(metrics.Bounded))
			Expect(report.Exhausted).To(BeFalse())
			Expect(report.Iterations).To(Equal(2))
		})

		It("counts iterations cut off at the depth bound", func() {
			cfg.MaxDepth = 2
			s := scheduler.NewIterativeBoundedScheduler(cfg, runtime.NewBroadcast(2, 1, 2), logger)
			report, err := run(s)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Outcome).To(Equal(metrics.Completed))
			Expect(report.BoundedIterations).To(Equal(report.Iterations))
			Expect(report.MaxDepth).To(Equal(2))
		})

		It("measures the run with the given clock and rate limits progress", func() {
			clock := clocktesting.NewFakePassiveClock(time.Now())
			s := scheduler.NewIterativeBoundedScheduler(cfg, runtime.NewBroadcast(3, 1, 1), logger)
			report, err := explorer.Run(ctx, s,
				explorer.WithLogger(logger),
				explorer.WithClock(clock),
				explorer.WithProgressInterval(time.Hour),
			)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Duration).To(BeZero())

			var progress int
			for _, e := range hook.AllEntries() {
				if e.Message == "exploring" {
					progress++
				}
			}
			Expect(progress).To(Equal(1))
		})

		It("tags the final log line with the run id", func() {
			s := scheduler.NewDPORScheduler(cfg, runtime.NewBroadcast(2, 2, 1), logger)
			_, err := run(s)
			Expect(err).ToNot(HaveOccurred())

			entry := hook.LastEntry()
			Expect(entry).ToNot(BeNil())
			Expect(entry.Message).To(Equal("exploration finished"))
			Expect(entry.Data).To(HaveKeyWithValue("run", "test-run"))
			Expect(entry.Data).To(HaveKeyWithValue("outcome", metrics.Completed))
		})
	})

	Context("with a program that violates its assertion", func() {
		It("reports the violation", func() {
			before := testutil.ToFloat64(metrics.Runs.WithLabelValues(metrics.Failed))
			s := scheduler.NewDPORScheduler(cfg, runtime.NewBroadcast(2, 1, 1, runtime.WithFailAt(2)), logger)

			report, err := run(s)
			Expect(err).ToNot(HaveOccurred())
			Expect(report.Outcome).To(Equal(metrics.Failed))
			Expect(errors.Is(report.Violation, runtime.ErrSafetyViolation)).To(BeTrue())
			Expect(report.Iterations).To(BeZero())
			Expect(testutil.ToFloat64(metrics.Runs.WithLabelValues(metrics.Failed))).To(Equal(before + 1))
		})
	})

	Context("when an internal invariant breaks", func() {
		BeforeEach(func() {
			vs.SetInvariantChecks(true)
		})

		AfterEach(func() {
			vs.SetInvariantChecks(false)
		})

		It("aborts the run with an internal error", func() {
			before := testutil.ToFloat64(metrics.InternalErrors)
			program := overlapping{runtime.NewBroadcast(2, 1, 1)}
			s := scheduler.NewIterativeBoundedScheduler(cfg, program, logger)

			report, err := run(s)
			Expect(err).To(HaveOccurred())

			var internal *explorer.InternalError
			Expect(errors.As(err, &internal)).To(BeTrue())
			Expect(internal.Iteration).To(BeZero())
			Expect(internal.Depth).To(BeZero())
			Expect(internal.Stack).ToNot(BeEmpty())
			Expect(errors.Is(err, vs.ErrNonExclusiveGuards)).To(BeTrue())
			Expect(errors.Is(err, runtime.ErrSafetyViolation)).To(BeFalse())

			Expect(report.Outcome).To(Equal(metrics.Failed))
			Expect(testutil.ToFloat64(metrics.InternalErrors)).To(Equal(before + 1))
			Expect(hook.Entries).To(ContainElement(HaveField("Level", logrus.ErrorLevel)))
		})
	})

	Context("when the context is cancelled", func() {
		It("stops before the next iteration", func() {
			cancelled, cancel := context.WithCancel(context.Background())
			cancel()
			ctx = cancelled

			s := scheduler.NewDPORScheduler(cfg, runtime.NewBroadcast(3, 1, 1), logger)
			report, err := run(s)
			Expect(err).To(MatchError(context.Canceled))
			Expect(report.Outcome).To(Equal(metrics.Cancelled))
			Expect(report.Iterations).To(BeZero())
		})
	})
})
