package scheduler

import (
	"time"

	"github.com/katanacore/machine/config"
	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/logger"
)

// Scheduler owns the ordered module registry and the cooperative run loop
// (spec.md §4.D).
type Scheduler struct {
	modules   []Module
	byName    map[string]int
	running   bool
	stopReq   bool
	timeslice int64 // nanoseconds, DEFAULT_TIMESLICE_LENGTH
	elapsed   int64 // accumulated virtual nanoseconds since the last reset
}

// New returns a Scheduler using cfg's configured timeslice length.
func New(cfg *config.Config) *Scheduler {
	ts := int64(cfg.Timeslice)
	if ts <= 0 {
		ts = int64(config.DefaultTimeslice)
	}
	return &Scheduler{
		byName:    make(map[string]int),
		timeslice: ts,
	}
}

// Register adds m to the registry. Modules must be registered leaves-first
// (event queue, memory, SH4, ASIC, GPU, AICA, maple, IDE — spec.md §4.D);
// the scheduler preserves registration order for both Init and RunSlice.
func (s *Scheduler) Register(m Module) error {
	if _, exists := s.byName[m.Name()]; exists {
		return errors.Errorf("scheduler: module %q already registered", m.Name())
	}
	s.byName[m.Name()] = len(s.modules)
	s.modules = append(s.modules, m)
	return nil
}

// Init calls Init on every module implementing Initializer, in registration
// order.
func (s *Scheduler) Init() error {
	for _, m := range s.modules {
		if init, ok := m.(Initializer); ok {
			if err := init.Init(); err != nil {
				return errors.Errorf("scheduler: init %q: %v", m.Name(), err)
			}
		}
	}
	return nil
}

// Reset calls Reset on every module implementing Resetter, in registration
// order.
func (s *Scheduler) Reset() {
	for _, m := range s.modules {
		if r, ok := m.(Resetter); ok {
			r.Reset()
		}
	}
	s.elapsed = 0
}

// Stop requests that Run exit after the current slice completes. Polled
// between slices only — there is no mid-slice cancellation (spec.md §5).
func (s *Scheduler) Stop() {
	s.stopReq = true
}

// Elapsed returns the accumulated virtual time since the last Reset.
func (s *Scheduler) Elapsed() time.Duration {
	return time.Duration(s.elapsed)
}

// Run starts every Starter module then loops the run-slice step until Stop
// is called.
func (s *Scheduler) Run() error {
	if err := s.startAll(); err != nil {
		return err
	}
	s.running = true
	s.stopReq = false

	for !s.stopReq {
		s.runOneSlice()
	}

	s.running = false
	s.stopAll()
	return nil
}

// RunFor runs until the accumulated virtual time reaches the given target,
// measured from the moment RunFor is called (spec.md §4.D "run_for").
func (s *Scheduler) RunFor(secs int64, nanos int64) error {
	if err := s.startAll(); err != nil {
		return err
	}
	s.running = true
	s.stopReq = false

	target := s.elapsed + secs*1_000_000_000 + nanos
	for !s.stopReq && s.elapsed < target {
		s.runOneSlice()
	}

	s.running = false
	s.stopAll()
	return nil
}

func (s *Scheduler) startAll() error {
	for _, m := range s.modules {
		if st, ok := m.(Starter); ok {
			if err := st.Start(); err != nil {
				return errors.Errorf("scheduler: start %q: %v", m.Name(), err)
			}
		}
	}
	return nil
}

func (s *Scheduler) stopAll() {
	for _, m := range s.modules {
		if st, ok := m.(Stopper); ok {
			st.Stop()
		}
	}
}

func (s *Scheduler) runOneSlice() {
	timeToRun := s.timeslice
	for _, m := range s.modules {
		if r, ok := m.(Runner); ok {
			timeToRun = r.RunSlice(timeToRun)
		}
	}
	if timeToRun < 0 {
		timeToRun = 0
	}
	s.elapsed += timeToRun
	logger.LogSeverity(errors.TRACE, "scheduler", "slice consumed")
}

// IsRunning reports whether Run/RunFor is currently looping.
func (s *Scheduler) IsRunning() bool { return s.running }
