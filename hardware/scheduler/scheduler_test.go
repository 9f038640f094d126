package scheduler_test

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/katanacore/machine/config"
	"github.com/katanacore/machine/hardware/scheduler"
)

type countingModule struct {
	name     string
	budget   int64
	resets   int
	runCalls int
	value    uint32
}

func (m *countingModule) Name() string { return m.name }
func (m *countingModule) Reset()       { m.resets++ }
func (m *countingModule) RunSlice(ns int64) int64 {
	m.runCalls++
	if m.budget > 0 && m.budget < ns {
		return m.budget
	}
	return ns
}
func (m *countingModule) Save(w io.Writer) error {
	return binary.Write(w, binary.LittleEndian, m.value)
}
func (m *countingModule) Load(r io.Reader) error {
	return binary.Read(r, binary.LittleEndian, &m.value)
}

func TestRegistrationOrderPreserved(t *testing.T) {
	s := scheduler.New(config.New())
	a := &countingModule{name: "a"}
	b := &countingModule{name: "b"}

	require.NoError(t, s.Register(a))
	require.NoError(t, s.Register(b))
	assert.Error(t, s.Register(&countingModule{name: "a"}))
}

func TestRunOneSliceRespectsShortenedBudget(t *testing.T) {
	s := scheduler.New(config.New())
	breakpointHit := &countingModule{name: "arm", budget: 100}
	require.NoError(t, s.Register(breakpointHit))

	// Every slice is shortened to 100ns, so RunFor takes ten of them to
	// reach its 1000ns target.
	require.NoError(t, s.RunFor(0, 1000))
	assert.Equal(t, int64(1000), s.Elapsed().Nanoseconds())
}

func TestResetIdempotence(t *testing.T) {
	s := scheduler.New(config.New())
	m := &countingModule{name: "asic"}
	require.NoError(t, s.Register(m))

	s.Reset()
	s.Reset()
	assert.Equal(t, 2, m.resets)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s := scheduler.New(config.New())
	m := &countingModule{name: "aica", value: 0xABCD}
	require.NoError(t, s.Register(m))

	var buf bytes.Buffer
	require.NoError(t, s.SaveState(&buf))

	m.value = 0
	require.NoError(t, s.LoadState(&buf))
	assert.Equal(t, uint32(0xABCD), m.value)
}

func TestLoadStateUnknownModuleFails(t *testing.T) {
	src := scheduler.New(config.New())
	m := &countingModule{name: "ghost", value: 1}
	require.NoError(t, src.Register(m))

	var buf bytes.Buffer
	require.NoError(t, src.SaveState(&buf))

	dst := scheduler.New(config.New())
	err := dst.LoadState(&buf)
	assert.Error(t, err)
}

func TestLoadStateVersionMismatchFails(t *testing.T) {
	s := scheduler.New(config.New())
	err := s.LoadState(bytes.NewReader([]byte("not a save state at all!!")))
	assert.Error(t, err)
}

func TestLoadStateMissingModuleResets(t *testing.T) {
	src := scheduler.New(config.New())
	require.NoError(t, src.Register(&countingModule{name: "keep", value: 7}))
	var buf bytes.Buffer
	require.NoError(t, src.SaveState(&buf))

	dst := scheduler.New(config.New())
	keep := &countingModule{name: "keep"}
	extra := &countingModule{name: "extra"}
	require.NoError(t, dst.Register(keep))
	require.NoError(t, dst.Register(extra))

	require.NoError(t, dst.LoadState(&buf))
	assert.Equal(t, 1, extra.resets)
}
