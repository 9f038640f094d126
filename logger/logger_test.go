package logger_test

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/katanacore/machine/errors"
	"github.com/katanacore/machine/logger"
)

func TestCentralLogger(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Write(w)
	assert.Equal(t, "", w.String())

	log.Log(logger.Allow, "test", "this is a test")
	log.Write(w)
	assert.Equal(t, "test: this is a test\n", w.String())

	w.Reset()

	log.Log(logger.Allow, "test2", "this is another test")
	log.Write(w)
	assert.Equal(t, "test: this is a test\ntest2: this is another test\n", w.String())

	w.Reset()
	log.Tail(w, 100)
	assert.Equal(t, "test: this is a test\ntest2: this is another test\n", w.String())

	w.Reset()
	log.Tail(w, 2)
	assert.Equal(t, "test: this is a test\ntest2: this is another test\n", w.String())

	w.Reset()
	log.Tail(w, 1)
	assert.Equal(t, "test2: this is another test\n", w.String())

	w.Reset()
	log.Tail(w, 0)
	assert.Equal(t, "", w.String())
}

type prohibitLogging struct {
	allow bool
}

func (p prohibitLogging) AllowLogging() bool { return p.allow }

func TestPermissions(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	for _, allow := range []bool{true, false, true, false} {
		log.Clear()
		w.Reset()
		log.Log(prohibitLogging{allow: allow}, "tag", "detail")
		log.Write(w)
		if allow {
			assert.Equal(t, "tag: detail\n", w.String())
		} else {
			assert.Equal(t, "", w.String())
		}
	}
}

func TestErrorLogging(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	err := stderrors.New("test error")

	log.Log(logger.Allow, "tag", err)
	log.Write(w)
	assert.Equal(t, "tag: test error\n", w.String())

	log.Clear()
	w.Reset()

	log.Logf(logger.Allow, "tag", "wrapped: %v", err)
	log.Write(w)
	assert.Equal(t, "tag: wrapped: test error\n", w.String())
}

type stringerTest struct{}

func (stringerTest) String() string { return "stringer test" }

func TestStringerLogging(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Log(logger.Allow, "tag", stringerTest{})
	log.Write(w)
	assert.Equal(t, "tag: stringer test\n", w.String())
}

func TestIntLogging(t *testing.T) {
	log := logger.NewLogger(100)
	w := &strings.Builder{}

	log.Log(logger.Allow, "tag", 100)
	log.Write(w)
	assert.Equal(t, "tag: 100\n", w.String())
}

func TestRingBufferWraps(t *testing.T) {
	log := logger.NewLogger(2)
	w := &strings.Builder{}

	log.Log(logger.Allow, "a", "1")
	log.Log(logger.Allow, "b", "2")
	log.Log(logger.Allow, "c", "3")

	log.Write(w)
	assert.Equal(t, "b: 2\nc: 3\n", w.String())
}

func TestFatalSeverityBypassesPermission(t *testing.T) {
	log := logger.NewLogger(10)
	w := &strings.Builder{}

	log.LogSeverity(errors.FATAL, prohibitLogging{allow: false}, "tag", "boom")
	log.Write(w)
	assert.Equal(t, "tag: boom\n", w.String())
}

func TestCentralPackageFuncs(t *testing.T) {
	logger.Central().Clear()
	w := &strings.Builder{}

	logger.Log("pkg", "message")
	logger.Write(w)
	assert.Equal(t, "pkg: message\n", w.String())

	w.Reset()
	logger.Tail(w, 1)
	assert.Equal(t, "pkg: message\n", w.String())
}
