// Package advisory is the user-visible side channel for warnings and errors
// emitted during a fetch. Advisories never change what the fetch returns.
package advisory

import (
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

// Advisor receives warning and error notices.
type Advisor interface {
	Warnf(format string, args ...any)
	Errorf(format string, args ...any)
}

// LogAdvisor writes advisories through a zerolog logger.
type LogAdvisor struct {
	Log zerolog.Logger
}

func NewLogAdvisor(log zerolog.Logger) *LogAdvisor { return &LogAdvisor{Log: log} }

func (a *LogAdvisor) Warnf(format string, args ...any)  { a.Log.Warn().Msgf(format, args...) }
func (a *LogAdvisor) Errorf(format string, args ...any) { a.Log.Error().Msgf(format, args...) }

// Level distinguishes warnings from errors in collected advisories.
type Level int

const (
	Warn Level = iota
	Error
)

// Message is one collected advisory.
type Message struct {
	Level Level
	Text  string
}

// Collector keeps advisories in memory so the caller can display them after
// the fetch resolves.
type Collector struct {
	mu   sync.Mutex
	msgs []Message
}

func (c *Collector) Warnf(format string, args ...any)  { c.add(Warn, format, args...) }
func (c *Collector) Errorf(format string, args ...any) { c.add(Error, format, args...) }

func (c *Collector) add(level Level, format string, args ...any) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = append(c.msgs, Message{Level: level, Text: fmt.Sprintf(format, args...)})
}

// Messages returns a copy of the advisories collected so far.
func (c *Collector) Messages() []Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]Message(nil), c.msgs...)
}

// Reset drops all collected advisories.
func (c *Collector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.msgs = nil
}

// Nop discards advisories.
type Nop struct{}

func (Nop) Warnf(string, ...any)  {}
func (Nop) Errorf(string, ...any) {}
