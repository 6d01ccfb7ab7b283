package main

import (
	"slices"
	"strings"

	"github.com/sasha-s/go-deadlock"

	"github.com/ddnetgo/predict/internal/replay"
)

// collector gathers results from the replay workers.
type collector struct {
	mu      deadlock.Mutex
	results []replay.Result
	failed  []string
}

func newCollector() *collector {
	return &collector{}
}

func (c *collector) add(res replay.Result) {
	c.mu.Lock()
	c.results = append(c.results, res)
	c.mu.Unlock()
}

func (c *collector) fail(path string) {
	c.mu.Lock()
	c.failed = append(c.failed, path)
	c.mu.Unlock()
}

// snapshot returns copies of the results sorted by replay name.
func (c *collector) snapshot() ([]replay.Result, []string) {
	c.mu.Lock()
	results := slices.Clone(c.results)
	failed := slices.Clone(c.failed)
	c.mu.Unlock()

	slices.SortFunc(results, func(a, b replay.Result) int {
		return strings.Compare(a.Replay, b.Replay)
	})
	slices.Sort(failed)
	return results, failed
}
