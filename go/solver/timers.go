package solver

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Timers accumulates the time spent in each phase of a run. It is safe for
// concurrent use.
type Timers struct {
	mu sync.Mutex

	ModelParsing     time.Duration
	ValueComposition time.Duration
	ResultGeneration time.Duration
	Total            time.Duration

	// slowest and fastest finalization of a single object
	Max, Min time.Duration

	Objects    int
	PathValues int
}

// Since adds the time elapsed since start to *d.
func (t *Timers) Since(d *time.Duration, start time.Time) {
	elapsed := time.Since(start)
	t.mu.Lock()
	*d += elapsed
	t.mu.Unlock()
}

func (t *Timers) object(elapsed time.Duration, paths int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.Objects == 0 || t.Max < elapsed {
		t.Max = elapsed
	}
	if t.Objects == 0 || t.Min > elapsed {
		t.Min = elapsed
	}
	t.Objects++
	t.PathValues += paths
}

func (t *Timers) Fprint(w io.Writer) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintln(w, "Model parsing:     ", t.ModelParsing.String())
	fmt.Fprintln(w, "Value composition: ", t.ValueComposition.String())
	fmt.Fprintln(w, "Result generation: ", t.ResultGeneration.String())
	fmt.Fprintln(w, "TOTAL:             ", t.Total.String())
	fmt.Fprintln(w, "Max:               ", t.Max.String())
	fmt.Fprintln(w, "Min:               ", t.Min.String())
	fmt.Fprintln(w, "#objects:          ", t.Objects)
	fmt.Fprintln(w, "#path values:      ", t.PathValues)
}
