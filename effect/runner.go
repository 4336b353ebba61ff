package effect

import (
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"go.uber.org/zap"
)

// Runner holds every live instance and ticks them once per frame.
// Instances are kept in spawn order and removed once they finish.
type Runner struct {
	instances map[string]*Instance
	order     []string
	logger    *zap.Logger
}

// NewRunner creates an empty runner. A nil logger disables logging.
func NewRunner(logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		instances: make(map[string]*Instance),
		logger:    logger,
	}
}

// Spawn creates a pending instance and adds it to the arena. An empty id
// gets a fresh ULID. Spawning an id that is still live is an error.
func (r *Runner) Spawn(id string, spec Spec) (*Instance, error) {
	if id == "" {
		id = ulid.Make().String()
	}
	if _, exists := r.instances[id]; exists {
		return nil, fmt.Errorf("effect instance %s already live", id)
	}

	inst := New(id, spec)
	r.instances[id] = inst
	r.order = append(r.order, id)
	r.logger.Debug("effect spawned",
		zap.String("instance_id", id),
		zap.String("action_id", spec.ActionID),
	)
	return inst, nil
}

// Get returns a live instance.
func (r *Runner) Get(id string) (*Instance, bool) {
	inst, ok := r.instances[id]
	return inst, ok
}

// Tick updates every live instance once and drops the ones that finished.
// It returns the ids removed this tick.
func (r *Runner) Tick(now time.Time) []string {
	snapshot := append([]string(nil), r.order...)
	for _, id := range snapshot {
		if inst, ok := r.instances[id]; ok {
			inst.Update(now)
		}
	}
	return r.sweep()
}

func (r *Runner) sweep() []string {
	var finished []string
	kept := r.order[:0]
	for _, id := range r.order {
		inst, ok := r.instances[id]
		if !ok {
			continue
		}
		if inst.Done() {
			delete(r.instances, id)
			finished = append(finished, id)
			r.logger.Debug("effect finished",
				zap.String("instance_id", id),
				zap.Stringer("phase", inst.Phase()),
			)
			continue
		}
		kept = append(kept, id)
	}
	r.order = kept
	return finished
}

// Stop cancels and removes one instance. It reports whether the id was live.
func (r *Runner) Stop(id string) bool {
	inst, ok := r.instances[id]
	if !ok {
		return false
	}
	delete(r.instances, id)
	for i, live := range r.order {
		if live == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	inst.Stop()
	return true
}

// StopAll cancels every live instance and empties the arena.
func (r *Runner) StopAll() int {
	live := r.Live()
	for _, id := range live {
		if inst, ok := r.instances[id]; ok {
			delete(r.instances, id)
			inst.Stop()
		}
	}
	r.instances = make(map[string]*Instance)
	r.order = nil
	return len(live)
}

// Live returns the ids of live instances in spawn order.
func (r *Runner) Live() []string {
	out := make([]string, 0, len(r.order))
	for _, id := range r.order {
		if _, ok := r.instances[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

// States returns snapshots of every live instance in spawn order.
func (r *Runner) States() []State {
	out := make([]State, 0, len(r.order))
	for _, id := range r.Live() {
		out = append(out, r.instances[id].State())
	}
	return out
}

// Len returns the number of live instances.
func (r *Runner) Len() int {
	return len(r.instances)
}
