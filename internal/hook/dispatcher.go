package hook

import (
	"context"
	"sync"

	jsoniter "github.com/json-iterator/go"

	"github.com/ayusman/cuedspeech/internal/logging"
	"github.com/ayusman/cuedspeech/internal/store"
)

// BindingLister returns the enabled bindings for an event.
type BindingLister interface {
	ListByEvent(event string) ([]*store.HookBinding, error)
}

// Result is the outcome of one hook run.
type Result struct {
	Hook     string
	Response *Response
	Err      error
}

// Dispatcher fans an event out to every subscribed hook.
type Dispatcher struct {
	manager  *Manager
	executor *Executor
	bindings BindingLister
}

// NewDispatcher creates a dispatcher. bindings may be nil, in which case only
// manifest subscriptions are used.
func NewDispatcher(manager *Manager, executor *Executor, bindings BindingLister) *Dispatcher {
	return &Dispatcher{
		manager:  manager,
		executor: executor,
		bindings: bindings,
	}
}

type target struct {
	hook   *Hook
	config jsoniter.RawMessage
}

// targets merges manifest subscriptions with stored bindings. A binding's
// config wins over the manifest default for the same hook.
func (d *Dispatcher) targets(event string) []target {
	byName := make(map[string]int)
	var out []target

	for _, h := range d.manager.Subscribed(event) {
		byName[h.Manifest.Name] = len(out)
		out = append(out, target{hook: h})
	}

	if d.bindings == nil {
		return out
	}

	bindings, err := d.bindings.ListByEvent(event)
	if err != nil {
		logging.Error(logging.Fields{"event": event, "error": err.Error()}, "failed to load hook bindings")
		return out
	}

	for _, b := range bindings {
		h, err := d.manager.Get(b.HookName)
		if err != nil {
			logging.Warn(logging.Fields{"event": event, "hook": b.HookName}, "bound hook not installed")
			continue
		}
		cfg := jsoniter.RawMessage(b.Config)
		if i, ok := byName[h.Manifest.Name]; ok {
			out[i].config = cfg
			continue
		}
		byName[h.Manifest.Name] = len(out)
		out = append(out, target{hook: h, config: cfg})
	}

	return out
}

// Fire runs every hook subscribed to req.Event concurrently and waits for
// them. Failures are logged and returned; they never affect the caller's
// session.
func (d *Dispatcher) Fire(ctx context.Context, req Request) []Result {
	targets := d.targets(req.Event)
	results := make([]Result, len(targets))

	var wg sync.WaitGroup
	for i, t := range targets {
		wg.Add(1)
		go func(i int, t target) {
			defer wg.Done()

			r := req
			r.Config = t.config
			resp, err := d.executor.Execute(ctx, t.hook, &r)
			results[i] = Result{Hook: t.hook.Manifest.Name, Response: resp, Err: err}

			fields := logging.Fields{"hook": t.hook.Manifest.Name, "event": req.Event, "syllable": req.Syllable}
			switch {
			case err != nil:
				fields["error"] = err.Error()
				logging.Error(fields, "hook execution failed")
			case !resp.Success:
				fields["error"] = resp.Error
				logging.Warn(fields, "hook reported failure")
			default:
				logging.Debug(fields, "hook executed")
			}
		}(i, t)
	}
	wg.Wait()

	return results
}
