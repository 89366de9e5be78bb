// Package dispatch runs aggregation requests on an isolated worker and applies
// the responses in request order: a response older than the last applied one
// is dropped, so the latest request always wins.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/KaramelBytes/datalens/internal/dataset"
)

var (
	// ErrDisposed is returned once the dispatcher has been torn down.
	ErrDisposed = errors.New("dispatcher disposed")
	// ErrWorker wraps error responses reported by the worker.
	ErrWorker = errors.New("worker error")
)

// Outcome is the state after applying a response.
type Outcome struct {
	Seq uint64
	// Points is the most recent successful series. An error response leaves it
	// unchanged.
	Points []analysis.AggregatedPoint
	Err    error
}

// Options configures a Dispatcher. Zero values are usable.
type Options struct {
	// Transport overrides the in-process worker.
	Transport Transport
	// QueueSize is the buffer of the default worker.
	QueueSize int
	Logger    *slog.Logger
	// OnResult receives each applied outcome, in order, on a delivery goroutine
	// separate from the one reading responses. It may call Dispatch or Dispose.
	OnResult func(Outcome)
}

// Dispatcher is the handle a consumer creates, uses and disposes.
type Dispatcher struct {
	t        Transport
	log      *slog.Logger
	onResult func(Outcome)

	mu      sync.Mutex
	next    uint64
	applied uint64
	points  []analysis.AggregatedPoint
	lastErr error
	signal  chan struct{}

	qmu     sync.Mutex
	pending []Outcome
	notify  chan struct{}

	done        chan struct{}
	disposeOnce sync.Once
	wg          sync.WaitGroup
}

// New starts a dispatcher and, unless opts.Transport is set, its worker.
func New(opts Options) *Dispatcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	t := opts.Transport
	if t == nil {
		t = NewWorker(opts.QueueSize, logger)
	}
	d := &Dispatcher{
		t:        t,
		log:      logger.With("component", "dispatcher"),
		onResult: opts.OnResult,
		signal:   make(chan struct{}),
		notify:   make(chan struct{}, 1),
		done:     make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	if d.onResult != nil {
		go d.deliver()
	}
	return d
}

// Dispatch serializes rows and cfg and hands them to the worker. It returns the
// sequence number assigned to the request. Later mutation of rows by the caller
// does not affect the request.
func (d *Dispatcher) Dispatch(ctx context.Context, rows []dataset.Row, cfg analysis.ChartConfig) (uint64, error) {
	select {
	case <-d.done:
		return 0, ErrDisposed
	default:
	}
	d.mu.Lock()
	d.next++
	seq := d.next
	d.mu.Unlock()

	msg, err := encodeRequest(Request{Seq: seq, Data: rows, Config: cfg.Clone()})
	if err == nil {
		err = d.t.Send(ctx, msg)
	}
	if err != nil {
		if errors.Is(err, ErrClosed) {
			err = ErrDisposed
		}
		// settle the sequence so InFlight does not stick
		d.apply(Response{Seq: seq, Status: StatusError, Error: err.Error()})
		return seq, fmt.Errorf("dispatch %d: %w", seq, err)
	}
	d.log.Debug("request sent", "seq", seq, "rows", len(rows))
	return seq, nil
}

// InFlight reports whether the latest dispatched request is still unanswered.
func (d *Dispatcher) InFlight() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.next > d.applied
}

// Result returns the latest applied state.
func (d *Dispatcher) Result() Outcome {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.outcomeLocked()
}

// Await blocks until seq, or a later request, has been applied.
func (d *Dispatcher) Await(ctx context.Context, seq uint64) (Outcome, error) {
	for {
		d.mu.Lock()
		if d.applied >= seq {
			out := d.outcomeLocked()
			d.mu.Unlock()
			return out, nil
		}
		ch := d.signal
		d.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return Outcome{}, ctx.Err()
		case <-d.done:
			return Outcome{}, ErrDisposed
		}
	}
}

// Dispose stops the dispatcher and its transport and waits for both. Outcomes
// not yet handed to OnResult are discarded; a callback already running is not
// waited for, so Dispose may be called from inside OnResult. It is safe to call
// more than once.
func (d *Dispatcher) Dispose() {
	d.disposeOnce.Do(func() {
		close(d.done)
		if err := d.t.Close(); err != nil {
			d.log.Warn("closing transport", "error", err)
		}
		d.wg.Wait()
	})
}

func (d *Dispatcher) loop() {
	defer d.wg.Done()
	responses := d.t.Responses()
	for {
		select {
		case <-d.done:
			return
		case msg, ok := <-responses:
			if !ok {
				return
			}
			resp, err := decodeResponse(msg)
			if err != nil {
				d.log.Warn("discarding malformed response", "error", err)
				continue
			}
			d.apply(resp)
		}
	}
}

// apply records resp unless it is stale and queues the outcome for OnResult.
// It never runs the callback itself.
func (d *Dispatcher) apply(resp Response) {
	d.mu.Lock()
	if resp.Seq <= d.applied {
		d.mu.Unlock()
		d.log.Debug("dropping stale response", "seq", resp.Seq)
		return
	}
	d.applied = resp.Seq
	if resp.Status == StatusError {
		d.lastErr = fmt.Errorf("%w: %s", ErrWorker, resp.Error)
	} else {
		d.points = resp.Data
		d.lastErr = nil
	}
	out := d.outcomeLocked()
	close(d.signal)
	d.signal = make(chan struct{})
	d.mu.Unlock()

	if d.onResult != nil {
		d.enqueue(out)
	}
}

func (d *Dispatcher) enqueue(out Outcome) {
	d.qmu.Lock()
	d.pending = append(d.pending, out)
	d.qmu.Unlock()
	select {
	case d.notify <- struct{}{}:
	default:
	}
}

// deliver hands queued outcomes to OnResult until the dispatcher is disposed.
func (d *Dispatcher) deliver() {
	for {
		select {
		case <-d.done:
			return
		case <-d.notify:
		}
		d.qmu.Lock()
		batch := d.pending
		d.pending = nil
		d.qmu.Unlock()
		for _, out := range batch {
			select {
			case <-d.done:
				return
			default:
			}
			d.onResult(out)
		}
	}
}

func (d *Dispatcher) outcomeLocked() Outcome {
	return Outcome{Seq: d.applied, Points: d.points, Err: d.lastErr}
}
