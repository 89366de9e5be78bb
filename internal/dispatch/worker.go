package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/tidwall/gjson"

	"github.com/KaramelBytes/datalens/internal/analysis"
	"github.com/KaramelBytes/datalens/internal/dataset"
)

// ErrClosed is returned by Send after the transport has been closed.
var ErrClosed = errors.New("transport closed")

// Transport carries encoded requests to a worker and encoded responses back.
type Transport interface {
	Send(ctx context.Context, msg []byte) error
	Responses() <-chan []byte
	Close() error
}

type aggregateFunc func([]dataset.Row, analysis.ChartConfig) ([]analysis.AggregatedPoint, error)

// Worker is an in-process Transport backed by a single goroutine. Requests are
// handled one at a time, each to completion, and produce exactly one response.
type Worker struct {
	in        chan []byte
	out       chan []byte
	done      chan struct{}
	log       *slog.Logger
	aggregate aggregateFunc

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewWorker starts the worker goroutine. queue bounds buffered requests and
// responses; values below 1 mean unbuffered.
func NewWorker(queue int, logger *slog.Logger) *Worker {
	return newWorker(queue, logger, analysis.Aggregate)
}

func newWorker(queue int, logger *slog.Logger, fn aggregateFunc) *Worker {
	if queue < 0 {
		queue = 0
	}
	if logger == nil {
		logger = slog.Default()
	}
	w := &Worker{
		in:        make(chan []byte, queue),
		out:       make(chan []byte, queue),
		done:      make(chan struct{}),
		log:       logger.With("component", "worker"),
		aggregate: fn,
	}
	w.wg.Add(1)
	go w.run()
	return w
}

func (w *Worker) Send(ctx context.Context, msg []byte) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case w.in <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-w.done:
		return ErrClosed
	}
}

func (w *Worker) Responses() <-chan []byte { return w.out }

// Close stops the worker and waits for its goroutine. Queued requests are
// discarded. Safe to call more than once.
func (w *Worker) Close() error {
	w.closeOnce.Do(func() { close(w.done) })
	w.wg.Wait()
	return nil
}

func (w *Worker) run() {
	defer w.wg.Done()
	defer close(w.out)
	for {
		select {
		case <-w.done:
			return
		case msg := <-w.in:
			reply := w.handle(msg)
			if reply == nil {
				continue
			}
			select {
			case w.out <- reply:
			case <-w.done:
				return
			}
		}
	}
}

// handle turns one request payload into one response payload.
func (w *Worker) handle(msg []byte) []byte {
	resp := Response{Status: StatusSuccess}
	req, err := decodeRequest(msg)
	if err != nil {
		// keep the caller's sequence number when the envelope is still readable
		resp.Seq = gjson.GetBytes(msg, "seq").Uint()
		resp.Status = StatusError
		resp.Error = err.Error()
	} else {
		resp.Seq = req.Seq
		var points []analysis.AggregatedPoint
		aerr := analysis.Guard("aggregate", func() (err error) {
			points, err = w.aggregate(req.Data, req.Config)
			return err
		})
		if aerr != nil {
			resp.Status = StatusError
			resp.Error = aerr.Error()
		} else {
			resp.Data = points
		}
	}
	w.log.Debug("request handled", "seq", resp.Seq, "status", resp.Status, "points", len(resp.Data))
	b, err := encodeResponse(resp)
	if err != nil {
		// non-finite aggregates cannot be encoded; report instead of going silent
		w.log.Warn("response not encodable", "seq", resp.Seq, "error", err)
		b, err = encodeResponse(Response{Seq: resp.Seq, Status: StatusError, Error: err.Error()})
		if err != nil {
			w.log.Error("dropping response", "seq", resp.Seq, "error", err)
			return nil
		}
	}
	return b
}
