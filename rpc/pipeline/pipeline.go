package pipeline

import (
	"bufio"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ValentinKolb/dTT/rpc/common"
	"github.com/ValentinKolb/dTT/rpc/protocol"
	"github.com/ValentinKolb/dTT/rpc/transport"
	"github.com/lni/dragonboat/v4/logger"
	"github.com/pkg/errors"
)

var Logger = logger.GetLogger("pipeline")

var (
	// ErrClosed is returned for tasks submitted to or still queued in a closed pipeline
	ErrClosed = common.NewError(common.CodeInvalidOperation, "pipeline closed")
	// ErrNoConnection is returned for tasks dispatched after the connection failed
	ErrNoConnection = common.NewError(common.CodeInvalidOperation, "no active connection")
)

// readBufferSize is the size of the buffered reader on the response stream
const readBufferSize = 64 * 1024

// --------------------------------------------------------------------------
// Pipeline
// --------------------------------------------------------------------------

// Pipeline sends commands over a single connection. Tasks are written in
// submission order, one at a time: the next frame is written only after the
// response of the previous one has been read completely (putnr has no response
// and releases the connection right after the write). Responses are therefore
// matched to tasks purely by order.
//
// The first transport or decoding failure leaves the byte stream in an unknown
// state. The pipeline then closes the transport and fails every later task
// with ErrNoConnection.
type Pipeline struct {
	transport transport.IStreamClientTransport
	reader    *bufio.Reader
	maxSize   int

	queue   *queue[task]
	metrics *metricCache

	broken    atomic.Bool
	closed    atomic.Bool
	stopped   chan struct{}
	closeOnce sync.Once
}

// New creates a pipeline on an already connected transport and starts its
// dispatch goroutine
func New(t transport.IStreamClientTransport, config common.ClientConfig) *Pipeline {
	p := &Pipeline{
		transport: t,
		reader:    bufio.NewReaderSize(readerFunc(t.Read), readBufferSize),
		maxSize:   config.MaxResponseSizeOrDefault(),
		queue:     newQueue[task](),
		metrics:   newMetricCache(Metrics),
		stopped:   make(chan struct{}),
	}
	go p.run()
	return p
}

// Submit queues a frame of cmd and waits for its response.
//
// The returned error is either a failure of the pipeline or connection, or the
// error carried by the response status; in the latter case the response is
// returned as well. If ctx ends first, a queued task is removed from the
// sequence and an in-flight task's response is discarded once it arrives.
func (p *Pipeline) Submit(ctx context.Context, cmd protocol.Command, frame protocol.Frame) (*protocol.Response, error) {
	if !cmd.Valid() {
		return nil, common.NewError(common.CodeInvalidOperation, "unknown command")
	}
	if len(frame) == 0 {
		return nil, common.NewError(common.CodeInvalidOperation, cmd.String()+": empty frame")
	}
	if p.closed.Load() {
		return nil, ErrClosed
	}
	if err := ctx.Err(); err != nil {
		return nil, errors.Wrapf(err, "%s canceled", cmd)
	}

	t := newTask(cmd, frame)
	if !p.queue.Push(t) {
		return nil, ErrClosed
	}

	select {
	case r := <-t.done:
		return r.resp, r.err

	case <-ctx.Done():
		if t.cancel() {
			return nil, errors.Wrapf(ctx.Err(), "%s canceled", cmd)
		}
		r := <-t.done
		return r.resp, r.err

	case <-p.stopped:
		// the dispatcher is gone; a task pushed while closing may never be taken
		if t.cancel() {
			return nil, ErrClosed
		}
		r := <-t.done
		return r.resp, r.err
	}
}

// Len returns the number of tasks waiting to be sent
func (p *Pipeline) Len() int {
	return p.queue.Len()
}

// Close stops accepting tasks, fails all queued tasks with ErrClosed, closes
// the transport and waits for the dispatcher to finish. A task on the wire
// fails with a ReceiveError.
func (p *Pipeline) Close() error {
	var err error
	p.closeOnce.Do(func() {
		p.closed.Store(true)
		p.queue.Close()
		err = p.transport.Close()
		<-p.stopped
	})
	return err
}

// --------------------------------------------------------------------------
// Dispatcher
// --------------------------------------------------------------------------

// run takes tasks from the queue in order and executes them one by one
func (p *Pipeline) run() {
	defer close(p.stopped)

	for t := range p.queue.Recv() {
		if p.closed.Load() {
			t.finish(nil, ErrClosed)
			continue
		}
		if !t.start() {
			Logger.Debugf("Skipping canceled %s", t.cmd)
			p.metrics.observeCanceled()
			continue
		}

		start := time.Now()
		resp, err := p.execute(t)

		var statusErr error
		if err == nil {
			statusErr = resp.Err()
		}
		p.metrics.observe(t.cmd, start, firstErr(err, statusErr))

		if err != nil {
			resp = nil
		} else {
			err = statusErr
		}

		if !t.finish(resp, err) {
			Logger.Warningf("Discarded response of canceled %s", t.cmd)
			p.metrics.observeCanceled()
			continue
		}
		Logger.Debugf("Finished %s after %v (queued %v)", t.cmd, time.Since(start), start.Sub(t.enqueued))
	}
}

// execute writes the frame of t and reads its response
func (p *Pipeline) execute(t *task) (*protocol.Response, error) {
	if p.broken.Load() {
		return nil, ErrNoConnection
	}

	if err := p.transport.Write(t.frame); err != nil {
		p.fail(t.cmd, err)
		return nil, ensureCode(err, common.CodeSendError, "sending "+t.cmd.String())
	}

	// putnr: the connection is free as soon as the frame is written
	if !t.cmd.ExpectsResponse() {
		return &protocol.Response{Command: t.cmd}, nil
	}

	resp, err := protocol.ReadResponse(p.reader, t.cmd, p.maxSize)
	if err != nil {
		p.fail(t.cmd, err)
		return nil, ensureCode(err, common.CodeReceiveError, "reading "+t.cmd.String()+" response")
	}
	return resp, nil
}

// fail marks the connection as unusable and closes the transport
func (p *Pipeline) fail(cmd protocol.Command, err error) {
	if p.broken.Swap(true) {
		return
	}
	if !p.closed.Load() {
		Logger.Errorf("Connection failed during %s, closing transport: %v", cmd, err)
	}
	if cerr := p.transport.Close(); cerr != nil {
		Logger.Debugf("Closing transport: %v", cerr)
	}
}

// --------------------------------------------------------------------------
// Helper functions
// --------------------------------------------------------------------------

// ensureCode keeps errors that already carry a code and wraps all others
// with the given one
func ensureCode(err error, code common.Code, msg string) error {
	var ce *common.Error
	if errors.As(err, &ce) {
		return err
	}
	return common.WrapError(code, err, msg)
}

func firstErr(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

// readerFunc adapts the Read method of a transport to io.Reader
type readerFunc func(p []byte) (int, error)

func (f readerFunc) Read(p []byte) (int, error) {
	return f(p)
}
