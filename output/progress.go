package output

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mrsingh-rishi/vidscribe/queue"
	"github.com/mrsingh-rishi/vidscribe/types"
)

const defaultPollInterval = 100 * time.Millisecond

// JSONWriter is the part of a websocket connection ProgressOutput needs.
type JSONWriter interface {
	WriteJSON(v interface{}) error
}

// ProgressOutput forwards a session's stage events to a websocket client.
type ProgressOutput struct {
	ctx      context.Context
	cancel   context.CancelFunc
	events   *queue.Queue[types.StageEvent]
	ws       JSONWriter
	interval time.Duration
	logger   *log.Logger
	done     chan struct{}
	dropped  int
}

func NewProgressOutput(
	ws JSONWriter,
	events *queue.Queue[types.StageEvent],
	interval time.Duration,
	logger *log.Logger,
) (*ProgressOutput, error) {
	if ws == nil {
		return nil, fmt.Errorf("websocket connection is required")
	}
	if events == nil {
		return nil, fmt.Errorf("event queue is required")
	}
	if interval <= 0 {
		interval = defaultPollInterval
	}
	if logger == nil {
		logger = log.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &ProgressOutput{
		ctx:      ctx,
		cancel:   cancel,
		events:   events,
		ws:       ws,
		interval: interval,
		logger:   logger,
		done:     make(chan struct{}),
	}, nil
}

// Start begins forwarding in the background.
func (o *ProgressOutput) Start() {
	go func() {
		if err := o.Run(); err != nil {
			o.logger.Printf("❌ progress write error: %v", err)
		}
	}()
}

// Run forwards events until Stop is called or a write fails.
func (o *ProgressOutput) Run() error {
	defer close(o.done)
	for {
		select {
		case <-o.ctx.Done():
			return nil
		default:
		}

		o.reportDropped()
		ev, ok := o.events.Dequeue()
		if !ok {
			select {
			case <-o.ctx.Done():
				return nil
			case <-time.After(o.interval):
			}
			continue
		}
		if err := o.ws.WriteJSON(ev); err != nil {
			o.cancel()
			return err
		}
	}
}

// reportDropped logs events the bounded queue discarded before they could
// be forwarded.
func (o *ProgressOutput) reportDropped() {
	if d := o.events.Dropped(); d > o.dropped {
		o.logger.Printf("⚠️ %d progress events dropped before delivery", d-o.dropped)
		o.dropped = d
	}
}

// Stop ends forwarding. Events still queued stay in the session.
func (o *ProgressOutput) Stop() {
	o.cancel()
}

// Done is closed once Run has returned.
func (o *ProgressOutput) Done() <-chan struct{} {
	return o.done
}
