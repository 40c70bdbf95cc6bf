package publisher

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"metro-simulator/internal/logging"
	"metro-simulator/internal/metro"
)

type NATSPublisher struct {
	nc          *nats.Conn
	conn        conn
	prefix      string
	runID       string
	logSubjects bool
	metrics     PublisherMetrics
	log         logging.Logger
}

type PublisherMetrics interface {
	NATSPublishedInc()
	NATSPublishErrInc()
	PublishObserve(d time.Duration)
	NATSSetConnected(connected bool)
}

// conn is the part of *nats.Conn the publisher uses.
type conn interface {
	Publish(subject string, data []byte) error
}

type Options struct {
	URL           string
	SubjectPrefix string
	RunID         string
	LogSubjects   bool
	Metrics       PublisherMetrics
	Logger        logging.Logger
}

func NewNATSPublisher(opts Options) (*NATSPublisher, error) {
	m := opts.Metrics
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	ctx := context.Background()
	nc, err := nats.Connect(opts.URL,
		nats.Name("metro-simulator"),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Warn(ctx, "nats disconnected", logging.Err(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(true)
			}
			log.Info(ctx, "nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			if m != nil {
				m.NATSSetConnected(false)
			}
			log.Info(ctx, "nats closed")
		}),
	)
	if err != nil {
		return nil, err
	}
	if m != nil {
		m.NATSSetConnected(true)
	}
	p := newPublisher(nc, opts)
	p.nc = nc
	return p, nil
}

func newPublisher(c conn, opts Options) *NATSPublisher {
	log := opts.Logger
	if log == nil {
		log = logging.Noop()
	}
	return &NATSPublisher{
		conn:        c,
		prefix:      subjectPrefix(opts.SubjectPrefix),
		runID:       opts.RunID,
		logSubjects: opts.LogSubjects,
		metrics:     opts.Metrics,
		log:         log,
	}
}

func (p *NATSPublisher) Close() {
	if p.nc != nil {
		_ = p.nc.Drain()
		p.nc.Close()
	}
}

type TrainMessage struct {
	X            float64 `json:"x"`
	WheelAngle   float64 `json:"wheelAngle"`
	DoorAperture float64 `json:"doorAperture"`
	SignalGreen  bool    `json:"signalGreen"`
}

type PassengerMessage struct {
	Active    bool    `json:"active"`
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	WalkPhase float64 `json:"walkPhase"`
}

// StateMessage is the periodic snapshot published on <prefix>.state.
type StateMessage struct {
	RunID      string             `json:"runId"`
	Timestamp  time.Time          `json:"timestamp"`
	Tick       uint64             `json:"tick"`
	SimTime    float64            `json:"simTime"`
	State      string             `json:"state"`
	Dwell      bool               `json:"dwell"`
	Cycle      int                `json:"cycle"`
	Boarded    int                `json:"boarded"`
	Night      bool               `json:"night"`
	Train      TrainMessage       `json:"train"`
	Passengers []PassengerMessage `json:"passengers"`
}

// TransitionMessage is published on <prefix>.transition for every state change.
type TransitionMessage struct {
	RunID     string    `json:"runId"`
	Timestamp time.Time `json:"timestamp"`
	Tick      uint64    `json:"tick"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Cycle     int       `json:"cycle"`
}

func NewStateMessage(runID string, now time.Time, s metro.Snapshot) StateMessage {
	msg := StateMessage{
		RunID:     runID,
		Timestamp: now,
		Tick:      s.Tick,
		SimTime:   s.SimTime,
		State:     s.State.String(),
		Dwell:     metro.Dwell(s.State),
		Cycle:     s.Cycle,
		Boarded:   s.Boarded,
		Night:     s.Night,
		Train: TrainMessage{
			X:            s.Train.PositionX,
			WheelAngle:   s.Train.WheelAngle,
			DoorAperture: s.Train.DoorAperture,
			SignalGreen:  s.Train.SignalGreen,
		},
		Passengers: make([]PassengerMessage, 0, len(s.Passengers)),
	}
	for _, ps := range s.Passengers {
		msg.Passengers = append(msg.Passengers, PassengerMessage{Active: ps.Active, X: ps.X, Y: ps.Y, WalkPhase: ps.WalkPhase})
	}
	return msg
}

func (p *NATSPublisher) PublishState(s metro.Snapshot) error {
	return p.publish("state", NewStateMessage(p.runID, time.Now(), s))
}

func (p *NATSPublisher) PublishTransition(e metro.Event, cycle int) error {
	return p.publish("transition", TransitionMessage{
		RunID:     p.runID,
		Timestamp: time.Now(),
		Tick:      e.Tick,
		From:      e.From.String(),
		To:        e.To.String(),
		Cycle:     cycle,
	})
}

func (p *NATSPublisher) publish(kind string, msg any) error {
	subject := p.prefix + "." + kind
	b, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	if p.logSubjects {
		p.log.Debug(context.Background(), "nats publish", logging.String("subject", subject))
	}
	start := time.Now()
	err = p.conn.Publish(subject, b)
	if p.metrics != nil {
		p.metrics.PublishObserve(time.Since(start))
		if err != nil {
			p.metrics.NATSPublishErrInc()
		} else {
			p.metrics.NATSPublishedInc()
		}
	}
	return err
}

// subjectPrefix sanitises each dot-separated token of a prefix.
func subjectPrefix(prefix string) string {
	parts := strings.Split(strings.Trim(prefix, "."), ".")
	for i, part := range parts {
		parts[i] = subjectToken(part)
	}
	return strings.Join(parts, ".")
}

func subjectToken(s string) string {
	s = strings.TrimSpace(s)
	// NATS token cannot contain spaces, '>', '*', or trailing '.'
	repl := strings.NewReplacer(" ", "_", ".", "_", ">", "_", "*", "_", "/", "_", "\t", "_")
	s = repl.Replace(s)
	if s == "" {
		s = "_"
	}
	return s
}
