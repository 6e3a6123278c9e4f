package midi

import (
	"strconv"
	"strings"

	"github.com/jsphweid/retune31/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	"gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

var ErrPortNotFound = errors.New("port not found")

// Ports wraps the rtmidi driver. Call Close when done.
type Ports struct {
	drv *rtmididrv.Driver
}

func OpenPorts() (*Ports, error) {
	drv, err := rtmididrv.New()
	if err != nil {
		return nil, errors.Wrap(err, "rtmididrv")
	}
	return &Ports{drv: drv}, nil
}

func (p *Ports) Close() {
	p.drv.Close()
}

func (p *Ports) ListIns() ([]string, error) {
	ins, err := p.drv.Ins()
	if err != nil {
		return nil, errors.Wrap(err, "list inputs")
	}
	names := make([]string, len(ins))
	for i, in := range ins {
		names[i] = in.String()
	}
	return names, nil
}

func (p *Ports) ListOuts() ([]string, error) {
	outs, err := p.drv.Outs()
	if err != nil {
		return nil, errors.Wrap(err, "list outputs")
	}
	names := make([]string, len(outs))
	for i, out := range outs {
		names[i] = out.String()
	}
	return names, nil
}

// MatchPort picks a port by index or by case-insensitive name fragment.
func MatchPort(names []string, query string) (int, error) {
	if i, err := strconv.Atoi(query); err == nil {
		if i >= 0 && i < len(names) {
			return i, nil
		}
		return 0, errors.Wrapf(ErrPortNotFound, "no port number %d", i)
	}
	q := strings.ToLower(query)
	for i, name := range names {
		if strings.Contains(strings.ToLower(name), q) {
			return i, nil
		}
	}
	return 0, errors.Wrapf(ErrPortNotFound, "no port matching %q", query)
}

func (p *Ports) FindIn(query string) (drivers.In, error) {
	names, err := p.ListIns()
	if err != nil {
		return nil, err
	}
	i, err := MatchPort(names, query)
	if err != nil {
		return nil, err
	}
	ins, err := p.drv.Ins()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ins[i], nil
}

func (p *Ports) FindOut(query string) (drivers.Out, error) {
	names, err := p.ListOuts()
	if err != nil {
		return nil, err
	}
	i, err := MatchPort(names, query)
	if err != nil {
		return nil, err
	}
	outs, err := p.drv.Outs()
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return outs[i], nil
}

// Listen decodes everything arriving on in and offers it to queue. The
// driver callback never blocks: when the queue is full the event is dropped.
func Listen(in drivers.In, queue chan<- model.Event) (stop func(), err error) {
	stop, err = midi.ListenTo(in, func(msg midi.Message, timestampms int32) {
		ev, ok := ToEvent(msg)
		if !ok {
			log.WithField("msg", msg.String()).Debug("ignoring message")
			return
		}
		select {
		case queue <- ev:
		default:
			log.WithField("event", ev.String()).Warn("event queue full, dropping event")
		}
	})
	if err != nil {
		return nil, errors.Wrapf(err, "listen on %v", in)
	}
	return stop, nil
}

// Sender writes realized messages to out.
func Sender(out drivers.Out) (func(midi.Message) error, error) {
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, errors.Wrapf(err, "open %v", out)
	}
	return send, nil
}
