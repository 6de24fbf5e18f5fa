package midi

import (
	"gitlab.com/gomidi/midi/v2/drivers"
	"go.uber.org/zap"
)

// unknownPortName is shown for ports the driver cannot name.
const unknownPortName = "<error>"

// InPort is an input port and its display name.
type InPort struct {
	port drivers.In
	Name string
}

// Number is the driver's index for the port.
func (p InPort) Number() int {
	return p.port.Number()
}

// OutPort is an output port and its display name.
type OutPort struct {
	port drivers.Out
	Name string
}

// Number is the driver's index for the port.
func (p OutPort) Number() int {
	return p.port.Number()
}

// ListInputPorts returns drv's input ports in the order the driver reports
// them. A failed enumeration is logged and yields no ports.
func ListInputPorts(drv drivers.Driver, log *zap.Logger) []InPort {
	ins, err := drv.Ins()
	if err != nil {
		log.Warn("listing MIDI inputs", zap.Error(err))
		return nil
	}
	ports := make([]InPort, 0, len(ins))
	for _, in := range ins {
		ports = append(ports, InPort{port: in, Name: portName(in)})
	}
	return ports
}

// ListOutputPorts returns drv's output ports in the order the driver
// reports them. A failed enumeration is logged and yields no ports.
func ListOutputPorts(drv drivers.Driver, log *zap.Logger) []OutPort {
	outs, err := drv.Outs()
	if err != nil {
		log.Warn("listing MIDI outputs", zap.Error(err))
		return nil
	}
	ports := make([]OutPort, 0, len(outs))
	for _, out := range outs {
		ports = append(ports, OutPort{port: out, Name: portName(out)})
	}
	return ports
}

func portName(p drivers.Port) string {
	if name := p.String(); name != "" {
		return name
	}
	return unknownPortName
}

// FindInput returns the first port called name.
func FindInput(ports []InPort, name string) (InPort, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return InPort{}, false
}

// FindOutput returns the first port called name.
func FindOutput(ports []OutPort, name string) (OutPort, bool) {
	for _, p := range ports {
		if p.Name == name {
			return p, true
		}
	}
	return OutPort{}, false
}
