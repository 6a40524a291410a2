package driver

import (
	"gravity-cluster/pkg/physics"
	"gravity-cluster/pkg/simulation"
)

// BodyState is the render-facing view of one body.
type BodyState struct {
	Index    int     `json:"index"`
	Name     string  `json:"name,omitempty"`
	Diameter float64 `json:"diameter"`
	Mass     float64 `json:"mass"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	VX       float64 `json:"vx"`
	VY       float64 `json:"vy"`
	R        uint8   `json:"r"`
	G        uint8   `json:"g"`
	B        uint8   `json:"b"`
}

// Snapshot is the state of a cluster between two steps.
type Snapshot struct {
	Configuration string      `json:"configuration"`
	Step          uint64      `json:"step"`
	Time          float64     `json:"time"`
	TimeStep      float64     `json:"dt"`
	Energy        float64     `json:"energy"`
	Running       bool        `json:"running"`
	Finite        bool        `json:"finite"`
	Bodies        []BodyState `json:"bodies"`
}

func takeSnapshot(name string, c *simulation.Cluster, dt float64, running bool) Snapshot {
	bodies := c.Bodies()
	s := Snapshot{
		Configuration: name,
		Step:          c.Steps(),
		Time:          c.Time(),
		TimeStep:      dt,
		Running:       running,
		Finite:        true,
		Bodies:        make([]BodyState, len(bodies)),
	}
	for i, b := range bodies {
		s.Bodies[i] = bodyState(i, b)
		if !b.Position().IsFinite() || !b.Velocity().IsFinite() {
			s.Finite = false
		}
	}
	if s.Finite {
		s.Energy = c.Energy()
	}
	return s
}

func bodyState(i int, b physics.Body) BodyState {
	p, v, clr := b.Position(), b.Velocity(), b.Color()
	return BodyState{
		Index:    i,
		Name:     b.Name(),
		Diameter: b.Diameter(),
		Mass:     b.Mass(),
		X:        p.X(),
		Y:        p.Y(),
		VX:       v.X(),
		VY:       v.Y(),
		R:        clr.R,
		G:        clr.G,
		B:        clr.B,
	}
}
