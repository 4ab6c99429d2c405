// Package swap turns newly computed geometry into the mesh the scene displays.
package swap

import (
	"log/slog"
	"sync"

	"github.com/Carmen-Shannon/oxy-cone/engine/geometry"
	"github.com/Carmen-Shannon/oxy-cone/engine/mesh"
	"github.com/Carmen-Shannon/oxy-cone/engine/renderer/material"
)

// DefaultColor is the mesh color used when none is configured.
const DefaultColor uint32 = 0x00ff00

// Sequencing decides which of several overlapping results ends up displayed.
type Sequencing int

const (
	// LastResolvedWins installs every result as it arrives, so the slowest response wins.
	LastResolvedWins Sequencing = iota

	// LastSubmittedWins discards results whose request was submitted before the one currently shown.
	LastSubmittedWins
)

func (s Sequencing) String() string {
	switch s {
	case LastSubmittedWins:
		return "last-submitted-wins"
	default:
		return "last-resolved-wins"
	}
}

// Installer places a mesh in the scene, replacing whatever was there. A nil mesh empties the scene.
type Installer interface {
	Install(m mesh.Mesh) error
}

type controller struct {
	mu sync.Mutex

	installer  Installer
	color      uint32
	sequencing Sequencing
	logger     *slog.Logger

	submitted uint64
	accepted  uint64
	current   geometry.Geometry
	mesh      mesh.Mesh
}

// Controller bridges "triangulation result arrived" and "scene shows new geometry".
// It builds the mesh but never removes one itself; the Installer performs the replacement.
type Controller interface {
	// SetGeometry makes g the current geometry. A non-nil g is wrapped in a mesh with the
	// controller's unlit material and installed; nil leaves the scene empty.
	//
	// Parameters:
	//   - g: the new geometry, or nil
	//
	// Returns:
	//   - error: the installer's error; the current geometry is unchanged on failure
	SetGeometry(g geometry.Geometry) error

	// NextSequence reserves the sequence number for a new request.
	//
	// Returns:
	//   - uint64: the sequence number, starting at 1
	NextSequence() uint64

	// Accept offers the result of request seq. With LastSubmittedWins a result older than the
	// one currently accepted is dropped; with LastResolvedWins every result is applied.
	//
	// Parameters:
	//   - seq: the request's sequence number
	//   - g: the request's geometry
	//
	// Returns:
	//   - bool: true if the result was applied
	//   - error: the installer's error
	Accept(seq uint64, g geometry.Geometry) (bool, error)

	// Current returns the current geometry, or nil.
	Current() geometry.Geometry

	// Mesh returns the mesh built for the current geometry, or nil.
	Mesh() mesh.Mesh

	// Sequencing returns the controller's ordering mode.
	Sequencing() Sequencing

	// Reset forgets the current geometry, its mesh and the accepted sequence without calling
	// the installer. Used when the scene the installer feeds has been torn down. Sequence
	// numbers keep increasing across resets.
	Reset()
}

var _ Controller = &controller{}

// NewController creates a Controller that installs meshes through installer.
//
// Parameters:
//   - installer: usually the scene.Manager
//   - options: functional options to configure the controller
//
// Returns:
//   - Controller: the new controller
func NewController(installer Installer, options ...ControllerBuilderOption) Controller {
	if installer == nil {
		panic("swap: NewController requires an Installer")
	}
	c := &controller{
		installer: installer,
		color:     DefaultColor,
	}
	for _, opt := range options {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

func (c *controller) SetGeometry(g geometry.Geometry) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.setLocked(g)
}

func (c *controller) setLocked(g geometry.Geometry) error {
	var m mesh.Mesh
	if g != nil {
		m = mesh.NewMesh(g, material.NewBasicMaterial(c.color))
	}
	if err := c.installer.Install(m); err != nil {
		return err
	}
	c.current, c.mesh = g, m
	if g != nil {
		c.logger.Debug("geometry installed", "label", g.Label(), "vertices", g.VertexCount())
	}
	return nil
}

func (c *controller) NextSequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.submitted++
	return c.submitted
}

func (c *controller) Accept(seq uint64, g geometry.Geometry) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.sequencing == LastSubmittedWins && seq < c.accepted {
		c.logger.Debug("dropping stale result", "seq", seq, "accepted", c.accepted)
		return false, nil
	}
	if err := c.setLocked(g); err != nil {
		return false, err
	}
	c.accepted = max(c.accepted, seq)
	return true, nil
}

func (c *controller) Current() geometry.Geometry {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

func (c *controller) Mesh() mesh.Mesh {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mesh
}

func (c *controller) Sequencing() Sequencing {
	return c.sequencing
}

func (c *controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.current, c.mesh = nil, nil
	c.accepted = 0
}
