// SPDX-License-Identifier: EPL-2.0

package codec

import "fmt"

// State is the lifecycle position of an Engine.
type State int

const (
	Unconfigured State = iota
	Configured
	Running
	// Draining: end of input submitted, output not finished.
	Draining
	Stopped
	Released
)

func (s State) String() string {
	switch s {
	case Unconfigured:
		return "unconfigured"
	case Configured:
		return "configured"
	case Running:
		return "running"
	case Draining:
		return "draining"
	case Stopped:
		return "stopped"
	case Released:
		return "released"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

type slotState uint8

const (
	slotFree slotState = iota
	slotHeldInput
	slotQueued
	slotFilled
	slotHeldOutput
)
