// Copyright 2025 Alexandre Mahdhaoui
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package directory

import "strconv"

// Template is an instantiable VM blueprint registered in the directory.
type Template struct {
	// ID is the numeric id of the template.
	ID int
	// Name is the template name, unique within the directory.
	Name string
}

// State is the coarse lifecycle state of a VM, using the directory's codes.
type State int

const (
	StateInit State = iota
	StatePending
	StateHold
	// StateActive is the running state; a node is healthy only here.
	StateActive
	StateStopped
	StateSuspended
	StateDone
	StateFailed
)

var stateNames = map[State]string{
	StateInit:      "INIT",
	StatePending:   "PENDING",
	StateHold:      "HOLD",
	StateActive:    "ACTIVE",
	StateStopped:   "STOPPED",
	StateSuspended: "SUSPENDED",
	StateDone:      "DONE",
	StateFailed:    "FAILED",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}

	return strconv.Itoa(int(s))
}

// LCMState is the fine-grained lifecycle sub-state of a VM. Only the early
// sub-states are named; later ones print as their numeric code.
type LCMState int

const (
	LCMInit LCMState = iota
	LCMProlog
	LCMBoot
	LCMRunning
)

var lcmStateNames = map[LCMState]string{
	LCMInit:    "LCM_INIT",
	LCMProlog:  "PROLOG",
	LCMBoot:    "BOOT",
	LCMRunning: "RUNNING",
}

func (s LCMState) String() string {
	if name, ok := lcmStateNames[s]; ok {
		return name
	}

	return strconv.Itoa(int(s))
}

// NIC is a network interface from a VM's hardware template.
type NIC struct {
	// MAC is the hardware address the directory assigned to the interface.
	MAC string
	// Network is the name of the virtual network the NIC attaches to.
	Network string
}

// VMTemplate is the hardware template section embedded in a VM record.
type VMTemplate struct {
	NICs []NIC
}

// VM is a directory VM record, keyed by its numeric id.
type VM struct {
	ID       int
	Name     string
	State    State
	LCMState LCMState
	Template VMTemplate
}

// Booting reports whether the VM is still in one of the early lifecycle
// sub-states (init, prolog, boot). Health polling continues while this holds.
func (v VM) Booting() bool {
	switch v.LCMState {
	case LCMInit, LCMProlog, LCMBoot:
		return true
	default:
		return false
	}
}

// PrimaryMAC returns the MAC address of the VM's first NIC, reporting false
// when the VM has no NIC at all.
func (v VM) PrimaryMAC() (string, bool) {
	if len(v.Template.NICs) == 0 {
		return "", false
	}

	return v.Template.NICs[0].MAC, true
}
