package onecli

import (
	"encoding/xml"

	"github.com/alexandremahdhaoui/testenv-vm/pkg/directory"
)

// Wire types for the tools' --xml output. Numeric fields arrive as text and
// decode through encoding/xml's int handling.

type templatePool struct {
	XMLName   xml.Name         `xml:"VMTEMPLATE_POOL"`
	Templates []templateRecord `xml:"VMTEMPLATE"`
}

type templateRecord struct {
	ID   int    `xml:"ID"`
	Name string `xml:"NAME"`
}

type vmPool struct {
	XMLName xml.Name   `xml:"VM_POOL"`
	VMs     []vmRecord `xml:"VM"`
}

type vmRecord struct {
	ID       int        `xml:"ID"`
	Name     string     `xml:"NAME"`
	State    int        `xml:"STATE"`
	LCMState int        `xml:"LCM_STATE"`
	Template vmTemplate `xml:"TEMPLATE"`
}

type vmTemplate struct {
	NICs []nicRecord `xml:"NIC"`
}

type nicRecord struct {
	MAC     string `xml:"MAC"`
	Network string `xml:"NETWORK"`
}

func parseTemplatePool(data []byte) (templatePool, error) {
	var pool templatePool
	if err := xml.Unmarshal(data, &pool); err != nil {
		return templatePool{}, err
	}

	return pool, nil
}

func parseVMPool(data []byte) (vmPool, error) {
	var pool vmPool
	if err := xml.Unmarshal(data, &pool); err != nil {
		return vmPool{}, err
	}

	return pool, nil
}

func (r vmRecord) toVM() directory.VM {
	nics := make([]directory.NIC, 0, len(r.Template.NICs))
	for _, nic := range r.Template.NICs {
		nics = append(nics, directory.NIC{MAC: nic.MAC, Network: nic.Network})
	}

	return directory.VM{
		ID:       r.ID,
		Name:     r.Name,
		State:    directory.State(r.State),
		LCMState: directory.LCMState(r.LCMState),
		Template: directory.VMTemplate{NICs: nics},
	}
}
