package virsh

import (
	"fmt"

	"libvirt.org/go/libvirtxml"

	"github.com/kubev2v/virt-harness/internal/models"
)

// DomainSpec is the minimal guest the virsh checkpoints define.
type DomainSpec struct {
	Name      string
	MemoryMiB uint
	VCPUs     uint
	Type      string
	Disks     []models.Drive
}

// DomainXML renders spec as libvirt domain XML. Disks are attached as
// virtio vda, vdb, ...
func DomainXML(spec DomainSpec) (string, error) {
	if spec.Name == "" {
		return "", fmt.Errorf("domain name is required")
	}
	if spec.MemoryMiB == 0 {
		spec.MemoryMiB = 512
	}
	if spec.VCPUs == 0 {
		spec.VCPUs = 1
	}
	if spec.Type == "" {
		spec.Type = "kvm"
	}

	dom := &libvirtxml.Domain{
		Type:   spec.Type,
		Name:   spec.Name,
		Memory: &libvirtxml.DomainMemory{Value: spec.MemoryMiB, Unit: "MiB"},
		VCPU:   &libvirtxml.DomainVCPU{Value: spec.VCPUs},
		OS: &libvirtxml.DomainOS{
			Type: &libvirtxml.DomainOSType{Type: "hvm"},
		},
		Devices: &libvirtxml.DomainDeviceList{},
	}
	for i, d := range spec.Disks {
		disk := libvirtxml.DomainDisk{
			Device: "disk",
			Source: &libvirtxml.DomainDiskSource{
				File: &libvirtxml.DomainDiskSourceFile{File: d.Path},
			},
			Target: &libvirtxml.DomainDiskTarget{Dev: fmt.Sprintf("vd%c", 'a'+i), Bus: "virtio"},
		}
		if d.Format != "" {
			disk.Driver = &libvirtxml.DomainDiskDriver{Name: "qemu", Type: d.Format}
		}
		if d.Readonly {
			disk.ReadOnly = &libvirtxml.DomainDiskReadOnly{}
		}
		dom.Devices.Disks = append(dom.Devices.Disks, disk)
	}

	return dom.Marshal()
}

// DomainDisks returns the file backed disks of a domain XML document.
func DomainDisks(xml string) ([]models.Drive, error) {
	var dom libvirtxml.Domain
	if err := dom.Unmarshal(xml); err != nil {
		return nil, fmt.Errorf("failed to parse domain xml: %w", err)
	}
	if dom.Devices == nil {
		return nil, nil
	}
	var drives []models.Drive
	for _, d := range dom.Devices.Disks {
		if d.Source == nil || d.Source.File == nil {
			continue
		}
		drive := models.Drive{Path: d.Source.File.File, Readonly: d.ReadOnly != nil}
		if d.Driver != nil {
			drive.Format = d.Driver.Type
		}
		drives = append(drives, drive)
	}
	return drives, nil
}
