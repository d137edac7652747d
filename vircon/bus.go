package vircon

import (
	"errors"
	"fmt"
)

var (
	// ErrUnboundSlot is a wiring fault: a bus was used through a slot
	// nobody bound. An assembled Machine never returns it.
	ErrUnboundSlot = errors.New("bus slot is not bound")
	// ErrAccessRejected means the slave refused the local address.
	ErrAccessRejected = errors.New("bus access rejected")
)

// Slave is a component addressable through a bus.
type Slave interface {
	ReadAddress(local int32) (Word, bool)
	WriteAddress(local int32, value Word) bool
}

// Component receives frame and reset notifications from the machine.
type Component interface {
	ChangeFrame()
	Reset()
}

// Master is the component driving a bus. Only the CPU is a master.
type Master interface {
	RunNextCycle()
}

// Bus routes reads and writes from its master to a fixed set of slaves.
// It has no behaviour of its own.
type Bus struct {
	name   string
	master Master
	slaves []Slave
}

// NewBus creates a bus with the given number of slots, all unbound.
func NewBus(name string, slots int) *Bus {
	return &Bus{name: name, slaves: make([]Slave, slots)}
}

// Connect sets the master of the bus.
func (b *Bus) Connect(master Master) {
	b.master = master
}

// Master returns the connected master, if any.
func (b *Bus) Master() Master {
	return b.master
}

// BindSlave binds a component to a slot.
func (b *Bus) BindSlave(index int, slave Slave) {
	b.slaves[index] = slave
}

// Slots reports the number of slots of the bus.
func (b *Bus) Slots() int {
	return len(b.slaves)
}

func (b *Bus) slave(index int) (Slave, error) {
	if index < 0 || index >= len(b.slaves) || b.slaves[index] == nil {
		return nil, fmt.Errorf("%s bus slot %d: %w", b.name, index, ErrUnboundSlot)
	}
	return b.slaves[index], nil
}

// Read reads a word from the slave bound at index.
func (b *Bus) Read(index int, local int32) (Word, error) {
	s, err := b.slave(index)
	if err != nil {
		return 0, err
	}
	v, ok := s.ReadAddress(local)
	if !ok {
		return 0, fmt.Errorf("%s bus read: slot=%d, address=0x%07x: %w", b.name, index, local, ErrAccessRejected)
	}
	return v, nil
}

// Write writes a word to the slave bound at index.
func (b *Bus) Write(index int, local int32, value Word) error {
	s, err := b.slave(index)
	if err != nil {
		return err
	}
	if !s.WriteAddress(local, value) {
		return fmt.Errorf("%s bus write: slot=%d, address=0x%07x, data=0x%08x: %w", b.name, index, local, value, ErrAccessRejected)
	}
	return nil
}

// CheckBound returns an error for the first unbound slot.
func (b *Bus) CheckBound() error {
	for i := range b.slaves {
		if _, err := b.slave(i); err != nil {
			return err
		}
	}
	return nil
}
