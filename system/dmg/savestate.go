package dmg

import "github.com/shonumi/gbe-plus-sub002/savestate"

// Save serializes the full machine state (CPU registers, bus RAM
// regions and bank-select indices, LCD state and the installed
// cartridge's battery RAM) into a savestate blob.
func (m *Machine) Save() ([]byte, error) {
	w := savestate.NewWriter()
	if err := m.CPU.Save(w); err != nil {
		return nil, err
	}
	if err := m.Bus.Save(w); err != nil {
		return nil, err
	}
	if err := m.GPU.Save(w); err != nil {
		return nil, err
	}
	return w.Encode()
}

// Restore loads a savestate blob produced by Save, leaving the machine
// bit-identical to the state it was saved from. frameCount is not part
// of the restored state; it keeps counting from where the running
// session left off.
func (m *Machine) Restore(data []byte) error {
	r, err := savestate.Decode(data)
	if err != nil {
		return err
	}
	if err := m.CPU.Restore(r); err != nil {
		return err
	}
	if err := m.Bus.Restore(r); err != nil {
		return err
	}
	if err := m.GPU.Restore(r); err != nil {
		return err
	}
	return nil
}
