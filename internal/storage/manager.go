package storage

import (
	"sort"

	"github.com/talgya/villagesim/internal/resource"
)

// Manager routes resource transfers across storage facilities. Allocation
// is deterministic: adds fill the facility with the most available capacity
// first, removes drain the facility holding the most of that resource first.
// Any remainder a caller cannot place is the caller's responsibility (the
// world layer routes it to the village ledger as overflow).
type Manager struct {
	facilities []*Facility
	nextID     int

	// Eligible-facility sets cached per resource type until the facility
	// list changes.
	eligible map[resource.Type][]*Facility
}

// NewManager creates an empty storage manager.
func NewManager() *Manager {
	return &Manager{
		nextID:   1,
		eligible: make(map[resource.Type][]*Facility),
	}
}

// AddFacility registers a facility and invalidates eligibility caches.
func (m *Manager) AddFacility(f *Facility) {
	f.ID = m.nextID
	m.nextID++
	m.facilities = append(m.facilities, f)
	m.eligible = make(map[resource.Type][]*Facility)
}

// RemoveFacility deletes a facility by ID. Returns false if unknown.
func (m *Manager) RemoveFacility(id int) bool {
	for i, f := range m.facilities {
		if f.ID == id {
			m.facilities = append(m.facilities[:i], m.facilities[i+1:]...)
			m.eligible = make(map[resource.Type][]*Facility)
			return true
		}
	}
	return false
}

// FacilityByID returns the facility with the given ID, or nil.
func (m *Manager) FacilityByID(id int) *Facility {
	for _, f := range m.facilities {
		if f.ID == id {
			return f
		}
	}
	return nil
}

// Facilities returns all facilities in registration order.
func (m *Manager) Facilities() []*Facility { return m.facilities }

// FacilitiesFor returns every facility whose accept policy admits the type.
func (m *Manager) FacilitiesFor(t resource.Type) []*Facility {
	if cached, ok := m.eligible[t]; ok {
		return cached
	}
	var out []*Facility
	for _, f := range m.facilities {
		if f.Accepts == nil || f.Accepts(t) {
			out = append(out, f)
		}
	}
	m.eligible[t] = out
	return out
}

// AddResource distributes amount across eligible facilities, most available
// capacity first, and returns the total actually stored.
func (m *Manager) AddResource(t resource.Type, amount float64) float64 {
	facilities := m.FacilitiesFor(t)
	if len(facilities) == 0 {
		return 0
	}

	ordered := make([]*Facility, len(facilities))
	copy(ordered, facilities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].AvailableCapacity() > ordered[j].AvailableCapacity()
	})

	remaining := amount
	added := 0.0
	for _, f := range ordered {
		if remaining <= 0 {
			break
		}
		got := f.Add(t, remaining)
		added += got
		remaining -= got
	}
	return added
}

// RemoveResource drains amount from eligible facilities, most stocked
// first, and returns the total actually removed.
func (m *Manager) RemoveResource(t resource.Type, amount float64) float64 {
	facilities := m.FacilitiesFor(t)

	ordered := make([]*Facility, len(facilities))
	copy(ordered, facilities)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Resources[t] > ordered[j].Resources[t]
	})

	remaining := amount
	removed := 0.0
	for _, f := range ordered {
		if remaining <= 0 {
			break
		}
		got := f.Remove(t, remaining)
		removed += got
		remaining -= got
	}
	return removed
}

// TotalAmount returns the amount of a resource held across all facilities.
func (m *Manager) TotalAmount(t resource.Type) float64 {
	total := 0.0
	for _, f := range m.facilities {
		total += f.Resources[t]
	}
	return total
}

// TotalCapacity returns the summed capacity of all facilities.
func (m *Manager) TotalCapacity() float64 {
	total := 0.0
	for _, f := range m.facilities {
		total += f.Capacity
	}
	return total
}

// AvailableCapacity returns the summed free space across all facilities.
func (m *Manager) AvailableCapacity() float64 {
	total := 0.0
	for _, f := range m.facilities {
		total += f.AvailableCapacity()
	}
	return total
}

// FacilitiesNear returns facilities within a chebyshev distance of a
// position.
func (m *Manager) FacilitiesNear(x, y, distance int) []*Facility {
	var out []*Facility
	for _, f := range m.facilities {
		dx, dy := f.X-x, f.Y-y
		if dx < 0 {
			dx = -dx
		}
		if dy < 0 {
			dy = -dy
		}
		if dx <= distance && dy <= distance {
			out = append(out, f)
		}
	}
	return out
}
