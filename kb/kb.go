package kb

import (
	"fmt"
	"sync"

	"github.com/spacegps/transfer-planner/model"
)

// EventType indicates what kind of change happened in the KB.
type EventType int

const (
	EventCraftStateUpdated EventType = iota
	EventAstreAdded
)

// Event is emitted to subscribers when something interesting happens.
type Event struct {
	Type  EventType
	Astre model.Astre
	Craft model.Spacecraft
}

// KnowledgeBase is an in-memory, thread-safe ephemeris store for celestial
// bodies and the spacecraft that move between them.
type KnowledgeBase struct {
	mu sync.RWMutex

	astres map[string]*model.Astre
	craft  map[string]*model.Spacecraft

	subs []func(Event)
}

// NewKnowledgeBase constructs an empty KB.
func NewKnowledgeBase() *KnowledgeBase {
	return &KnowledgeBase{
		astres: make(map[string]*model.Astre),
		craft:  make(map[string]*model.Spacecraft),
	}
}

// AddAstre registers a celestial body. It returns an error if the ID
// already exists or the referenced parent body is unknown.
func (kb *KnowledgeBase) AddAstre(a *model.Astre) error {
	kb.mu.Lock()
	if _, exists := kb.astres[a.ID]; exists {
		kb.mu.Unlock()
		return fmt.Errorf("astre with ID %q already exists", a.ID)
	}
	if a.ParentID != "" {
		if _, ok := kb.astres[a.ParentID]; !ok {
			kb.mu.Unlock()
			return fmt.Errorf("parent astre %q not found for %q", a.ParentID, a.ID)
		}
	}
	// store pointer so motion models can update in-place
	kb.astres[a.ID] = a
	event := Event{Type: EventAstreAdded, Astre: *a}
	subs := append([]func(Event){}, kb.subs...)
	kb.mu.Unlock()

	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// AddSpacecraft registers a spacecraft. It returns an error if the ID
// already exists or the craft's primary body is unknown.
func (kb *KnowledgeBase) AddSpacecraft(c *model.Spacecraft) error {
	kb.mu.Lock()
	defer kb.mu.Unlock()

	if _, exists := kb.craft[c.ID]; exists {
		return fmt.Errorf("spacecraft with ID %q already exists", c.ID)
	}
	if c.PrimaryID != "" {
		if _, ok := kb.astres[c.PrimaryID]; !ok {
			return fmt.Errorf("primary astre %q not found for spacecraft %q", c.PrimaryID, c.ID)
		}
	}
	kb.craft[c.ID] = c
	return nil
}

// GetAstre returns the body with the given ID, or nil if not found.
func (kb *KnowledgeBase) GetAstre(id string) *model.Astre {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.astres[id]
}

// GetSpacecraft returns the spacecraft with the given ID, or nil if not found.
func (kb *KnowledgeBase) GetSpacecraft(id string) *model.Spacecraft {
	kb.mu.RLock()
	defer kb.mu.RUnlock()
	return kb.craft[id]
}

// ListAstres returns a snapshot slice of all bodies.
func (kb *KnowledgeBase) ListAstres() []*model.Astre {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.Astre, 0, len(kb.astres))
	for _, a := range kb.astres {
		res = append(res, a)
	}
	return res
}

// ListSpacecraft returns a snapshot slice of all spacecraft.
func (kb *KnowledgeBase) ListSpacecraft() []*model.Spacecraft {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	res := make([]*model.Spacecraft, 0, len(kb.craft))
	for _, c := range kb.craft {
		res = append(res, c)
	}
	return res
}

// Parent returns the primary of the given body, or nil for a root body
// or unknown ID.
func (kb *KnowledgeBase) Parent(id string) *model.Astre {
	kb.mu.RLock()
	defer kb.mu.RUnlock()

	a, ok := kb.astres[id]
	if !ok || a.ParentID == "" {
		return nil
	}
	return kb.astres[a.ParentID]
}

// UpdateCraftState updates a spacecraft's state vector and notifies
// subscribers.
func (kb *KnowledgeBase) UpdateCraftState(id string, st model.State) error {
	kb.mu.Lock()
	c, ok := kb.craft[id]
	if !ok {
		kb.mu.Unlock()
		return fmt.Errorf("spacecraft with ID %q not found", id)
	}
	c.State = st
	event := Event{
		Type:  EventCraftStateUpdated,
		Craft: *c, // copy for safety
	}
	subs := append([]func(Event){}, kb.subs...)
	kb.mu.Unlock()

	// Notify subscribers outside the lock to avoid deadlocks.
	for _, sub := range subs {
		sub(event)
	}
	return nil
}

// Subscribe registers a callback for KB events. It returns an unsubscribe function.
func (kb *KnowledgeBase) Subscribe(fn func(Event)) (unsubscribe func()) {
	kb.mu.Lock()
	defer kb.mu.Unlock()
	kb.subs = append(kb.subs, fn)
	idx := len(kb.subs) - 1

	return func() {
		kb.mu.Lock()
		defer kb.mu.Unlock()
		if idx < 0 || idx >= len(kb.subs) {
			return
		}
		kb.subs = append(kb.subs[:idx], kb.subs[idx+1:]...)
		idx = -1
	}
}
