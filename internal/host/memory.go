package host

import (
	"fmt"
	"path/filepath"
	"sync"
)

// SampleFunc produces a result variable's current value.
type SampleFunc func(Extra) (float64, error)

// MemoryObject is an in-memory Object. The setters make it usable both as
// a test double and as the object model of the bundled plant simulation.
type MemoryObject struct {
	id   ObjectID
	name string
	typ  ObjectType

	mu          sync.RWMutex
	tags        map[string]string
	strs        map[string]string
	ints        map[string]int
	dbls        map[string]float64
	unavailable map[string]bool
	units       map[string]float64
	samples     map[string]SampleFunc
}

func NewObject(id ObjectID, name string, typ ObjectType) *MemoryObject {
	return &MemoryObject{
		id:          id,
		name:        name,
		typ:         typ,
		tags:        make(map[string]string),
		strs:        make(map[string]string),
		ints:        make(map[string]int),
		dbls:        make(map[string]float64),
		unavailable: make(map[string]bool),
		units:       make(map[string]float64),
		samples:     make(map[string]SampleFunc),
	}
}

func (o *MemoryObject) ID() ObjectID     { return o.id }
func (o *MemoryObject) Name() string     { return o.name }
func (o *MemoryObject) Type() ObjectType { return o.typ }

func (o *MemoryObject) SetTag(name, value string) *MemoryObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.tags[name] = value
	return o
}

func (o *MemoryObject) DeleteTag(name string) *MemoryObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.tags, name)
	return o
}

func (o *MemoryObject) SetString(name, value string) *MemoryObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.strs[name] = value
	delete(o.unavailable, name)
	return o
}

func (o *MemoryObject) SetInteger(name string, value int) *MemoryObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ints[name] = value
	delete(o.unavailable, name)
	return o
}

func (o *MemoryObject) SetDouble(name string, value float64) *MemoryObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.dbls[name] = value
	delete(o.unavailable, name)
	return o
}

// SetUnavailable marks a data name as valid but without a value.
func (o *MemoryObject) SetUnavailable(name string) *MemoryObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	delete(o.strs, name)
	delete(o.ints, name)
	delete(o.dbls, name)
	o.unavailable[name] = true
	return o
}

// SetUnits sets the conversion factor for a dimension. Unset dimensions
// convert with factor 1.
func (o *MemoryObject) SetUnits(units string, factor float64) *MemoryObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.units[units] = factor
	return o
}

func (o *MemoryObject) SetSample(variable string, f SampleFunc) *MemoryObject {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.samples[variable] = f
	return o
}

// SetValue makes a result variable return v regardless of Extra.
func (o *MemoryObject) SetValue(variable string, v float64) *MemoryObject {
	return o.SetSample(variable, func(Extra) (float64, error) { return v, nil })
}

func (o *MemoryObject) Tag(name string) (string, bool) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	v, ok := o.tags[name]
	return v, ok
}

func (o *MemoryObject) DataNameValid(name string) bool {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if o.unavailable[name] {
		return true
	}
	if _, ok := o.strs[name]; ok {
		return true
	}
	if _, ok := o.ints[name]; ok {
		return true
	}
	_, ok := o.dbls[name]
	return ok
}

func (o *MemoryObject) missing(name string) error {
	if o.unavailable[name] {
		return fmt.Errorf("%s.%s: %w", o.name, name, ErrValueNotAvailable)
	}
	return fmt.Errorf("%s.%s: %w", o.name, name, ErrNotFound)
}

func (o *MemoryObject) DataString(name string) (string, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if v, ok := o.strs[name]; ok {
		return v, nil
	}
	return "", o.missing(name)
}

func (o *MemoryObject) DataInteger(name string) (int, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if v, ok := o.ints[name]; ok {
		return v, nil
	}
	return 0, o.missing(name)
}

func (o *MemoryObject) DataDouble(name string) (float64, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if v, ok := o.dbls[name]; ok {
		return v, nil
	}
	return 0, o.missing(name)
}

func (o *MemoryObject) UnitsConversionFactor(units string) (float64, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()
	if f, ok := o.units[units]; ok {
		return f, nil
	}
	return 1, nil
}

func (o *MemoryObject) Sample(variable string, extra Extra) (float64, error) {
	o.mu.RLock()
	f, ok := o.samples[variable]
	o.mu.RUnlock()
	if !ok {
		return 0, fmt.Errorf("%s: result %q: %w", o.name, variable, ErrNotFound)
	}
	return f(extra)
}

// MemoryModel is an in-memory Model.
type MemoryModel struct {
	fileName string
	start    float64
	general  *MemoryObject
	env      *MemoryObject

	mu      sync.RWMutex
	objects map[string]Object
	nextID  ObjectID
}

// NewModel creates a model with its general and environment objects.
func NewModel(fileName string, start float64) *MemoryModel {
	m := &MemoryModel{
		fileName: fileName,
		start:    start,
		objects:  make(map[string]Object),
		nextID:   1,
	}
	m.general = m.NewObject("General", TypeGeneral)
	m.env = m.NewObject("Environment", TypeEnvironment)
	return m
}

// NewObject creates an object with the next free ID and adds it to the model.
func (m *MemoryModel) NewObject(name string, typ ObjectType) *MemoryObject {
	m.mu.Lock()
	defer m.mu.Unlock()
	o := NewObject(m.nextID, name, typ)
	m.nextID++
	m.objects[name] = o
	return o
}

// Add registers an object created elsewhere.
func (m *MemoryModel) Add(o Object) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[o.Name()] = o
	if o.ID() >= m.nextID {
		m.nextID = o.ID() + 1
	}
}

func (m *MemoryModel) FileName() string             { return m.fileName }
func (m *MemoryModel) Directory() string            { return filepath.Dir(m.fileName) }
func (m *MemoryModel) SimulationStartTime() float64 { return m.start }
func (m *MemoryModel) General() Object              { return m.general }
func (m *MemoryModel) Environment() Object          { return m.env }

func (m *MemoryModel) GeneralObject() *MemoryObject     { return m.general }
func (m *MemoryModel) EnvironmentObject() *MemoryObject { return m.env }

func (m *MemoryModel) ObjectCalled(name string) (Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	o, ok := m.objects[name]
	if !ok {
		return nil, fmt.Errorf("object %q: %w", name, ErrNotFound)
	}
	return o, nil
}
