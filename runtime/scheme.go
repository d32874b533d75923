package runtime

import (
	"fmt"
	"reflect"
	"sync"

	"sigs.k8s.io/yaml"
)

// Scheme maps types to the Go structs they decode into.
type Scheme struct {
	mu    sync.RWMutex
	types map[Type]reflect.Type
}

// NewScheme creates a new, empty scheme.
func NewScheme() *Scheme {
	return &Scheme{types: make(map[Type]reflect.Type)}
}

// Register registers prototype, a pointer to a struct, under all given types.
func (r *Scheme) Register(prototype Typed, types ...Type) error {
	t := reflect.TypeOf(prototype)
	if t.Kind() != reflect.Pointer || t.Elem().Kind() != reflect.Struct {
		return fmt.Errorf("prototype %T must be a pointer to a struct", prototype)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, typ := range types {
		if _, exists := r.types[typ]; exists {
			return fmt.Errorf("type %q is already registered", typ)
		}
		r.types[typ] = t.Elem()
	}
	return nil
}

func (r *Scheme) MustRegister(prototype Typed, types ...Type) {
	if err := r.Register(prototype, types...); err != nil {
		panic(err)
	}
}

func (r *Scheme) IsRegistered(typ Type) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.types[typ]
	return exists
}

// NewObject creates a new zero instance of the struct registered for typ.
func (r *Scheme) NewObject(typ Type) (Typed, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.types[typ]
	if !exists {
		return nil, fmt.Errorf("unsupported type: %s", typ)
	}
	return reflect.New(t).Interface().(Typed), nil
}

// Decode creates the object registered for the type of raw and fills it
// from the raw data.
func (r *Scheme) Decode(raw *Raw) (Typed, error) {
	obj, err := r.NewObject(raw.GetType())
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(raw.Data, obj); err != nil {
		return nil, fmt.Errorf("failed to unmarshal %s: %w", raw.GetType(), err)
	}
	return obj, nil
}
