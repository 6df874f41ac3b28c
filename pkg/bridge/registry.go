package bridge

import (
	"fmt"
	"sort"
	"sync"

	"github.com/jdziat/callinvoker/pkg/core"
	"github.com/jdziat/callinvoker/pkg/refcount"
	"github.com/jdziat/callinvoker/pkg/security"
)

// HolderDescriptor is the foreign class the holder natives are bound to.
const HolderDescriptor = "Lcom/jdziat/callinvoker/CallInvokerHolder;"

// Native method names installed by RegisterHolderNatives.
const (
	MethodInitHybrid     = "initHybrid"
	MethodGetCallInvoker = "getCallInvoker"
	MethodFinalize       = "finalize"
)

// Typed entry points stored in NativeMethod.Fn for the holder natives.
type (
	InitHybridFunc     func(*refcount.Ref[core.CallInvoker]) (Handle, error)
	GetCallInvokerFunc func(Handle) (*refcount.Ref[core.CallInvoker], error)
	FinalizeFunc       func(Handle) bool
)

// NativeMethod describes one native entry point of a foreign class.
type NativeMethod struct {
	Name      string
	Signature string
	Fn        any
}

// Registry holds the native methods installed per foreign class descriptor.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]map[string]NativeMethod
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{classes: make(map[string]map[string]NativeMethod)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry. It lives until the
// process exits.
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// RegisterNatives installs methods for descriptor. A descriptor can only be
// registered once; the whole call fails without side effects if any method
// is invalid.
func (r *Registry) RegisterNatives(descriptor string, methods ...NativeMethod) error {
	if err := security.ValidateDescriptor(descriptor); err != nil {
		return err
	}
	if len(methods) == 0 {
		return core.ErrNoNativeMethods
	}

	table := make(map[string]NativeMethod, len(methods))
	for _, m := range methods {
		if err := security.ValidateMethodName(m.Name); err != nil {
			return fmt.Errorf("%s.%s: %w", descriptor, m.Name, err)
		}
		if m.Fn == nil {
			return fmt.Errorf("%s.%s: %w", descriptor, m.Name, core.ErrNilNativeFunction)
		}
		if _, dup := table[m.Name]; dup {
			return fmt.Errorf("%s.%s: %w", descriptor, m.Name, core.ErrDuplicateNative)
		}
		table[m.Name] = m
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[descriptor]; exists {
		return fmt.Errorf("%s: %w", descriptor, core.ErrAlreadyRegistered)
	}
	r.classes[descriptor] = table
	return nil
}

// Lookup returns the native method registered under descriptor and name.
func (r *Registry) Lookup(descriptor, name string) (NativeMethod, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.classes[descriptor][name]
	return m, ok
}

// Registered reports whether natives were installed for descriptor.
func (r *Registry) Registered(descriptor string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.classes[descriptor]
	return ok
}

// Methods returns the methods of descriptor sorted by name.
func (r *Registry) Methods(descriptor string) []NativeMethod {
	r.mu.RLock()
	table := r.classes[descriptor]
	out := make([]NativeMethod, 0, len(table))
	for _, m := range table {
		out = append(out, m)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// RegisterHolderNatives installs the holder's construction, accessor and
// finalization entry points for HolderDescriptor, backed by t.
func RegisterHolderNatives(r *Registry, t *Table) error {
	return r.RegisterNatives(HolderDescriptor,
		NativeMethod{
			Name:      MethodInitHybrid,
			Signature: "(Lcom/jdziat/callinvoker/CallInvoker;)J",
			Fn:        InitHybridFunc(t.MakeHolder),
		},
		NativeMethod{
			Name:      MethodGetCallInvoker,
			Signature: "(J)Lcom/jdziat/callinvoker/CallInvoker;",
			Fn:        GetCallInvokerFunc(t.GetCallInvoker),
		},
		NativeMethod{
			Name:      MethodFinalize,
			Signature: "(J)V",
			Fn:        FinalizeFunc(t.Finalize),
		},
	)
}
