//go:build !darwin && !linux && !windows

package input

// Stub implementation for platforms without an injector

// Injector represents a stub input injector
type Injector struct {
	Disabled
}

// NewInjector always fails with ErrUnsupported
func NewInjector(opts Options) (*Injector, error) {
	return nil, ErrUnsupported
}
