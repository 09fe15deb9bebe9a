package shader

import (
	"fmt"

	"github.com/bentokun/Vita3K/usse"
)

// UnsupportedFeatureError reports a recognized construct the recompiler
// cannot translate. It always degrades: the feature is skipped and
// recompilation continues.
type UnsupportedFeatureError struct {
	Feature string
}

func (e *UnsupportedFeatureError) Error() string {
	return fmt.Sprintf("shader: unsupported feature: %s", e.Feature)
}

// RegisterResolutionError reports a register access with no covering
// binding in its bank. Fatal for that access only; the produced value
// is undefined.
type RegisterResolutionError struct {
	Bank  usse.RegisterBank
	Index uint32
}

func (e *RegisterResolutionError) Error() string {
	return fmt.Sprintf("shader: no binding covers %s register %d", e.Bank, e.Index)
}

// BackendAssemblyError wraps a cross-compilation failure from the GLSL
// backend.
type BackendAssemblyError struct {
	Err error
}

func (e *BackendAssemblyError) Error() string {
	return fmt.Sprintf("shader: backend compilation failed: %v", e.Err)
}

func (e *BackendAssemblyError) Unwrap() error { return e.Err }
