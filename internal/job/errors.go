package job

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for a format tag other than PDF or IMAGE.
	ErrUnsupportedFormat = errors.New("unsupported format")
	// ErrProjectUnreadable is wrapped by every *ProjectError.
	ErrProjectUnreadable = errors.New("failed to read project file")
	// ErrNoLayout is returned when the project has no print layout.
	ErrNoLayout = errors.New("no layout found in the project")
)

// Pipeline stage names, used in StageError and Report.Stage.
const (
	StageOpen      = "open"
	StageLayout    = "layout"
	StageTransform = "transform"
	StageMapFrame  = "map_frame"
	StageLabels    = "labels"
	StageExport    = "export"
)

// ProjectError reports a project file the engine could not read.
type ProjectError struct {
	Path string
	Err  error
}

func (e *ProjectError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrProjectUnreadable, e.Path, e.Err)
}

// Is makes errors.Is(err, ErrProjectUnreadable) hold.
func (e *ProjectError) Is(target error) bool {
	return target == ErrProjectUnreadable
}

func (e *ProjectError) Unwrap() error {
	return e.Err
}

// StageError is an engine failure attributed to a pipeline stage.
type StageError struct {
	Stage string
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("stage %s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// PanicError carries a panic recovered while the engine was in use.
type PanicError struct {
	Stage string
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	if e.Stage == "" {
		return fmt.Sprintf("engine panic: %v", e.Value)
	}
	return fmt.Sprintf("engine panic in stage %s: %v", e.Stage, e.Value)
}

// Unwrap exposes the panic value when it is itself an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}
