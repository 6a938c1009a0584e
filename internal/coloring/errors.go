package coloring

import "fmt"

// Step names a stage of the conversion pipeline.
type Step string

const (
	StepRasterize Step = "rasterize"
	StepLoad      Step = "load"
	StepBlur      Step = "blur"
	StepEdges     Step = "edge-detect"
	StepDilate    Step = "dilate"
	StepInvert    Step = "invert"
	StepThreshold Step = "threshold"
	StepTrace     Step = "vector-trace"
	StepCleanup   Step = "text-patch"
	StepPreview   Step = "preview"
)

// StepError reports which stage of the pipeline failed.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}
