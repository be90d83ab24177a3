package profiler

import (
	"log"

	"github.com/cogentcore/webgpu/wgpu"
)

// Reporter receives binder warnings and per-dispatch texture reports. The
// renderer routes every compute dispatch through one of these so debug
// tooling can observe outputs without touching the dispatch path.
type Reporter interface {
	// Warn reports a non-fatal binding problem for a shader.
	//
	// Parameters:
	//   - shader: the shader name the warning belongs to
	//   - msg: the warning text
	Warn(shader, msg string)

	// ReportTexture reports a dispatch output texture.
	//
	// Parameters:
	//   - name: the shader or pass name the texture belongs to
	//   - view: the texture's view
	ReportTexture(name string, view *wgpu.TextureView)
}

// logReporter writes warnings to the standard logger and ignores texture
// reports.
type logReporter struct{}

var _ Reporter = logReporter{}

func (logReporter) Warn(shader, msg string) {
	log.Printf("[%s] %s", shader, msg)
}

func (logReporter) ReportTexture(name string, view *wgpu.TextureView) {}

// NewLogReporter creates a Reporter that logs warnings via the standard logger.
//
// Returns:
//   - Reporter: the logging reporter
func NewLogReporter() Reporter {
	return logReporter{}
}

// nopReporter discards everything. Useful in tests.
type nopReporter struct{}

var _ Reporter = nopReporter{}

func (nopReporter) Warn(shader, msg string)                          {}
func (nopReporter) ReportTexture(name string, view *wgpu.TextureView) {}

// NewNopReporter creates a Reporter that discards all reports.
//
// Returns:
//   - Reporter: the no-op reporter
func NewNopReporter() Reporter {
	return nopReporter{}
}
