package tracer

import (
	"context"
	_ "embed"
	"encoding/xml"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/achilleasa/orbitrender/log"
	"github.com/achilleasa/orbitrender/proc"
	"github.com/achilleasa/orbitrender/raster"
	"github.com/achilleasa/orbitrender/scene"
)

// The default command used to invoke the external renderer. It runs the
// bundled Mitsuba driver which renders the job's sensor against the scene and
// saves the result as a float32 .npy array.
const DefaultCommand = "python3 {driver} --spp {spp} --seed {seed} {scene} {job} {output}"

// Plugin ids of the sensor and integrator declared by each job.
const (
	SensorID     = "orbit"
	IntegratorID = "orbit_integrator"
)

// The file name of the bundled driver inside the work dir.
const driverName = "orbit_render.py"

//go:embed assets/orbit_render.py
var driverSource []byte

// The AOVs requested from the renderer, in channel order after RGB.
const defaultAOVs = "albedo:albedo,depth:depth,normal:sh_normal,position:position"

// Scene format version used when the source scene does not declare one.
const defaultSceneVersion = "3.0.0"

var ErrRendererNotFound = errors.New("tracer: renderer command not found")

type ProcessOptions struct {
	// Command template. The placeholders {job}, {output}, {scene}, {spp},
	// {seed} and {driver} are substituted before each invocation.
	Command string

	// Directory for job and output files. A temporary directory is created
	// (and removed on Close) when empty.
	WorkDir string

	// Declare an AOV integrator that emits albedo, depth, normal and
	// position channels next to RGB.
	AOVIntegrator bool

	// Add an <include> of the source scene to each job so that the job file
	// is a complete scene on its own. The job's sensor and integrator are
	// declared ahead of the include.
	IncludeScene bool

	// Keep job and output files after each frame.
	KeepJobs bool
}

// A tracer that runs the external renderer as a subprocess for every frame.
//
// For each frame a job file is written that declares the frame's sensor and,
// optionally, an AOV integrator. The renderer is expected to write the frame
// to the {output} path as a float32 .npy array of shape (H, W, C).
type ProcessTracer struct {
	id     string
	opts   ProcessOptions
	logger log.Logger

	workDir     string
	ownsWorkDir bool
	jobCount    uint64
}

// Create a new process tracer.
func NewProcessTracer(id string, opts ProcessOptions) (*ProcessTracer, error) {
	if opts.Command == "" {
		opts.Command = DefaultCommand
	}

	tr := &ProcessTracer{
		id:      id,
		opts:    opts,
		logger:  log.New(id),
		workDir: opts.WorkDir,
	}

	// Reject malformed templates and missing executables early
	args, err := proc.Expand(opts.Command, nil)
	if err != nil {
		return nil, err
	}
	if isTemplated := strings.Contains(args[0], "{"); !isTemplated {
		if _, err = exec.LookPath(args[0]); err != nil {
			return nil, fmt.Errorf("%w: %q: %v", ErrRendererNotFound, args[0], err)
		}
	}

	// The renderer runs in the scene dir so job paths must be absolute
	if tr.workDir == "" {
		dir, err := os.MkdirTemp("", "orbitrender-")
		if err != nil {
			return nil, err
		}
		tr.workDir = dir
		tr.ownsWorkDir = true
	} else {
		if tr.workDir, err = filepath.Abs(tr.workDir); err != nil {
			return nil, err
		}
		if err = os.MkdirAll(tr.workDir, 0755); err != nil {
			return nil, err
		}
	}

	if strings.Contains(opts.Command, "{driver}") {
		if err = os.WriteFile(tr.driverPath(), driverSource, 0644); err != nil {
			tr.Close()
			return nil, err
		}
	}

	return tr, nil
}

// Get tracer id.
func (tr *ProcessTracer) Id() string {
	return tr.id
}

// Get the absolute path of the directory where job files are written.
func (tr *ProcessTracer) WorkDir() string {
	return tr.workDir
}

func (tr *ProcessTracer) driverPath() string {
	return filepath.Join(tr.workDir, driverName)
}

// Remove the temporary work dir if the tracer created it.
func (tr *ProcessTracer) Close() error {
	if tr.ownsWorkDir && !tr.opts.KeepJobs {
		return os.RemoveAll(tr.workDir)
	}
	return nil
}

// Render a frame by invoking the external renderer.
func (tr *ProcessTracer) Render(ctx context.Context, sc *scene.Scene, sensor *scene.Sensor) (*raster.Frame, error) {
	if err := sensor.Validate(); err != nil {
		return nil, err
	}

	jobIndex := atomic.AddUint64(&tr.jobCount, 1) - 1
	jobFile := filepath.Join(tr.workDir, fmt.Sprintf("job_%04d.xml", jobIndex))
	outFile := filepath.Join(tr.workDir, fmt.Sprintf("job_%04d.npy", jobIndex))

	if err := tr.writeJob(jobFile, sc, sensor); err != nil {
		return nil, err
	}
	if !tr.opts.KeepJobs {
		defer os.Remove(jobFile)
		defer os.Remove(outFile)
	}

	args, err := proc.Expand(tr.opts.Command, map[string]string{
		"job":    jobFile,
		"output": outFile,
		"scene":  sc.Path,
		"spp":    strconv.FormatUint(uint64(sensor.SampleCount), 10),
		"seed":   strconv.FormatUint(uint64(sensor.Seed), 10),
		"driver": tr.driverPath(),
	})
	if err != nil {
		return nil, err
	}

	tr.logger.Debugf("running %q", args)
	start := time.Now()
	if err = proc.Run(ctx, args, proc.InDir(sc.Dir())); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrRenderFailed, err)
	}
	tr.logger.Debugf("renderer finished job %d in %s", jobIndex, time.Since(start))

	frame, err := raster.ReadNPYFile(outFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: no output written to %s; the renderer command must save a float32 .npy array to {output}", ErrBadOutput, outFile)
		}
		return nil, fmt.Errorf("%w: %v", ErrBadOutput, err)
	}

	if frame.Width != int(sensor.Width) || frame.Height != int(sensor.Height) {
		return nil, fmt.Errorf("%w: expected a %dx%d frame; got %dx%d", ErrBadOutput, sensor.Width, sensor.Height, frame.Width, frame.Height)
	}

	return frame, nil
}

type xmlString struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jobInclude struct {
	Filename string `xml:"filename,attr"`
}

type jobIntegrator struct {
	Type    string         `xml:"type,attr"`
	ID      string         `xml:"id,attr,omitempty"`
	Name    string         `xml:"name,attr,omitempty"`
	Strings []xmlString    `xml:"string"`
	Nested  *jobIntegrator `xml:"integrator,omitempty"`
}

// Elements are emitted in field order: the job's sensor precedes any sensor
// pulled in by the include.
type jobScene struct {
	XMLName    xml.Name       `xml:"scene"`
	Version    string         `xml:"version,attr"`
	Integrator *jobIntegrator `xml:"integrator,omitempty"`
	Sensor     *scene.Sensor  `xml:"sensor"`
	Include    *jobInclude    `xml:"include,omitempty"`
}

func (tr *ProcessTracer) buildJob(sc *scene.Scene, sensor *scene.Sensor) jobScene {
	jobSensor := *sensor
	jobSensor.ID = SensorID

	job := jobScene{
		Version: sc.Version,
		Sensor:  &jobSensor,
	}
	if job.Version == "" {
		job.Version = defaultSceneVersion
	}

	if tr.opts.AOVIntegrator {
		job.Integrator = &jobIntegrator{
			Type:    "aov",
			ID:      IntegratorID,
			Strings: []xmlString{{Name: "aovs", Value: defaultAOVs}},
			Nested:  &jobIntegrator{Type: "path", Name: "image"},
		}
	}

	if tr.opts.IncludeScene {
		job.Include = &jobInclude{Filename: sc.Path}
	}

	return job
}

func (tr *ProcessTracer) writeJob(path string, sc *scene.Scene, sensor *scene.Sensor) error {
	data, err := xml.MarshalIndent(tr.buildJob(sc, sensor), "", "  ")
	if err != nil {
		return err
	}

	data = append([]byte(xml.Header), data...)
	return os.WriteFile(path, append(data, '\n'), 0644)
}
