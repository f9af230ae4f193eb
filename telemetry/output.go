package telemetry

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/gocarina/gocsv"

	"github.com/pthm-cable/gaze/config"
	"github.com/pthm-cable/gaze/systems"
)

// Default stream file names.
const (
	DefaultObjectsFile = "saliency_objects.csv"
	DefaultWeightsFile = "saliency_weights.csv"
	StatsFile          = "gaze_stats.csv"
	PerfFile           = "perf.csv"
	BookmarksFile      = "bookmarks.csv"
	HallOfFameFile     = "hall_of_fame.json"
)

// csvStream is one append-only CSV file.
type csvStream struct {
	name string
	file *os.File

	// appending is set when the file already had content; existing is its
	// header line, compared against the records' header on the first write.
	appending bool
	existing  string
	started   bool
	rowType   reflect.Type
}

// openStream opens name in dir for appending. A header is only written
// later if the file is new or empty.
func openStream(dir, name string) (*csvStream, error) {
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_RDWR|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", name, err)
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("stat %s: %w", name, err)
	}
	s := &csvStream{name: name, file: f, appending: info.Size() > 0}
	if s.appending {
		line, err := bufio.NewReader(io.NewSectionReader(f, 0, info.Size())).ReadString('\n')
		if err != nil && err != io.EOF {
			f.Close()
			return nil, fmt.Errorf("reading %s header: %w", name, err)
		}
		s.existing = strings.TrimRight(line, "\r\n")
	}
	return s, nil
}

// write appends records (a slice of tagged structs). When appending to an
// existing file the first write fails if the columns differ from its header.
func (s *csvStream) write(records any) error {
	if s == nil {
		return nil
	}
	if s.started {
		if t := reflect.TypeOf(records); t != s.rowType {
			return fmt.Errorf("%s: cannot append %v rows to a %v stream", s.name, t, s.rowType)
		}
		if err := gocsv.MarshalWithoutHeaders(records, s.file); err != nil {
			return fmt.Errorf("writing %s: %w", s.name, err)
		}
		return nil
	}

	var buf bytes.Buffer
	if err := gocsv.Marshal(records, &buf); err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	out := buf.Bytes()
	if s.appending {
		header, rest, _ := bytes.Cut(out, []byte("\n"))
		if got := strings.TrimRight(string(header), "\r"); got != s.existing {
			return fmt.Errorf("%s: existing header %q does not match %q", s.name, s.existing, got)
		}
		out = rest
	}
	if _, err := s.file.Write(out); err != nil {
		return fmt.Errorf("writing %s: %w", s.name, err)
	}
	s.started = true
	s.rowType = reflect.TypeOf(records)
	return nil
}

func (s *csvStream) close() error {
	if s == nil || s.file == nil {
		return nil
	}
	return s.file.Close()
}

// OutputOptions selects the saliency stream files.
type OutputOptions struct {
	ObjectsFile string // per-object rows; DefaultObjectsFile if empty
	WeightsFile string // per-frame weights; DefaultWeightsFile if empty
	LogWeights  bool   // open the weight stream at all
}

// OutputManager handles structured experiment output with CSV logging.
type OutputManager struct {
	dir string

	objects   *csvStream
	weights   *csvStream
	stats     *csvStream
	perf      *csvStream
	bookmarks *csvStream
}

// NewOutputManager creates a new output manager and initializes the output directory.
// Returns nil if dir is empty (output disabled).
func NewOutputManager(dir string, opts OutputOptions) (*OutputManager, error) {
	if dir == "" {
		return nil, nil
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	if opts.ObjectsFile == "" {
		opts.ObjectsFile = DefaultObjectsFile
	}
	if opts.WeightsFile == "" {
		opts.WeightsFile = DefaultWeightsFile
	}

	om := &OutputManager{dir: dir}

	var err error
	if om.objects, err = openStream(dir, opts.ObjectsFile); err != nil {
		return nil, err
	}
	if opts.LogWeights {
		if om.weights, err = openStream(dir, opts.WeightsFile); err != nil {
			om.Close()
			return nil, err
		}
	}
	if om.stats, err = openStream(dir, StatsFile); err != nil {
		om.Close()
		return nil, err
	}
	if om.perf, err = openStream(dir, PerfFile); err != nil {
		om.Close()
		return nil, err
	}
	if om.bookmarks, err = openStream(dir, BookmarksFile); err != nil {
		om.Close()
		return nil, err
	}

	return om, nil
}

// WriteConfig saves the current configuration as YAML.
func (om *OutputManager) WriteConfig(cfg *config.Config) error {
	if om == nil {
		return nil
	}
	return cfg.WriteYAML(filepath.Join(om.dir, "config.yaml"))
}

// WriteObjects appends one row per object in the report, eligible or not.
// The angular_velocity column is present iff the report has the angular cue.
func (om *OutputManager) WriteObjects(report *systems.FrameReport) error {
	if om == nil || len(report.Rows) == 0 {
		return nil
	}
	if report.Angular {
		return om.objects.write(AngularObjectRecords(report))
	}
	return om.objects.write(ObjectRecords(report))
}

// WriteWeights appends the report's weight vector. No-op when weight
// logging is disabled.
func (om *OutputManager) WriteWeights(report *systems.FrameReport) error {
	if om == nil {
		return nil
	}
	return om.weights.write([]WeightRecord{NewWeightRecord(report)})
}

// WriteStats writes a window stats record to gaze_stats.csv.
func (om *OutputManager) WriteStats(stats WindowStats) error {
	if om == nil {
		return nil
	}
	return om.stats.write([]WindowStats{stats})
}

// WritePerf writes the window's perf rows to perf.csv.
func (om *OutputManager) WritePerf(stats PerfStats, windowEnd uint64) error {
	if om == nil {
		return nil
	}
	return om.perf.write(stats.Records(windowEnd))
}

// WriteBookmark writes a bookmark record to bookmarks.csv.
func (om *OutputManager) WriteBookmark(b Bookmark) error {
	if om == nil {
		return nil
	}
	return om.bookmarks.write([]Bookmark{b})
}

// WriteSnapshot saves a scene snapshot under the snapshots directory.
func (om *OutputManager) WriteSnapshot(s *Snapshot) (string, error) {
	if om == nil || s == nil {
		return "", nil
	}
	return SaveSnapshot(s, filepath.Join(om.dir, "snapshots"))
}

// WriteHallOfFame saves the hall as hall_of_fame.json.
func (om *OutputManager) WriteHallOfFame(hof *HallOfFame) error {
	if om == nil || hof == nil {
		return nil
	}
	return SaveHallOfFame(hof, filepath.Join(om.dir, HallOfFameFile))
}

// Dir returns the output directory path.
func (om *OutputManager) Dir() string {
	if om == nil {
		return ""
	}
	return om.dir
}

// Close flushes and closes all output files.
func (om *OutputManager) Close() error {
	if om == nil {
		return nil
	}

	var firstErr error
	for _, s := range []*csvStream{om.objects, om.weights, om.stats, om.perf, om.bookmarks} {
		if err := s.close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
