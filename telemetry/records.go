package telemetry

import (
	"strconv"

	"github.com/pthm-cable/gaze/systems"
)

// Fixed2 is a float written with two decimals.
type Fixed2 float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (f Fixed2) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(f), 'f', 2, 64), nil
}

// Fixed4 is a float written with four decimals.
type Fixed4 float64

// MarshalCSV implements gocsv.TypeMarshaller.
func (f Fixed4) MarshalCSV() (string, error) {
	return strconv.FormatFloat(float64(f), 'f', 4, 64), nil
}

// Flag is a bool written as 0 or 1.
type Flag bool

// MarshalCSV implements gocsv.TypeMarshaller.
func (b Flag) MarshalCSV() (string, error) {
	if b {
		return "1", nil
	}
	return "0", nil
}

// ObjectRecord is one object's row when the angular cue is inactive.
type ObjectRecord struct {
	Frame             uint64 `csv:"frame"`
	ObjectID          uint64 `csv:"object_id"`
	PosX              Fixed2 `csv:"pos_x"`
	PosY              Fixed2 `csv:"pos_y"`
	PosZ              Fixed2 `csv:"pos_z"`
	Motion            Fixed4 `csv:"motion"`
	Proximity         Fixed4 `csv:"proximity"`
	ColorContrast     Fixed4 `csv:"color_contrast"`
	LuminanceContrast Fixed4 `csv:"luminance_contrast"`
	IsBest            Flag   `csv:"is_best"`
}

// AngularObjectRecord is one object's row with the angular velocity column.
type AngularObjectRecord struct {
	Frame             uint64 `csv:"frame"`
	ObjectID          uint64 `csv:"object_id"`
	PosX              Fixed2 `csv:"pos_x"`
	PosY              Fixed2 `csv:"pos_y"`
	PosZ              Fixed2 `csv:"pos_z"`
	Motion            Fixed4 `csv:"motion"`
	AngularVelocity   Fixed4 `csv:"angular_velocity"`
	Proximity         Fixed4 `csv:"proximity"`
	ColorContrast     Fixed4 `csv:"color_contrast"`
	LuminanceContrast Fixed4 `csv:"luminance_contrast"`
	IsBest            Flag   `csv:"is_best"`
}

// WeightRecord is one frame's weight vector.
type WeightRecord struct {
	Frame           uint64 `csv:"frame"`
	WeightMotion    Fixed4 `csv:"weight_motion"`
	WeightAngular   Fixed4 `csv:"weight_angular"`
	WeightProximity Fixed4 `csv:"weight_proximity"`
	WeightColor     Fixed4 `csv:"weight_color"`
	WeightLuminance Fixed4 `csv:"weight_luminance"`
}

// ObjectRecords converts a frame report to rows without the angular column.
func ObjectRecords(report *systems.FrameReport) []ObjectRecord {
	out := make([]ObjectRecord, 0, len(report.Rows))
	for _, r := range report.Rows {
		out = append(out, ObjectRecord{
			Frame:             report.Frame,
			ObjectID:          uint64(r.ID),
			PosX:              Fixed2(r.Position.X),
			PosY:              Fixed2(r.Position.Y),
			PosZ:              Fixed2(r.Position.Z),
			Motion:            Fixed4(r.Cues.Motion),
			Proximity:         Fixed4(r.Cues.Proximity),
			ColorContrast:     Fixed4(r.Cues.ColorContrast),
			LuminanceContrast: Fixed4(r.Cues.LuminanceContrast),
			IsBest:            Flag(r.Best),
		})
	}
	return out
}

// AngularObjectRecords converts a frame report to rows with the angular column.
func AngularObjectRecords(report *systems.FrameReport) []AngularObjectRecord {
	out := make([]AngularObjectRecord, 0, len(report.Rows))
	for _, r := range report.Rows {
		out = append(out, AngularObjectRecord{
			Frame:             report.Frame,
			ObjectID:          uint64(r.ID),
			PosX:              Fixed2(r.Position.X),
			PosY:              Fixed2(r.Position.Y),
			PosZ:              Fixed2(r.Position.Z),
			Motion:            Fixed4(r.Cues.Motion),
			AngularVelocity:   Fixed4(r.Cues.AngularVelocity),
			Proximity:         Fixed4(r.Cues.Proximity),
			ColorContrast:     Fixed4(r.Cues.ColorContrast),
			LuminanceContrast: Fixed4(r.Cues.LuminanceContrast),
			IsBest:            Flag(r.Best),
		})
	}
	return out
}

// NewWeightRecord converts a frame report's weights to a row.
func NewWeightRecord(report *systems.FrameReport) WeightRecord {
	w := report.Weights
	return WeightRecord{
		Frame:           report.Frame,
		WeightMotion:    Fixed4(w.Motion),
		WeightAngular:   Fixed4(w.Angular),
		WeightProximity: Fixed4(w.Proximity),
		WeightColor:     Fixed4(w.Color),
		WeightLuminance: Fixed4(w.Luminance),
	}
}
