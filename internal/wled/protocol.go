// Package wled implements the subset of the WLED JSON API used to paint a
// matrix pixel by pixel.
//
// The controller exposes its state at POST http://<host>/json/state.
//
// Message format:
//
//	{"on": true, "tt": 0, "bri": 255, "seg": {"frz": false, "i": [...]}}
//
// The "i" list starts with the index of the first pixel the message covers,
// followed by the flattened commands of one segment:
//   - individual pixel: index, [r,g,b]
//   - range:            start, end, [r,g,b]   (end exclusive)
//
// Tuples carry no tag. A reader tells them apart by the JSON type of the
// element after an index: a color closes an individual pixel, a second
// number starts a range.
package wled

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/jwulff/img2wled/internal/domain"
	"github.com/jwulff/img2wled/internal/encoder"
)

// MaxBrightness is the highest brightness the controller accepts.
const MaxBrightness = 255

// StateCommand is the body of a POST /json/state request.
type StateCommand struct {
	On         bool         `json:"on"`
	Transition int          `json:"tt"`
	Brightness int          `json:"bri"`
	Segment    SegmentState `json:"seg"`
}

// SegmentState is the "seg" object of a state command.
type SegmentState struct {
	Frozen bool  `json:"frz"`
	Items  []any `json:"i"`
}

// StateOptions configures the display parameters sent with every segment.
type StateOptions struct {
	On bool
	// Transition is the transition time in milliseconds.
	Transition int
	Brightness int
	Frozen     bool
}

// DefaultStateOptions returns the options used when none are given: light
// on, full brightness, no transition, not frozen.
func DefaultStateOptions() StateOptions {
	return StateOptions{
		On:         true,
		Transition: 0,
		Brightness: MaxBrightness,
		Frozen:     false,
	}
}

// CreateStateCommand renders one segment into a state command.
func CreateStateCommand(seg encoder.Segment, opts *StateOptions) StateCommand {
	o := DefaultStateOptions()
	if opts != nil {
		o = *opts
	}

	return StateCommand{
		On:         o.On,
		Transition: max(o.Transition, 0),
		Brightness: clampBrightness(o.Brightness),
		Segment: SegmentState{
			Frozen: o.Frozen,
			Items:  EncodeItems(seg),
		},
	}
}

// EncodeItems flattens a segment into the "i" item list.
func EncodeItems(seg encoder.Segment) []any {
	items := make([]any, 0, 1+seg.Cost())
	items = append(items, seg.Start())

	for _, c := range seg {
		switch c := c.(type) {
		case encoder.Individual:
			items = append(items, c.Index, c.Color)
		case encoder.Range:
			items = append(items, c.Start, c.End, c.Color)
		default:
			panic(fmt.Sprintf("wled: unknown command type %T", c))
		}
	}

	return items
}

// ParseItems is the inverse of EncodeItems. It checks that the leading index
// matches the first command.
func ParseItems(items []json.RawMessage) (encoder.Segment, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("empty item list")
	}

	var first int
	if err := json.Unmarshal(items[0], &first); err != nil {
		return nil, fmt.Errorf("invalid start index: %w", err)
	}

	var seg encoder.Segment
	for i := 1; i < len(items); {
		var start int
		if err := json.Unmarshal(items[i], &start); err != nil {
			return nil, fmt.Errorf("item %d: expected pixel index: %w", i, err)
		}
		if i+1 >= len(items) {
			return nil, fmt.Errorf("item %d: truncated command", i)
		}

		if isColor(items[i+1]) {
			var c domain.RGB
			if err := json.Unmarshal(items[i+1], &c); err != nil {
				return nil, fmt.Errorf("item %d: %w", i+1, err)
			}
			seg = append(seg, encoder.Individual{Index: start, Color: c})
			i += 2
			continue
		}

		var end int
		if err := json.Unmarshal(items[i+1], &end); err != nil {
			return nil, fmt.Errorf("item %d: expected range end: %w", i+1, err)
		}
		if i+2 >= len(items) {
			return nil, fmt.Errorf("item %d: truncated range", i)
		}
		var c domain.RGB
		if err := json.Unmarshal(items[i+2], &c); err != nil {
			return nil, fmt.Errorf("item %d: %w", i+2, err)
		}
		if end-start < 2 {
			return nil, fmt.Errorf("item %d: range %d..%d is shorter than 2 pixels", i, start, end)
		}
		seg = append(seg, encoder.Range{Start: start, End: end, Color: c})
		i += 3
	}

	if len(seg) > 0 && seg.Start() != first {
		return nil, fmt.Errorf("start index %d does not match first command at %d", first, seg.Start())
	}
	return seg, nil
}

// ParseStateCommand decodes a state command body back into its options and
// segment.
func ParseStateCommand(data []byte) (StateOptions, encoder.Segment, error) {
	var wire struct {
		On         bool `json:"on"`
		Transition int  `json:"tt"`
		Brightness int  `json:"bri"`
		Segment    struct {
			Frozen bool              `json:"frz"`
			Items  []json.RawMessage `json:"i"`
		} `json:"seg"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return StateOptions{}, nil, fmt.Errorf("failed to decode state: %w", err)
	}

	seg, err := ParseItems(wire.Segment.Items)
	if err != nil {
		return StateOptions{}, nil, fmt.Errorf("failed to parse segment items: %w", err)
	}

	opts := StateOptions{
		On:         wire.On,
		Transition: wire.Transition,
		Brightness: wire.Brightness,
		Frozen:     wire.Segment.Frozen,
	}
	return opts, seg, nil
}

func isColor(raw json.RawMessage) bool {
	return bytes.HasPrefix(bytes.TrimSpace(raw), []byte("["))
}

func clampBrightness(brightness int) int {
	return min(max(brightness, 0), MaxBrightness)
}
