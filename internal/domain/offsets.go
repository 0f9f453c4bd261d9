package domain

import (
	"fmt"

	"github.com/spf13/afero"
	"gopkg.in/yaml.v3"
)

// defaultRegionalOffsets is the hand-maintained table for the Fiji dataset.
// Values come from the published timetable; edit here when it changes.
var defaultRegionalOffsets = []RegionalOffset{
	{Areas: []string{"Rakiraki", "Dobuilevu", "Navua"}, OffsetMinutes: 1},
	{Areas: []string{"Tavua"}, OffsetMinutes: 2},
	{Areas: []string{"Ba", "Varavu", "Rarawai"}, OffsetMinutes: 3},
	{Areas: []string{"Lautoka", "Sabeto", "Nadi", "Maro", "Sigatoka"}, OffsetMinutes: 4},
	{Areas: []string{"Levuka"}, OffsetMinutes: -1},
	{Areas: []string{"Savusavu", "Labasa"}, OffsetMinutes: -4},
	{Areas: []string{"Taveuni", "Rabi", "Moala"}, OffsetMinutes: -6},
	{Areas: []string{"Lakeba"}, OffsetMinutes: -11},
}

// DefaultRegionalOffsets returns a copy of the built-in table.
func DefaultRegionalOffsets() []RegionalOffset {
	out := make([]RegionalOffset, len(defaultRegionalOffsets))
	for i, o := range defaultRegionalOffsets {
		out[i] = RegionalOffset{
			Areas:         append([]string(nil), o.Areas...),
			OffsetMinutes: o.OffsetMinutes,
		}
	}
	return out
}

type offsetsFile struct {
	RegionalOffsets []RegionalOffset `yaml:"regional_offsets"`
}

// LoadRegionalOffsets reads a replacement offset table from a YAML file:
//
//	regional_offsets:
//	  - areas: [Tavua]
//	    offset_minutes: 2
func LoadRegionalOffsets(fs afero.Fs, path string) ([]RegionalOffset, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("read regional offsets: %w", err)
	}

	var f offsetsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse regional offsets %s: %w", path, err)
	}
	if len(f.RegionalOffsets) == 0 {
		return nil, fmt.Errorf("regional offsets %s: no entries", path)
	}
	for i, o := range f.RegionalOffsets {
		if len(o.Areas) == 0 {
			return nil, fmt.Errorf("regional offsets %s: entry %d: no areas", path, i)
		}
		for _, a := range o.Areas {
			if a == "" {
				return nil, fmt.Errorf("regional offsets %s: entry %d: empty area name", path, i)
			}
		}
	}
	return f.RegionalOffsets, nil
}
