package config

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"github.com/iswerv3ra/Esri-Market-Area-Analysis-sub005/internal/marketarea"
)

// LoadPresets reads a YAML file mapping kind names to style settings.
// Presets apply only to drafts whose spreadsheet carried no style of
// its own. Example:
//
//	zip:
//	  fill_color: "#FF9800"
//	  fill_opacity: 0.35
//	  border_color: "#E65100"
//	  border_width: 2
func LoadPresets(path string) (map[marketarea.Kind]marketarea.StyleSettings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "config: read style presets %s", path)
	}

	var raw map[string]marketarea.StyleSettings
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, eris.Wrapf(err, "config: parse style presets %s", path)
	}

	presets := make(map[marketarea.Kind]marketarea.StyleSettings, len(raw))
	for name, style := range raw {
		kind := marketarea.Kind(name)
		if !kind.Valid() {
			return nil, eris.Errorf("config: style preset for unknown kind %q", name)
		}
		presets[kind] = style
	}

	return presets, nil
}
