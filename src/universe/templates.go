package universe

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//Template represent the seeding template which can used to settle the universe with predefined data
type Template struct {
	Name        string  `yaml:"name"`  //template name
	Descr       string  `yaml:"descr"` //template descr
	Coordinates [][]int `yaml:"cells"` //array of [x,y] coordinates
}

// BuiltinTemplates returns the patterns every universe knows about.
func BuiltinTemplates() []Template {
	return []Template{
		{"block", "2x2 still life", [][]int{{0, 0}, {1, 0}, {0, 1}, {1, 1}}},
		{"blinker", "period 2 oscillator", [][]int{{1, 0}, {1, 1}, {1, 2}}},
		{"glider", "moves by (1,1) every 4 generations", [][]int{{1, 0}, {2, 1}, {0, 2}, {1, 2}, {2, 2}}},
		{"testSample1", "the test sample with 3 stable patterns", [][]int{
			{1, 1}, {1, 2},
			{2, 1}, {2, 2},
			{3, 3},
			{4, 2},
			{4, 3},
			{5, 3},
		}},
	}
}

// ParseTemplates decodes a YAML list of templates:
//
//	- name: glider
//	  descr: moves diagonally
//	  cells: [[1, 0], [2, 1], [0, 2], [1, 2], [2, 2]]
func ParseTemplates(data []byte) ([]Template, error) {
	var list []Template
	if err := yaml.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	for i, t := range list {
		if t.Name == "" {
			return nil, fmt.Errorf("parse templates: template #%d has no name", i+1)
		}
		for _, c := range t.Coordinates {
			if len(c) != 2 {
				return nil, fmt.Errorf("parse templates: %s: coordinate %v is not an [x, y] pair", t.Name, c)
			}
		}
	}
	return list, nil
}

// LoadTemplates reads a YAML template file, see ParseTemplates.
func LoadTemplates(filename string) ([]Template, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}
	return ParseTemplates(data)
}
