package solver

import (
	"fmt"
	"os"

	"github.com/ghodss/yaml"

	"github.com/Ehs-Dhs/Nektar/fields"
)

// YAMLCheckpoint writes field snapshots as <name>_<n>.chk YAML files:
// the time stamp plus the physical values of every variable.
type YAMLCheckpoint struct {
	Name string
}

type checkpointFile struct {
	Time      float64              `json:"time"`
	Variables []string             `json:"variables"`
	Fields    map[string][]float64 `json:"fields"`
}

func (c *YAMLCheckpoint) Write(nchk int, flds []fields.Field, variables []string, time float64) error {
	chk := checkpointFile{
		Time:      time,
		Variables: variables,
		Fields:    make(map[string][]float64, len(flds)),
	}
	for i, f := range flds {
		name := fmt.Sprintf("field%d", i)
		if i < len(variables) {
			name = variables[i]
		}
		phys := make([]float64, f.GetTotPoints())
		copy(phys, f.GetPhys())
		chk.Fields[name] = phys
	}

	data, err := yaml.Marshal(&chk)
	if err != nil {
		return err
	}
	return os.WriteFile(fmt.Sprintf("%s_%d.chk", c.Name, nchk), data, 0644)
}

// CountingCheckpoint records checkpoint calls without touching the
// filesystem.
type CountingCheckpoint struct {
	Calls []int
	Times []float64
}

func (c *CountingCheckpoint) Write(nchk int, flds []fields.Field, variables []string, time float64) error {
	c.Calls = append(c.Calls, nchk)
	c.Times = append(c.Times, time)
	return nil
}
