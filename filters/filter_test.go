package filters

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ehs-Dhs/Nektar/fields"
)

func TestHistoryPoint(t *testing.T) {
	var (
		dir  = t.TempDir()
		file = filepath.Join(dir, "probe.his")
		flds = []fields.Field{fields.NewExpList(2, 2, 3)}
	)

	phys := flds[0].UpdatePhys()
	phys[5] = 1.5

	h := NewHistoryPoint(0, 5, file)
	h.Initialise(flds, 0)
	phys[5] = 2.5
	h.Update(flds, 0.1)
	phys[5] = 3.5
	h.Update(flds, 0.2)
	h.Finalise(flds, 0.2)

	data, err := os.ReadFile(file)
	assert.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Equal(t, 3, len(lines)) // Initialise writes the first row
	assert.Equal(t, "0 1.5", lines[0])
	assert.Equal(t, "0.1 2.5", lines[1])
	assert.Equal(t, "0.2 3.5", lines[2])
}
