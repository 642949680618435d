// Package filters holds the diagnostic output hooks driven by the time
// advance loop, with the lifecycle Initialise, Update per step, and
// Finalise.
package filters

import (
	"fmt"
	"os"

	"github.com/Ehs-Dhs/Nektar/fields"
)

type Filter interface {
	Initialise(flds []fields.Field, time float64)
	Update(flds []fields.Field, time float64)
	Finalise(flds []fields.Field, time float64)
}

// HistoryPoint appends the value of one field at one quadrature point
// to a plain text file, one "time value" row per step.
type HistoryPoint struct {
	Field int
	Point int
	File  string

	fp *os.File
}

func NewHistoryPoint(field, point int, file string) *HistoryPoint {
	return &HistoryPoint{Field: field, Point: point, File: file}
}

func (h *HistoryPoint) Initialise(flds []fields.Field, time float64) {
	var err error
	if h.fp, err = os.Create(h.File); err != nil {
		panic(fmt.Errorf("unable to open history point file [%s]: %v", h.File, err))
	}
	h.Update(flds, time)
}

func (h *HistoryPoint) Update(flds []fields.Field, time float64) {
	if h.fp == nil {
		return
	}
	fmt.Fprintf(h.fp, "%v %v\n", time, flds[h.Field].GetPhys()[h.Point])
}

func (h *HistoryPoint) Finalise(flds []fields.Field, time float64) {
	if h.fp != nil {
		h.fp.Close()
		h.fp = nil
	}
}
