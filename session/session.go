package session

import (
	"fmt"
	"io/ioutil"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
)

// Session holds the parsed contents of a YAML session file: the solver
// parameters, solver info properties, optional tags, analytic function
// definitions and filter requests.
type Session struct {
	name string

	Parameters map[string]float64           `yaml:"Parameters"`
	SolverInfo map[string]string            `yaml:"SolverInfo"`
	Tags       map[string]string            `yaml:"Tags"`
	Functions  map[string]map[string]string `yaml:"Functions"`
	Variables  []string                     `yaml:"Variables"`
	Filters    []FilterSpec                 `yaml:"Filters"`
}

// FilterSpec names a diagnostic filter and its parameters.
type FilterSpec struct {
	Type   string             `yaml:"Type"`
	Params map[string]float64 `yaml:"Params"`
	File   string             `yaml:"File"`
}

func New(name string, data []byte) (s *Session, err error) {
	s = &Session{name: name}
	if err = yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("unable to parse session [%s]: %v", name, err)
	}
	return
}

// LoadFile reads a session from disk; the session name is the file name
// stripped of its directory and extension.
func LoadFile(path string) (s *Session, err error) {
	var data []byte
	if data, err = ioutil.ReadFile(path); err != nil {
		return
	}
	base := filepath.Base(path)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	return New(name, data)
}

func (s *Session) Name() string { return s.name }

// LoadParameter returns the named parameter, or def when the session
// does not define it. Lookup is case insensitive.
func (s *Session) LoadParameter(name string, def float64) float64 {
	for k, v := range s.Parameters {
		if strings.EqualFold(k, name) {
			return v
		}
	}
	return def
}

// LoadIntParameter is LoadParameter for integer valued parameters.
func (s *Session) LoadIntParameter(name string, def int) int {
	return int(s.LoadParameter(name, float64(def)))
}

// MatchSolverInfo reports whether the given SOLVERINFO property is set
// to value, comparing case insensitively.
func (s *Session) MatchSolverInfo(property, value string) bool {
	for k, v := range s.SolverInfo {
		if strings.EqualFold(k, property) {
			return strings.EqualFold(v, value)
		}
	}
	return false
}

// GetSolverInfo returns the raw value of a SOLVERINFO property.
func (s *Session) GetSolverInfo(property string) (string, bool) {
	for k, v := range s.SolverInfo {
		if strings.EqualFold(k, property) {
			return v, true
		}
	}
	return "", false
}

func (s *Session) DefinesTag(name string) bool {
	_, ok := s.tag(name)
	return ok
}

func (s *Session) GetTag(name string) string {
	v, _ := s.tag(name)
	return v
}

func (s *Session) tag(name string) (string, bool) {
	for k, v := range s.Tags {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}

// DefinesFunction reports whether the session carries an analytic
// function definition, e.g. a BodyForce.
func (s *Session) DefinesFunction(name string) bool {
	for k := range s.Functions {
		if strings.EqualFold(k, name) {
			return true
		}
	}
	return false
}

func (s *Session) Print() {
	fmt.Printf("\"%s\"\t\t= Session\n", s.name)
	for k, v := range s.Parameters {
		fmt.Printf("%8.5f\t\t= %s\n", v, k)
	}
	for k, v := range s.SolverInfo {
		fmt.Printf("[%s]\t\t= %s\n", v, k)
	}
}
