// internal/modelfile/modelfile.go
package modelfile

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"pairdp/core/alphabet"
	"pairdp/core/model"
)

// File is the YAML description of a pair-HMM.
type File struct {
	Name        string           `yaml:"name" validate:"required"`
	Alphabet    AlphabetSpec     `yaml:"alphabet"`
	Second      *AlphabetSpec    `yaml:"second,omitempty"`
	States      []StateSpec      `yaml:"states" validate:"required,min=1,dive"`
	Transitions []TransitionSpec `yaml:"transitions" validate:"required,min=1,dive"`
}

// AlphabetSpec names an alphabet. Tokens may be left out for the built-in
// DNA and PROTEIN alphabets.
type AlphabetSpec struct {
	Name   string `yaml:"name" validate:"required"`
	Tokens string `yaml:"tokens,omitempty"`
}

// StateSpec is one state. Advance defaults to [1,1]; [0,0] declares a
// silent state, which must not list emissions. Background holds the
// null-model weights used by the odds score types.
type StateSpec struct {
	Name       string             `yaml:"name" validate:"required,excludesall= \t"`
	Advance    []int              `yaml:"advance,omitempty" validate:"omitempty,len=2,dive,oneof=0 1"`
	Emissions  map[string]float64 `yaml:"emissions,omitempty" validate:"dive,gte=0"`
	Background map[string]float64 `yaml:"background,omitempty" validate:"dive,gte=0"`
}

type TransitionSpec struct {
	From   string  `yaml:"from" validate:"required"`
	To     string  `yaml:"to" validate:"required"`
	Weight float64 `yaml:"weight" validate:"gte=0"`
}

// Loaded is a built model plus where it came from.
type Loaded struct {
	Model  *model.Model
	File   File
	Path   string
	Digest string // sha256 of the file bytes, hex
}

var ErrInvalid = errors.New("invalid model file")

// sentinel aliases accepted in transitions
var aliases = map[string]bool{
	"_start_": true, "_end_": true, "_START_": true, "_END_": true, model.MagicalName: true,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Load reads, validates and builds a model file.
func Load(path string) (*Loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	l, err := Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	l.Path = path
	return l, nil
}

// Decode parses YAML from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Loaded, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if err := rejectNullKeys(data); err != nil {
		return nil, err
	}
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	m, err := Build(f)
	if err != nil {
		return nil, err
	}
	sum := sha256.Sum256(data)
	return &Loaded{Model: m, File: f, Digest: hex.EncodeToString(sum[:])}, nil
}

// Build turns a File into a validated model.
func Build(f File) (*model.Model, error) {
	if err := validate.Struct(f); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	first, err := f.Alphabet.resolve()
	if err != nil {
		return nil, err
	}
	second := first
	if f.Second != nil {
		if second, err = f.Second.resolve(); err != nil {
			return nil, err
		}
	}
	cp := alphabet.NewCrossProduct(first, second)
	m := model.New(f.Name, cp)

	for _, ss := range f.States {
		if aliases[ss.Name] {
			return nil, fmt.Errorf("%w: state name %q is reserved", ErrInvalid, ss.Name)
		}
		adv := [2]int{1, 1}
		if len(ss.Advance) == 2 {
			adv = [2]int{ss.Advance[0], ss.Advance[1]}
		}
		s, err := m.AddState(ss.Name, adv)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
		}
		if !s.Emitting() && (len(ss.Emissions) > 0 || len(ss.Background) > 0) {
			return nil, fmt.Errorf("%w: silent state %q lists emissions", ErrInvalid, ss.Name)
		}
		if err := setPairs(m, cp, ss.Name, ss.Emissions, func(p alphabet.Pair, w float64) error {
			return m.SetEmission(s, p, w)
		}); err != nil {
			return nil, err
		}
		if err := setPairs(m, cp, ss.Name, ss.Background, func(p alphabet.Pair, w float64) error {
			return m.SetNullEmission(s, p, w)
		}); err != nil {
			return nil, err
		}
	}

	for i, ts := range f.Transitions {
		from, err := lookup(m, ts.From)
		if err != nil {
			return nil, fmt.Errorf("%w: transition %d: %v", ErrInvalid, i+1, err)
		}
		to, err := lookup(m, ts.To)
		if err != nil {
			return nil, fmt.Errorf("%w: transition %d: %v", ErrInvalid, i+1, err)
		}
		if err := m.SetTransition(from, to, ts.Weight); err != nil {
			return nil, fmt.Errorf("%w: transition %s->%s: %v", ErrInvalid, ts.From, ts.To, err)
		}
	}
	if err := m.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return m, nil
}

// rejectNullKeys fails on mapping keys that YAML reads as null (a bare
// `null:` or `~:`). The strict decoder drops those without complaint.
func rejectNullKeys(data []byte) error {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	var walk func(n *yaml.Node) error
	walk = func(n *yaml.Node) error {
		if n.Kind == yaml.MappingNode {
			for i := 0; i+1 < len(n.Content); i += 2 {
				if k := n.Content[i]; k.Tag == "!!null" {
					return fmt.Errorf("%w: line %d: null mapping key %q", ErrInvalid, k.Line, k.Value)
				}
			}
		}
		for _, c := range n.Content {
			if err := walk(c); err != nil {
				return err
			}
		}
		return nil
	}
	return walk(&root)
}

func setPairs(m *model.Model, cp *alphabet.CrossProduct, state string, ws map[string]float64, set func(alphabet.Pair, float64) error) error {
	for tok, w := range ws {
		p, err := cp.ParsePair(tok)
		if err != nil {
			return fmt.Errorf("%w: state %q: %v", ErrInvalid, state, err)
		}
		if err := set(p, w); err != nil {
			return fmt.Errorf("%w: state %q: %v", ErrInvalid, state, err)
		}
	}
	return nil
}

func lookup(m *model.Model, name string) (*model.State, error) {
	if aliases[name] {
		return m.Magical(), nil
	}
	if s, ok := m.State(name); ok {
		return s, nil
	}
	return nil, fmt.Errorf("unknown state %q", name)
}

func (a AlphabetSpec) resolve() (*alphabet.Alphabet, error) {
	if a.Tokens == "" {
		switch strings.ToUpper(a.Name) {
		case "DNA":
			return alphabet.DNA, nil
		case "PROTEIN":
			return alphabet.Protein, nil
		}
		return nil, fmt.Errorf("%w: alphabet %q needs tokens", ErrInvalid, a.Name)
	}
	al, err := alphabet.New(a.Name, a.Tokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return al, nil
}

// Digest hashes a model file without building it.
func Digest(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}
