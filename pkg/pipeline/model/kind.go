package model

import (
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrUnknownKind        = errors.New("unknown descriptor kind")
	ErrUnknownOutputLevel = errors.New("unknown output level")
)

// Kind tags what a descriptor is used for in a job.
type Kind string

const (
	GeneratorKind Kind = "generator"
	ReaderKind    Kind = "reader"
	ConverterKind Kind = "converter"
	FilterKind    Kind = "filter"
	MonitorKind   Kind = "monitor"
	WriterKind    Kind = "writer"
	ToolKind      Kind = "tool"
	ServiceKind   Kind = "service"
)

// Kinds lists every recognised kind in a stable order.
var Kinds = []Kind{GeneratorKind, ReaderKind, ConverterKind, FilterKind, MonitorKind, WriterKind, ToolKind, ServiceKind}

// ParseKind returns the kind named s.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds {
		if string(k) == s {
			return k, nil
		}
	}

	return "", errors.Wrapf(ErrUnknownKind, "%q", s)
}

// IsStage reports whether descriptors of this kind run once per event in the algorithm sequence.
func (k Kind) IsStage() bool {
	return k != ToolKind && k != ServiceKind && k != ""
}

// Direction is the way a data handle accesses the event store.
type Direction string

const (
	Reader Direction = "reader"
	Writer Direction = "writer"
)

// OutputLevel is the framework message verbosity.
type OutputLevel int

const (
	Verbose OutputLevel = iota + 1
	Debug
	Info
	Warning
	Error
	Fatal
	Always
)

var levelNames = map[OutputLevel]string{
	Verbose: "VERBOSE",
	Debug:   "DEBUG",
	Info:    "INFO",
	Warning: "WARNING",
	Error:   "ERROR",
	Fatal:   "FATAL",
	Always:  "ALWAYS",
}

func (l OutputLevel) String() string {
	if name, ok := levelNames[l]; ok {
		return name
	}

	return "INFO"
}

// ParseOutputLevel accepts level names in any case.
func ParseOutputLevel(s string) (OutputLevel, error) {
	up := strings.ToUpper(strings.TrimSpace(s))
	for lvl, name := range levelNames {
		if name == up {
			return lvl, nil
		}
	}

	return 0, errors.Wrapf(ErrUnknownOutputLevel, "%q", s)
}

// MarshalYAML implements yaml.Marshaler.
func (l OutputLevel) MarshalYAML() (interface{}, error) {
	return l.String(), nil
}

// UnmarshalText implements encoding.TextUnmarshaler, which the yaml decoder honours.
func (l *OutputLevel) UnmarshalText(text []byte) error {
	lvl, err := ParseOutputLevel(string(text))
	if err != nil {
		return err
	}

	*l = lvl

	return nil
}
