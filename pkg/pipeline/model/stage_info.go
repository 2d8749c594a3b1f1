package model

// HandleInfo describes one data handle of a descriptor.
type HandleInfo struct {
	Name      string
	Direction Direction
	Path      string
}

// StageInfo is the read-only view of a descriptor handed to pipeline options.
type StageInfo struct {
	Kind  Kind
	Type  string
	Name  string
	Index int
	// Handles includes the handles of the tools the descriptor references.
	Handles []HandleInfo
}

// Reads returns the paths read by the stage.
func (s *StageInfo) Reads() []string {
	return s.paths(Reader)
}

// Writes returns the paths written by the stage.
func (s *StageInfo) Writes() []string {
	return s.paths(Writer)
}

func (s *StageInfo) paths(dir Direction) []string {
	var res []string
	for _, h := range s.Handles {
		if h.Direction == dir && h.Path != "" {
			res = append(res, h.Path)
		}
	}

	return res
}
