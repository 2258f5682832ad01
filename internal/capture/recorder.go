package capture

import "github.com/dls-controls/homing-convert/internal/offsets"

// Builder is the capability set a homing definition script exercises: open a
// PLC, open groups inside it, declare motors inside a group. The Recorder
// implementation below captures the calls into a Registry; the real new-API
// runtime implements the same shape and writes controller text instead.
type Builder interface {
	OpenPLC(num int, controller ControllerType, filepath string, timeout int) PLCScope
}

type PLCScope interface {
	OpenGroup(num int, opts GroupOptions) GroupScope
	Close()
}

type GroupScope interface {
	Motor(axis, jdist int) *Motor
	MotorWithPost(axis, jdist int, post PostToken) *Motor
	Close()
}

// GroupOptions carries the optional arguments of the legacy group construct.
// Zero values mean "not supplied"; a missing Post defaults to no disposition.
type GroupOptions struct {
	Sequence SequenceRef
	Post     PostToken
	Pre      string
	Comment  string
}

// Recorder records script side effects into a Registry. Legacy scripts are
// historical artifacts that must convert as-is, so no entry point rejects
// input: unknown tokens are stored verbatim and classified later by the
// generator.
type Recorder struct {
	registry *Registry
}

func NewRecorder(registry *Registry) *Recorder {
	return &Recorder{registry: registry}
}

func (r *Recorder) OpenPLC(num int, controller ControllerType, filepath string, timeout int) PLCScope {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	plc := &PLC{
		Number:     num,
		Controller: controller,
		Filepath:   filepath,
		Timeout:    timeout,
		Groups:     map[int]*Group{},
	}
	r.registry.plcs = append(r.registry.plcs, plc)
	return &plcScope{registry: r.registry, plc: plc}
}

type plcScope struct {
	registry *Registry
	plc      *PLC
	closed   bool
}

func (s *plcScope) OpenGroup(num int, opts GroupOptions) GroupScope {
	group, ok := s.plc.Groups[num]
	if !ok {
		group = &Group{
			Number:   num,
			Sequence: opts.Sequence,
			Pre:      opts.Pre,
			Post:     opts.Post,
			Comment:  opts.Comment,
			// Non-nil so a motorless group still encodes as an array.
			Motors: []*Motor{},
		}
		if group.Post.Raw == "" && !group.Post.Numeric {
			group.Post.Absent = true
		}
		s.plc.Groups[num] = group
	}
	return &groupScope{registry: s.registry, plc: s.plc, group: group}
}

func (s *plcScope) Close() {
	s.closed = true
}

type groupScope struct {
	registry *Registry
	plc      *PLC
	group    *Group
	closed   bool
}

func (s *groupScope) Motor(axis, jdist int) *Motor {
	return s.MotorWithPost(axis, jdist, NoPost())
}

func (s *groupScope) MotorWithPost(axis, jdist int, post PostToken) *Motor {
	index := s.registry.nextMotorIndex()
	motor := &Motor{
		Axis:    axis,
		Jdist:   jdist,
		Index:   index,
		Post:    post,
		Nx:      offsets.Nx(axis),
		Offsets: computeOffsets(s.plc.Number, index),
	}
	s.group.Motors = append(s.group.Motors, motor)
	return motor
}

func (s *groupScope) Close() {
	s.closed = true
}
