package script

import (
	"fmt"
	"math"
	"strings"

	"github.com/simukka/sprechstimme-playground/audio"
	"github.com/simukka/sprechstimme-playground/common"
)

// maxRange caps the length of range().
const maxRange = 10000

var builtins map[string]*builtin

func init() {
	builtins = map[string]*builtin{
		"print":        {name: "print", fn: builtinPrint},
		"range":        {name: "range", fn: builtinRange},
		"len":          {name: "len", fn: builtinLen},
		"str":          {name: "str", fn: builtinStr},
		"notes":        {name: "notes", fn: builtinNotes},
		"shuffle":      {name: "shuffle", fn: builtinShuffle},
		"rest":         {name: "rest", fn: builtinRest},
		"play_note":    {name: "play_note", fn: builtinPlayNote},
		"play_chord":   {name: "play_chord", fn: builtinPlayChord},
		"play_melody":  {name: "play_melody", fn: builtinPlayMelody},
		"play_pattern": {name: "play_pattern", fn: builtinPlayPattern},
		"set_volume":   {name: "set_volume", fn: builtinSetVolume},
		"set_wave":     {name: "set_wave", fn: builtinSetWave},
	}
}

// modules are the importable modules, built fresh for every run.
var modules = map[string]func() *module{
	"sprechstimme": sprechstimmeModule,
}

func sprechstimmeModule() *module {
	waves := &module{name: "sprechstimme.waves", attrs: map[string]Value{}}
	for _, w := range audio.WaveShapes() {
		waves.attrs[string(w)] = w
	}
	return &module{
		name: "sprechstimme",
		attrs: map[string]Value{
			"new":    &builtin{name: "new", fn: spNew},
			"create": &builtin{name: "create", fn: spCreate},
			"play":   &builtin{name: "play", fn: spPlay},
			"waves":  waves,
		},
	}
}

// get returns positional argument i, or the keyword argument name.
func (c *call) get(i int, name string) (Value, bool) {
	if i < len(c.args) {
		return c.args[i], true
	}
	v, ok := c.kwargs[name]
	return v, ok
}

func (c *call) require(i int, name string) (Value, error) {
	v, ok := c.get(i, name)
	if !ok {
		return nil, errorf(c.pos, "%s() missing argument %q", c.name, name)
	}
	return v, nil
}

// params checks the argument count and keyword names against the
// parameter list.
func (c *call) params(names ...string) error {
	if len(c.args) > len(names) {
		return errorf(c.pos, "%s() takes at most %d arguments (%d given)", c.name, len(names), len(c.args))
	}
	for kw := range c.kwargs {
		found := false
		for i, n := range names {
			if n == kw {
				if i < len(c.args) {
					return errorf(c.pos, "%s() got multiple values for %q", c.name, kw)
				}
				found = true
			}
		}
		if !found {
			return errorf(c.pos, "%s() got an unexpected keyword argument %q", c.name, kw)
		}
	}
	return nil
}

func (c *call) number(i int, name string, def float64) (float64, error) {
	v, ok := c.get(i, name)
	if !ok {
		return def, nil
	}
	f, ok := v.(float64)
	if !ok {
		return 0, errorf(c.pos, "%s() argument %q must be a number, not %s", c.name, name, typeName(v))
	}
	return f, nil
}

func (c *call) duration(i int, name string, def float64) (float64, error) {
	d, err := c.number(i, name, def)
	if err != nil {
		return 0, err
	}
	return checkDuration(c.pos, d)
}

func checkDuration(pos Pos, d float64) (float64, error) {
	if !(d > 0) || math.IsInf(d, 0) {
		return 0, &Error{Pos: pos, Msg: fmt.Sprintf("duration %s", formatNumber(d)), Err: audio.ErrInvalidDuration}
	}
	return d, nil
}

func noteName(pos Pos, v Value) (string, error) {
	s, ok := v.(string)
	if !ok {
		return "", errorf(pos, "note must be a string like 'C4', not %s", typeName(v))
	}
	return s, nil
}

func noteNames(pos Pos, v Value) ([]string, error) {
	l, ok := v.(*list)
	if !ok {
		return nil, errorf(pos, "expected a list of notes, not %s", typeName(v))
	}
	names := make([]string, len(l.elems))
	for i, e := range l.elems {
		n, err := noteName(pos, e)
		if err != nil {
			return nil, err
		}
		names[i] = n
	}
	return names, nil
}

// eventFor turns a note or a collection of notes into a pattern step.
func eventFor(pos Pos, notes Value, d float64) (audio.Event, error) {
	if _, ok := notes.(*list); ok {
		names, err := noteNames(pos, notes)
		if err != nil {
			return audio.Event{}, err
		}
		return audio.Chord(names, d), nil
	}
	name, err := noteName(pos, notes)
	if err != nil {
		return audio.Event{}, err
	}
	return audio.Note(name, d), nil
}

func waveShape(pos Pos, v Value) (audio.WaveShape, error) {
	switch w := v.(type) {
	case audio.WaveShape:
		return w, nil
	case string:
		shape, err := audio.ParseWaveShape(w)
		if err != nil {
			return "", &Error{Pos: pos, Msg: "wave", Err: err}
		}
		return shape, nil
	}
	return "", errorf(pos, "expected a wave shape, not %s", typeName(v))
}

func builtinPrint(in *interp, c *call) (Value, error) {
	sep := " "
	for kw, v := range c.kwargs {
		if kw != "sep" && kw != "end" {
			return nil, errorf(c.pos, "print() got an unexpected keyword argument %q", kw)
		}
		if kw == "sep" {
			sep = str(v)
		}
	}
	parts := make([]string, len(c.args))
	for i, a := range c.args {
		parts[i] = str(a)
	}
	in.res.Output = append(in.res.Output, strings.Join(parts, sep))
	return nil, nil
}

func builtinRange(in *interp, c *call) (Value, error) {
	if len(c.args) == 0 || len(c.args) > 3 || len(c.kwargs) > 0 {
		return nil, errorf(c.pos, "range() takes 1 to 3 positional arguments")
	}
	bounds := make([]int, len(c.args))
	for i, a := range c.args {
		n, err := toInt(c.pos, a)
		if err != nil {
			return nil, err
		}
		bounds[i] = n
	}
	start, stop, step := 0, bounds[0], 1
	if len(bounds) > 1 {
		start, stop = bounds[0], bounds[1]
	}
	if len(bounds) > 2 {
		step = bounds[2]
	}
	if step == 0 {
		return nil, errorf(c.pos, "range() step must not be zero")
	}
	var elems []Value
	for i := start; (step > 0 && i < stop) || (step < 0 && i > stop); i += step {
		if len(elems) >= maxRange {
			return nil, &Error{Pos: c.pos, Msg: fmt.Sprintf("range longer than %d", maxRange), Err: ErrLimit}
		}
		elems = append(elems, float64(i))
	}
	return &list{elems: elems}, nil
}

func builtinLen(in *interp, c *call) (Value, error) {
	if err := c.params("obj"); err != nil {
		return nil, err
	}
	v, err := c.require(0, "obj")
	if err != nil {
		return nil, err
	}
	switch v := v.(type) {
	case *list:
		return float64(len(v.elems)), nil
	case string:
		return float64(len([]rune(v))), nil
	}
	return nil, errorf(c.pos, "object of type %s has no len()", typeName(v))
}

func builtinStr(in *interp, c *call) (Value, error) {
	if err := c.params("obj"); err != nil {
		return nil, err
	}
	v, ok := c.get(0, "obj")
	if !ok {
		return "", nil
	}
	return str(v), nil
}

// builtinNotes lists the playable note names, lowest first.
func builtinNotes(in *interp, c *call) (Value, error) {
	if err := c.params(); err != nil {
		return nil, err
	}
	names := audio.Notes()
	elems := make([]Value, len(names))
	for i, n := range names {
		elems[i] = n
	}
	return &list{elems: elems}, nil
}

// builtinShuffle returns a shuffled copy; the same seed gives the same
// order every run.
func builtinShuffle(in *interp, c *call) (Value, error) {
	if err := c.params("items", "seed"); err != nil {
		return nil, err
	}
	v, err := c.require(0, "items")
	if err != nil {
		return nil, err
	}
	l, ok := v.(*list)
	if !ok {
		return nil, errorf(c.pos, "shuffle() needs a list, not %s", typeName(v))
	}
	var seed uint32
	if s, ok := c.get(1, "seed"); ok {
		switch s := s.(type) {
		case float64:
			seed = uint32(int64(s))
		case string:
			seed = common.SeedFromString(s)
		default:
			return nil, errorf(c.pos, "shuffle() seed must be a number or a string")
		}
	}
	elems := append([]Value(nil), l.elems...)
	common.NewSeededRNG(seed).Shuffle(len(elems), func(i, j int) {
		elems[i], elems[j] = elems[j], elems[i]
	})
	return &list{elems: elems}, nil
}

func builtinRest(in *interp, c *call) (Value, error) {
	if err := c.params("duration"); err != nil {
		return nil, err
	}
	d, err := c.duration(0, "duration", 0.5)
	if err != nil {
		return nil, err
	}
	return nil, in.emit(c.pos, audio.Rest(d))
}

func builtinPlayNote(in *interp, c *call) (Value, error) {
	if err := c.params("note", "duration"); err != nil {
		return nil, err
	}
	v, err := c.require(0, "note")
	if err != nil {
		return nil, err
	}
	name, err := noteName(c.pos, v)
	if err != nil {
		return nil, err
	}
	d, err := c.duration(1, "duration", 0.5)
	if err != nil {
		return nil, err
	}
	return nil, in.emit(c.pos, audio.Note(name, d))
}

func builtinPlayChord(in *interp, c *call) (Value, error) {
	if err := c.params("notes", "duration"); err != nil {
		return nil, err
	}
	v, err := c.require(0, "notes")
	if err != nil {
		return nil, err
	}
	names, err := noteNames(c.pos, v)
	if err != nil {
		return nil, err
	}
	d, err := c.duration(1, "duration", 1.0)
	if err != nil {
		return nil, err
	}
	return nil, in.emit(c.pos, audio.Chord(names, d))
}

func builtinPlayMelody(in *interp, c *call) (Value, error) {
	if err := c.params("notes", "durations"); err != nil {
		return nil, err
	}
	nv, err := c.require(0, "notes")
	if err != nil {
		return nil, err
	}
	names, err := noteNames(c.pos, nv)
	if err != nil {
		return nil, err
	}
	dv, err := c.require(1, "durations")
	if err != nil {
		return nil, err
	}
	dl, ok := dv.(*list)
	if !ok {
		return nil, errorf(c.pos, "play_melody() durations must be a list")
	}
	if len(dl.elems) != len(names) {
		return nil, &Error{
			Pos: c.pos,
			Msg: fmt.Sprintf("%d notes, %d durations", len(names), len(dl.elems)),
			Err: audio.ErrLengthMismatch,
		}
	}
	events := make([]audio.Event, len(names))
	for i, name := range names {
		f, ok := dl.elems[i].(float64)
		if !ok {
			return nil, errorf(c.pos, "duration %d must be a number", i+1)
		}
		d, err := checkDuration(c.pos, f)
		if err != nil {
			return nil, err
		}
		events[i] = audio.Note(name, d)
	}
	for _, ev := range events {
		if err := in.emit(c.pos, ev); err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// builtinPlayPattern takes a list of (note or [notes], duration) pairs.
func builtinPlayPattern(in *interp, c *call) (Value, error) {
	if err := c.params("events", "tempo"); err != nil {
		return nil, err
	}
	v, err := c.require(0, "events")
	if err != nil {
		return nil, err
	}
	l, ok := v.(*list)
	if !ok {
		return nil, errorf(c.pos, "play_pattern() needs a list of (note, duration) pairs")
	}
	tempo, err := c.number(1, "tempo", audio.DefaultTempo)
	if err != nil {
		return nil, err
	}
	if !(tempo > 0) || math.IsInf(tempo, 0) {
		return nil, &Error{Pos: c.pos, Msg: fmt.Sprintf("tempo %s", formatNumber(tempo)), Err: audio.ErrInvalidTempo}
	}
	events := make([]audio.Event, len(l.elems))
	for i, e := range l.elems {
		pair, ok := e.(*list)
		if !ok || len(pair.elems) != 2 {
			return nil, errorf(c.pos, "pattern step %d must be a (note, duration) pair", i+1)
		}
		f, ok := pair.elems[1].(float64)
		if !ok {
			return nil, errorf(c.pos, "pattern step %d duration must be a number", i+1)
		}
		d, err := checkDuration(c.pos, f)
		if err != nil {
			return nil, err
		}
		if pair.elems[0] == nil {
			events[i] = audio.Rest(d)
			continue
		}
		if events[i], err = eventFor(c.pos, pair.elems[0], d); err != nil {
			return nil, err
		}
	}
	for _, ev := range events {
		if err := in.emit(c.pos, ev); err != nil {
			return nil, err
		}
	}
	in.res.Tempo = tempo
	return nil, nil
}

func builtinSetVolume(in *interp, c *call) (Value, error) {
	if err := c.params("level"); err != nil {
		return nil, err
	}
	if _, err := c.require(0, "level"); err != nil {
		return nil, err
	}
	level, err := c.number(0, "level", 0)
	if err != nil {
		return nil, err
	}
	in.res.Volume = &level
	return nil, nil
}

func builtinSetWave(in *interp, c *call) (Value, error) {
	if err := c.params("shape"); err != nil {
		return nil, err
	}
	v, err := c.require(0, "shape")
	if err != nil {
		return nil, err
	}
	shape, err := waveShape(c.pos, v)
	if err != nil {
		return nil, err
	}
	in.shape = shape
	in.res.WaveShape = shape
	return nil, nil
}

func spNew(in *interp, c *call) (Value, error) {
	if err := c.params("name"); err != nil {
		return nil, err
	}
	v, err := c.require(0, "name")
	if err != nil {
		return nil, err
	}
	name, ok := v.(string)
	if !ok {
		return nil, errorf(c.pos, "synth name must be a string")
	}
	if _, ok := in.synths[name]; !ok {
		in.synths[name] = audio.Sine
	}
	return nil, nil
}

// spCreate configures a synth's wave shape. Other synthesis options are
// accepted and ignored.
func spCreate(in *interp, c *call) (Value, error) {
	if len(c.args) > 1 {
		return nil, errorf(c.pos, "create() takes the synth name and keyword options")
	}
	v, err := c.require(0, "name")
	if err != nil {
		return nil, err
	}
	name, ok := v.(string)
	if !ok {
		return nil, errorf(c.pos, "synth name must be a string")
	}
	shape := audio.Sine
	if wv, ok := c.kwargs["wavetype"]; ok {
		if shape, err = waveShape(c.pos, wv); err != nil {
			return nil, err
		}
	}
	in.synths[name] = shape
	return nil, nil
}

func spPlay(in *interp, c *call) (Value, error) {
	if err := c.params("name", "notes", "duration"); err != nil {
		return nil, err
	}
	v, err := c.require(0, "name")
	if err != nil {
		return nil, err
	}
	name, _ := v.(string)
	shape, ok := in.synths[name]
	if !ok {
		return nil, errorf(c.pos, "synth %s was not created; call sp.new(%s) first", repr(v), repr(v))
	}
	notes, err := c.require(1, "notes")
	if err != nil {
		return nil, err
	}
	d, err := c.duration(2, "duration", 1.0)
	if err != nil {
		return nil, err
	}
	ev, err := eventFor(c.pos, notes, d)
	if err != nil {
		return nil, err
	}
	ev.Shape = shape
	return nil, in.emit(c.pos, ev)
}
