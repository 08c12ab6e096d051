package playground

import (
	"testing"

	"github.com/simukka/sprechstimme-playground/audio"
	"github.com/simukka/sprechstimme-playground/script"
)

// TestExamples tests that every built-in example runs and makes sound.
func TestExamples(t *testing.T) {
	want := []string{"basic", "chord", "melody", "synthesis", "arpeggio", "sequence"}
	if len(Examples) != len(want) {
		t.Fatalf("Expected %d examples, got %d", len(want), len(Examples))
	}
	for i, ex := range Examples {
		if ex.Name != want[i] {
			t.Errorf("Expected example %d to be %s, got %s", i, want[i], ex.Name)
		}
		t.Run(ex.Name, func(t *testing.T) {
			res, err := script.Run(ex.Source)
			if err != nil {
				t.Fatalf("Expected the example to run, got %v", err)
			}
			if len(res.Events) == 0 {
				t.Errorf("Expected events")
			}
			if len(res.Output) == 0 {
				t.Errorf("Expected printed output")
			}
			for _, ev := range res.Events {
				if err := ev.Validate(); err != nil {
					t.Errorf("Expected valid events, got %v", err)
				}
			}
		})
	}
}

// TestExamples_Content spot checks what a few examples produce.
func TestExamples_Content(t *testing.T) {
	ex, ok := Lookup("chord")
	if !ok {
		t.Fatal("Expected the chord example")
	}
	res, err := script.Run(ex.Source)
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Events) != 1 || !res.Events[0].Chord || len(res.Events[0].Notes) != 3 {
		t.Errorf("Expected one three note chord, got %v", res.Events)
	}

	ex, _ = Lookup("synthesis")
	res, err = script.Run(ex.Source)
	if err != nil {
		t.Fatal(err)
	}
	var shapes []audio.WaveShape
	for _, ev := range res.Events {
		if !ev.IsRest() {
			shapes = append(shapes, ev.Shape)
		}
	}
	if len(shapes) != 4 || shapes[0] != audio.Sine || shapes[3] != audio.Triangle {
		t.Errorf("Expected one note per wave shape, got %v", shapes)
	}

	ex, _ = Lookup("sequence")
	res, err = script.Run(ex.Source)
	if err != nil {
		t.Fatal(err)
	}
	if res.WaveShape != audio.Square || res.Volume == nil || *res.Volume != 0.4 || res.Tempo != 100 {
		t.Errorf("Expected square at 0.4 and tempo 100, got %s %v %v", res.WaveShape, res.Volume, res.Tempo)
	}
	if !res.Events[2].IsRest() {
		t.Errorf("Expected the third step to rest, got %v", res.Events[2])
	}

	if _, ok := Lookup("missing"); ok {
		t.Errorf("Expected no example named missing")
	}
}
