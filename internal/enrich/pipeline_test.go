package enrich

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

type PipelineItem struct {
	mu      sync.Mutex
	Results map[string]any
}

func NewPipelineItem() *PipelineItem {
	return &PipelineItem{Results: make(map[string]any)}
}

func (p *PipelineItem) set(key string, val any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Results[key] = val
}

func StepAddFoo(_ context.Context, item *PipelineItem) error {
	item.set("foo", "bar")
	return nil
}

func StepAddValue(key string, val any) Step[PipelineItem] {
	return func(ctx context.Context, item *PipelineItem) error {
		item.set(key, val)
		return nil
	}
}

func StepError(_ context.Context, _ *PipelineItem) error {
	return errors.New("mock step failed")
}

func TestPipeline_Process(t *testing.T) {
	tests := []struct {
		name     string
		stages   []Stage[PipelineItem]
		input    *PipelineItem
		expected map[string]any
	}{
		{
			name:   "single step adds foo",
			stages: []Stage[PipelineItem]{NewStage(StepAddFoo)},
			input:  NewPipelineItem(),
			expected: map[string]any{
				"foo": "bar",
			},
		},
		{
			name: "two steps in one stage run in parallel",
			stages: []Stage[PipelineItem]{
				NewStage(
					StepAddValue("x", 1),
					StepAddValue("y", 2),
				),
			},
			input: NewPipelineItem(),
			expected: map[string]any{
				"x": 1,
				"y": 2,
			},
		},
		{
			name: "multi-stage sequential dependency",
			stages: []Stage[PipelineItem]{
				NewStage(StepAddValue("a", "first")),
				NewStage(StepAddValue("b", "second")),
			},
			input: NewPipelineItem(),
			expected: map[string]any{
				"a": "first",
				"b": "second",
			},
		},
		{
			name: "step error does not break pipeline",
			stages: []Stage[PipelineItem]{
				NewStage(StepError),
				NewStage(StepAddValue("ok", true)),
			},
			input: NewPipelineItem(),
			expected: map[string]any{
				"ok": true,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), time.Second)
			defer cancel()

			in := make(chan *PipelineItem, 1)
			in <- tt.input
			close(in)

			p := NewPipeline(zerolog.Nop(), tt.stages...)
			if err := p.Process(ctx, in); err != nil {
				t.Fatalf("Process returned %v", err)
			}

			if !reflect.DeepEqual(tt.input.Results, tt.expected) {
				t.Errorf("got %+v, expected %+v", tt.input.Results, tt.expected)
			}
		})
	}
}

func TestPipeline_StageOrdering(t *testing.T) {
	read := func(_ context.Context, item *PipelineItem) error {
		item.mu.Lock()
		defer item.mu.Unlock()
		item.Results["seen"] = item.Results["a"]
		return nil
	}
	item := NewPipelineItem()
	in := make(chan *PipelineItem, 1)
	in <- item
	close(in)

	p := NewPipeline(zerolog.Nop(), NewStage(StepAddValue("a", 42)), NewStage[PipelineItem](read))
	if err := p.Process(context.Background(), in); err != nil {
		t.Fatal(err)
	}

	if item.Results["seen"] != 42 {
		t.Errorf("second stage saw %v; want 42", item.Results["seen"])
	}
}

func TestPipeline_CanceledContextSkipsSteps(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	item := NewPipelineItem()
	in := make(chan *PipelineItem, 1)
	in <- item
	close(in)

	err := NewPipeline(zerolog.Nop(), NewStage(StepAddFoo)).Process(ctx, in)

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("got %v; want context.Canceled", err)
	}
	if len(item.Results) != 0 {
		t.Errorf("steps ran on canceled context: %v", item.Results)
	}
}

func TestPipeline_ProcessSlice(t *testing.T) {
	items := make([]PipelineItem, 3)
	for i := range items {
		items[i].Results = make(map[string]any)
	}

	p := NewPipeline(zerolog.Nop(), NewStage(StepAddFoo))
	if err := p.ProcessSlice(context.Background(), items); err != nil {
		t.Fatal(err)
	}

	for i := range items {
		if items[i].Results["foo"] != "bar" {
			t.Errorf("item %d not processed: %v", i, items[i].Results)
		}
	}
	if p.Len() != 1 {
		t.Errorf("Len() = %d; want 1", p.Len())
	}
}
