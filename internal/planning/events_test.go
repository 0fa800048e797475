package planning

import "testing"

func TestSliceSinkCollectsEventsInOrder(t *testing.T) {
	sink := &SliceSink{}
	sink.Emit(WeatherUpdateEvent{WindSpeedMs: 3})
	sink.Emit(GridEvent{Cells: []GridCell{{Index: 0}}})
	sink.Emit(AcoIterEvent{Iteration: 1})
	sink.Emit(DoneEvent{MissionLenKm: 5})

	if len(sink.Events) != 4 {
		t.Fatalf("expected 4 events, got %d", len(sink.Events))
	}
	if _, ok := sink.Events[0].(WeatherUpdateEvent); !ok {
		t.Fatalf("expected first event to be WeatherUpdateEvent, got %T", sink.Events[0])
	}
	if _, ok := sink.Events[len(sink.Events)-1].(DoneEvent); !ok {
		t.Fatalf("expected last event to be DoneEvent, got %T", sink.Events[len(sink.Events)-1])
	}
}

func TestPlannerEventVariantsAreDistinctTypes(t *testing.T) {
	var events []PlannerEvent = []PlannerEvent{
		WeatherUpdateEvent{},
		GridEvent{},
		AcoIterEvent{},
		WeatherDynamicEvent{},
		AcoErrorEvent{},
		DoneEvent{},
	}
	seen := map[string]bool{}
	for _, e := range events {
		name := typeName(e)
		if seen[name] {
			t.Fatalf("duplicate variant type %s", name)
		}
		seen[name] = true
	}
	if len(seen) != 6 {
		t.Fatalf("expected 6 distinct variants, got %d", len(seen))
	}
}

func typeName(e PlannerEvent) string {
	switch e.(type) {
	case WeatherUpdateEvent:
		return "WeatherUpdateEvent"
	case GridEvent:
		return "GridEvent"
	case AcoIterEvent:
		return "AcoIterEvent"
	case WeatherDynamicEvent:
		return "WeatherDynamicEvent"
	case AcoErrorEvent:
		return "AcoErrorEvent"
	case DoneEvent:
		return "DoneEvent"
	default:
		return "unknown"
	}
}
