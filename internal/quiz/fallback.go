package quiz

// BundledFallback returns the local question pool used whenever the
// external fetch fails, times out, or normalizes to zero valid questions
// (spec.md 4.8). Kept small and dependency-free; these never go stale in a
// way that matters, since they only appear when the real provider is
// unreachable.
func BundledFallback() []Question {
	return []Question{
		{
			ID:           "fallback_1",
			Text:         "Which shape has three sides?",
			Options:      []string{"Square", "Triangle", "Circle", "Hexagon"},
			CorrectIndex: 1,
		},
		{
			ID:           "fallback_2",
			Text:         "What is 7 + 5?",
			Options:      []string{"10", "11", "12", "13"},
			CorrectIndex: 2,
		},
		{
			ID:           "fallback_3",
			Text:         "Which planet is known as the Red Planet?",
			Options:      []string{"Venus", "Mars", "Jupiter", "Saturn"},
			CorrectIndex: 1,
		},
		{
			ID:           "fallback_4",
			Text:         "What is the opposite of \"hot\"?",
			Options:      []string{"Warm", "Cold", "Wet", "Dry"},
			CorrectIndex: 1,
		},
		{
			ID:           "fallback_5",
			Text:         "How many legs does a spider have?",
			Options:      []string{"6", "8", "10", "12"},
			CorrectIndex: 1,
		},
	}
}
