package search

import "testing"

func TestExtractKeywords_DropsStopwords(t *testing.T) {
	got := ExtractKeywords("what papers include Adam Stewart somehow?")
	want := "papers Adam Stewart"
	if got != want {
		t.Errorf("ExtractKeywords = %q, want %q", got, want)
	}
}

func TestExtractKeywords_KeepsProperNouns(t *testing.T) {
	// "The" is a stopword but carries an uppercase letter, so it survives:
	// capitalization is the proper-noun heuristic and always wins.
	got := ExtractKeywords("The Mercator projection")
	want := "The Mercator projection"
	if got != want {
		t.Errorf("ExtractKeywords = %q, want %q", got, want)
	}
}

func TestExtractKeywords_AllStopwords(t *testing.T) {
	// Nothing survives filtering: the original query comes back unchanged
	// rather than an empty search string.
	q := "what is this about"
	if got := ExtractKeywords(q); got != q {
		t.Errorf("ExtractKeywords = %q, want original %q", got, q)
	}
}

func TestExtractKeywords_PunctuationTokenization(t *testing.T) {
	got := ExtractKeywords("oblique mercator, projection equations!")
	want := "oblique mercator projection equations"
	if got != want {
		t.Errorf("ExtractKeywords = %q, want %q", got, want)
	}
}

func TestExtractKeywords_PreservesOrder(t *testing.T) {
	got := ExtractKeywords("how does the coordinate transformation work")
	want := "coordinate transformation work"
	if got != want {
		t.Errorf("ExtractKeywords = %q, want %q", got, want)
	}
}

func TestExtractKeywords_Deterministic(t *testing.T) {
	q := "which figures describe glacier monitoring in Greenland?"
	first := ExtractKeywords(q)
	for i := 0; i < 5; i++ {
		if got := ExtractKeywords(q); got != first {
			t.Fatalf("ExtractKeywords not deterministic: %q vs %q", got, first)
		}
	}
}
