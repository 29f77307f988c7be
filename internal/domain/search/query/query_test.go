package query

import (
	"errors"
	"testing"

	"github.com/scholium/paperdex/internal/domain"
	"github.com/scholium/paperdex/internal/domain/item"
)

func TestNew_Defaults(t *testing.T) {
	q, err := New("mercator projection")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Limit() != DefaultLimit {
		t.Errorf("Limit = %d, want %d", q.Limit(), DefaultLimit)
	}
	if !q.IncludeText() || !q.IncludeElements() {
		t.Error("both pools should be included by default")
	}
}

func TestNew_RejectsEmptyQuery(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		if _, err := New(text); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("New(%q): expected ErrInvalidQuery, got %v", text, err)
		}
	}
}

func TestNew_LimitBounds(t *testing.T) {
	for _, limit := range []int{0, -1, 51, 1000} {
		if _, err := New("x", WithLimit(limit)); !errors.Is(err, domain.ErrInvalidQuery) {
			t.Errorf("limit %d: expected ErrInvalidQuery, got %v", limit, err)
		}
	}
	for _, limit := range []int{1, 10, 50} {
		if _, err := New("x", WithLimit(limit)); err != nil {
			t.Errorf("limit %d: unexpected error: %v", limit, err)
		}
	}
}

func TestNew_RejectsInvalidElementType(t *testing.T) {
	if _, err := New("x", WithElementType("screenshot")); !errors.Is(err, domain.ErrInvalidQuery) {
		t.Errorf("expected ErrInvalidQuery, got %v", err)
	}
	if _, err := New("x", WithElementType(item.Equation)); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestPools(t *testing.T) {
	tests := []struct {
		name string
		opts []Option
		want []item.Source
	}{
		{"default", nil, []item.Source{item.SourcePassage, item.SourceElement}},
		{"text only", []Option{WithoutElements()}, []item.Source{item.SourcePassage}},
		{"elements only", []Option{WithoutText()}, []item.Source{item.SourceElement}},
		{"neither", []Option{WithoutText(), WithoutElements()}, nil},
		{
			"element type implies element pool",
			[]Option{WithElementType(item.Figure)},
			[]item.Source{item.SourceElement},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := New("x", tt.opts...)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			got := q.Pools()
			if len(got) != len(tt.want) {
				t.Fatalf("Pools() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("Pools()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}
