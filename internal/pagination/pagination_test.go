package pagination

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name         string
		in           PageRequest
		wantPage     int
		wantPageSize int
	}{
		{"zero values get defaults", PageRequest{}, 1, DefaultPageSize},
		{"explicit values kept", PageRequest{Page: 3, PageSize: 10}, 3, 10},
		{"negative page", PageRequest{Page: -2, PageSize: 5}, 1, 5},
		{"oversized page clamped", PageRequest{Page: 1, PageSize: 1000}, 1, MaxPageSize},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := tt.in
			req.Normalize()
			if req.Page != tt.wantPage || req.PageSize != tt.wantPageSize {
				t.Errorf("expected page %d size %d, got %+v", tt.wantPage, tt.wantPageSize, req)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	req := PageRequest{Page: 3, PageSize: 20}
	if got := req.Offset(); got != 40 {
		t.Errorf("expected offset 40, got %d", got)
	}
}

func TestNewPageResponse(t *testing.T) {
	t.Run("partial last page", func(t *testing.T) {
		resp := NewPageResponse([]string{"a", "b"}, 2, 2, 5)
		if resp.TotalPages != 3 {
			t.Errorf("expected 3 pages, got %d", resp.TotalPages)
		}
		if !resp.HasNext {
			t.Error("expected another page after page 2 of 3")
		}
	})

	t.Run("last page", func(t *testing.T) {
		resp := NewPageResponse([]string{"e"}, 3, 2, 5)
		if resp.HasNext {
			t.Error("expected no page after the last one")
		}
	})

	t.Run("nil data becomes empty slice", func(t *testing.T) {
		resp := NewPageResponse[int](nil, 1, 20, 0)
		if resp.Data == nil || len(resp.Data) != 0 {
			t.Errorf("expected empty non-nil data, got %v", resp.Data)
		}
		if resp.TotalPages != 0 || resp.HasNext {
			t.Errorf("expected no pages, got %+v", resp)
		}
	})
}
