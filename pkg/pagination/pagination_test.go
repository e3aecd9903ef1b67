package pagination

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func ctxWithQuery(query string) echo.Context {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/?"+query, nil)
	return e.NewContext(req, httptest.NewRecorder())
}

func TestFromContext(t *testing.T) {
	cases := []struct {
		query      string
		wantLimit  int
		wantOffset int
	}{
		{"", DefaultLimit, 0},
		{"limit=10&offset=40", 10, 40},
		{"limit=1000", MaxLimit, 0},
		{"limit=-5&offset=-1", DefaultLimit, 0},
	}
	for _, tc := range cases {
		p := FromContext(ctxWithQuery(tc.query))
		if p.Limit != tc.wantLimit || p.Offset != tc.wantOffset {
			t.Errorf("query %q: got %+v, want limit=%d offset=%d", tc.query, p, tc.wantLimit, tc.wantOffset)
		}
	}
}

func TestNewResponse_HasMore(t *testing.T) {
	if r := NewResponse(nil, 100, 20, 0); !r.HasMore {
		t.Error("expected HasMore at offset 0 of 100")
	}
	if r := NewResponse(nil, 100, 20, 80); r.HasMore {
		t.Error("did not expect HasMore on final page")
	}
}
