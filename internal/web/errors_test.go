package web

import (
	"errors"
	"fmt"
	"testing"

	"github.com/logiprofit/freightsync/internal/engine"
)

func TestMapError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"inactive mapping", fmt.Errorf("mapping abc: %w", engine.ErrMappingInactive), "MAP001"},
		{"missing mapping", errors.New("mapping abc: not found"), "MAP002"},
		{"oversized file", engine.ErrFileTooLarge, "FILE001"},
		{"unsupported format", errors.New(`unsupported file format: "pdf"`), "FILE002"},
		{"no file", errors.New("no file provided"), "FILE003"},
		{"malformed payload", errors.New("malformed csv payload: parse error on line 3"), "FILE004"},
		{"db down", errors.New("dial tcp: connection refused"), "DB001"},
		{"cancelled", errors.New("context canceled"), "REQ001"},
		{"unknown", errors.New("something else entirely"), "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapError(tt.err); got.Code != tt.want {
				t.Errorf("mapError(%v).Code = %s, want %s", tt.err, got.Code, tt.want)
			}
		})
	}
}
