package mdhtml

import "testing"

func TestNewDocument(t *testing.T) {
	raw := "# Fase 1\n\nIntro que se descarta\n\n## Objetivo\nTexto"

	tests := []struct {
		name   string
		anchor string
		offset int
		body   string
	}{
		{
			name:   "anchor found",
			anchor: "## Objetivo",
			offset: 33,
			body:   "## Objetivo\nTexto",
		},
		{
			name:   "anchor missing",
			anchor: "## Alcance",
			offset: 0,
			body:   raw,
		},
		{
			name:   "empty anchor",
			anchor: "",
			offset: 0,
			body:   raw,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := NewDocument(raw, tt.anchor)
			if doc.Offset != tt.offset {
				t.Errorf("Offset: got %d, want %d", doc.Offset, tt.offset)
			}
			if doc.Body() != tt.body {
				t.Errorf("Body: got %q, want %q", doc.Body(), tt.body)
			}
		})
	}
}
