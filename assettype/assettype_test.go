package assettype

import "testing"

func TestDetect(t *testing.T) {
	table := Default()

	tests := []struct {
		name string
		file string
		want Type
	}{
		{"texture lowercase", "rock.png", Texture},
		{"texture uppercase extension", "rock.PNG", Texture},
		{"model", "hero.glb", Model},
		{"shader", "water.shader", Shader},
		{"text doc", "notes.txt", TextDoc},
		{"unknown extension", "data.bin", Undefined},
		{"no extension", "README", Undefined},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := table.Detect(tt.file); got != tt.want {
				t.Errorf("Detect(%q) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
}

func TestDetectWithCustomTable(t *testing.T) {
	table := Table{".custom": Model}
	if got := table.Detect("thing.custom"); got != Model {
		t.Errorf("Detect() = %v, want Model", got)
	}
	if got := table.Detect("thing.png"); got != Undefined {
		t.Errorf("Detect() = %v, want Undefined for an extension not in a custom table", got)
	}
}

func TestTypeString(t *testing.T) {
	tests := map[Type]string{
		Undefined: "UNDEFINED",
		Model:     "MODEL",
		Shader:    "SHADER",
		Texture:   "TEXTURE",
		TextDoc:   "TEXT_DOC",
	}
	for typ, want := range tests {
		if got := typ.String(); got != want {
			t.Errorf("%v.String() = %q, want %q", int(typ), got, want)
		}
	}
}
