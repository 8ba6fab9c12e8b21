package llm

import "testing"

func TestChunkText(t *testing.T) {
	tests := []struct {
		chunk string
		want  string
	}{
		{`{"choices":[{"text":"Paris"}]}`, "Paris"},
		{`{"choices":[{"text":""}]}`, ""},
		{`{"choices":[]}`, ""},
		{`{"id":"x"}`, ""},
		{`not json`, ""},
		{``, ""},
	}
	for _, tc := range tests {
		if got := ChunkText([]byte(tc.chunk)); got != tc.want {
			t.Errorf("ChunkText(%q) = %q, want %q", tc.chunk, got, tc.want)
		}
	}
}

func TestApplyLoadOptions(t *testing.T) {
	if ApplyLoadOptions().GPULayers != nil {
		t.Error("expected no gpu layers by default")
	}
	o := ApplyLoadOptions(WithGPULayers(32))
	if o.GPULayers == nil || *o.GPULayers != 32 {
		t.Errorf("expected 32 gpu layers, got %v", o.GPULayers)
	}
}

func TestBackend(t *testing.T) {
	if BackendLocal.IsRemote() {
		t.Error("local is not remote")
	}
	for _, b := range []Backend{BackendKoboldcpp, BackendGoinfer, BackendOllama} {
		if !b.IsRemote() {
			t.Errorf("%s must be remote", b)
		}
	}
	if len(Backends) != 4 {
		t.Errorf("expected 4 backends, got %d", len(Backends))
	}
}
