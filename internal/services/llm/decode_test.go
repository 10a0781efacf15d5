package llm

import "testing"

func TestDecodeLLMJSON(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{"plain", `{"ok":true}`, false},
		{"code fence", "```json\n{\"ok\":true}\n```", false},
		{"prose around object", `Sure! Here you go: {"ok":true} Hope that helps.`, false},
		{"empty", "  ", true},
		{"not json", "definitely not json", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out struct {
				OK bool `json:"ok"`
			}
			err := DecodeLLMJSON(tt.content, &out)
			if (err != nil) != tt.wantErr {
				t.Fatalf("DecodeLLMJSON err = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !out.OK {
				t.Fatal("expected ok=true")
			}
		})
	}
}
