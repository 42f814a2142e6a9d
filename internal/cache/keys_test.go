package cache

import "testing"

func TestGenerateCacheKey(t *testing.T) {
	tests := []struct {
		name        string
		serviceName string
		objectType  string
		identifier  string
		paramsKey   []string
		expectedKey string
	}{
		{
			name:        "without paramsKey",
			serviceName: "session",
			objectType:  "practice",
			identifier:  "01HGZ8VNRYXS8QKNJV5GRWPWDQ",
			expectedKey: "pdfquiz:session:practice:01HGZ8VNRYXS8QKNJV5GRWPWDQ",
		},
		{
			name:        "with empty paramsKey",
			serviceName: "session",
			objectType:  "practice",
			identifier:  "abc",
			paramsKey:   []string{},
			expectedKey: "pdfquiz:session:practice:abc",
		},
		{
			name:        "with multiple paramsKey",
			serviceName: "history",
			objectType:  "attempts",
			identifier:  "pdf-1",
			paramsKey:   []string{"page1", "desc"},
			expectedKey: "pdfquiz:history:attempts:pdf-1:page1_desc",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateCacheKey(tt.serviceName, tt.objectType, tt.identifier, tt.paramsKey...)
			if got != tt.expectedKey {
				t.Errorf("GenerateCacheKey() = %q, want %q", got, tt.expectedKey)
			}
		})
	}
}
