package cmd

import "testing"

func TestValidateOutputFlag(t *testing.T) {
	tests := []struct {
		name       string
		outputPath string
		inputCount int
		wantErr    bool
	}{
		{
			name:       "no output flag",
			outputPath: "",
			inputCount: 3,
			wantErr:    false,
		},
		{
			name:       "output with single input",
			outputPath: "lecture.md",
			inputCount: 1,
			wantErr:    false,
		},
		{
			name:       "output with multiple inputs",
			outputPath: "lecture.md",
			inputCount: 2,
			wantErr:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateOutputFlag(tt.outputPath, tt.inputCount)
			if (err != nil) != tt.wantErr {
				t.Errorf("validateOutputFlag(%q, %d) error = %v, wantErr %v",
					tt.outputPath, tt.inputCount, err, tt.wantErr)
			}
		})
	}
}
