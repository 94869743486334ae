package jobs

import (
	"errors"
	"testing"
)

func TestValidatePayload(t *testing.T) {
	tests := []struct {
		name     string
		pipeline string
		payload  string
		wantErr  error
	}{
		{"collectr inline", PipelineCollectionImport, `{"platform":"collectr","csv":"a,b\n"}`, nil},
		{"tcgplayer file", PipelineCollectionImport, `{"platform":"tcgplayer","file_path":"exports/export.csv"}`, nil},
		{"absolute file path", PipelineCollectionImport, `{"platform":"tcgplayer","file_path":"/etc/passwd"}`, ErrInvalidPayload},
		{"file path escapes", PipelineMarketPriceImport, `{"file_path":"../x.csv"}`, ErrInvalidPayload},
		{"file path escapes after clean", PipelineMarketPriceImport, `{"file_path":"exports/../../x.csv"}`, ErrInvalidPayload},
		{"unknown platform", PipelineCollectionImport, `{"platform":"ebay","csv":"x"}`, ErrInvalidPayload},
		{"no source", PipelineCollectionImport, `{"platform":"collectr"}`, ErrInvalidPayload},
		{"both sources", PipelineCollectionImport, `{"platform":"collectr","csv":"x","file_path":"y"}`, ErrInvalidPayload},
		{"extra field", PipelineCollectionImport, `{"platform":"collectr","csv":"x","admin":true}`, ErrInvalidPayload},
		{"price guide", PipelineMarketPriceImport, `{"source":"pricecharting","csv":"x"}`, nil},
		{"not json", PipelineMarketPriceImport, `{`, ErrInvalidPayload},
		{"unknown pipeline", "inventory_sync", `{}`, ErrUnknownPipeline},
		{"message schema is not a pipeline", schemaJobMessage, `{"job_id":"x"}`, ErrUnknownPipeline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePayload(tt.pipeline, []byte(tt.payload))
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("ValidatePayload() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ValidatePayload() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestJobMessageSchema(t *testing.T) {
	if err := validate(schemaJobMessage, []byte(`{"job_id":"5b3c1c1e-8f4e-4a43-9b1d-6a3f0f1d2c10"}`)); err != nil {
		t.Errorf("valid message rejected: %v", err)
	}
	if err := validate(schemaJobMessage, []byte(`{"job_id":"not-a-uuid"}`)); err == nil {
		t.Error("message with bad job_id accepted")
	}
}

func TestEveryPipelineHasSchema(t *testing.T) {
	for _, p := range Pipelines {
		if _, ok := compiledSchemas[p]; !ok {
			t.Errorf("no schema for pipeline %s", p)
		}
	}
}
