package analyze

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xeipuuv/gojsonschema"
)

// ErrInputNotFound is returned when a collection has no input file.
var ErrInputNotFound = errors.New("input file not found")

//go:embed input_schema.json
var inputSchema string

// Input is a collection's configuration record.
type Input struct {
	ChallengeInfo ChallengeInfo `json:"challenge_info"`
	Documents     []DocumentRef `json:"documents" validate:"dive"`
	Persona       Persona       `json:"persona"`
	JobToBeDone   JobToBeDone   `json:"job_to_be_done"`
}

// ChallengeInfo identifies the collection run.
type ChallengeInfo struct {
	ChallengeID  string `json:"challenge_id"`
	TestCaseName string `json:"test_case_name,omitempty"`
	Description  string `json:"description,omitempty"`
}

// DocumentRef names one document of the collection.
type DocumentRef struct {
	Filename string `json:"filename" validate:"required"`
	Title    string `json:"title,omitempty"`
}

// Persona is free-form: an unknown role only scores zero.
type Persona struct {
	Role string `json:"role"`
}

// JobToBeDone is the task the persona is working on.
type JobToBeDone struct {
	Task string `json:"task"`
}

// Filenames lists the input documents in input order.
func (in *Input) Filenames() []string {
	out := make([]string, 0, len(in.Documents))
	for _, d := range in.Documents {
		out = append(out, d.Filename)
	}
	return out
}

// LoadInput reads and validates a collection input file.
func LoadInput(path string) (*Input, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("%w: %s", ErrInputNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("read input: %w", err)
	}
	return ParseInput(data)
}

// ParseInput validates raw JSON against the input schema and decodes it.
func ParseInput(data []byte) (*Input, error) {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(inputSchema),
		gojsonschema.NewBytesLoader(data),
	)
	if err != nil {
		return nil, fmt.Errorf("validate input: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			field := desc.Field()
			if field == "" {
				field = "(root)"
			}
			msgs = append(msgs, field+": "+desc.Description())
		}
		return nil, fmt.Errorf("invalid input: %s", strings.Join(msgs, "; "))
	}

	var in Input
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, fmt.Errorf("decode input: %w", err)
	}
	if err := validator.New().Struct(&in); err != nil {
		return nil, fmt.Errorf("invalid input: %w", err)
	}
	return &in, nil
}
