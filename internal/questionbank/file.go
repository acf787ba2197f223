package questionbank

import (
	"bytes"
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/intervue/internal/interview"
)

//go:embed schema.json
var schemaJSON []byte

const schemaURL = "schema://intervue/questions.json"

var (
	compileOnce sync.Once
	compiled    *jsonschema.Schema
	compileErr  error
)

func questionSchema() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaJSON))
		if err != nil {
			compileErr = fmt.Errorf("parse question schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(schemaURL, doc); err != nil {
			compileErr = fmt.Errorf("add question schema: %w", err)
			return
		}
		compiled, compileErr = c.Compile(schemaURL)
	})
	return compiled, compileErr
}

// Format is the encoding of a question file.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format from the file extension. Anything other
// than .json is treated as YAML, which is a superset of JSON anyway.
func FormatFromPath(path string) Format {
	if strings.EqualFold(filepath.Ext(path), ".json") {
		return FormatJSON
	}
	return FormatYAML
}

type fileDoc struct {
	Questions []fileQuestion `json:"questions"`
}

type fileQuestion struct {
	ID         string               `json:"id"`
	Text       string               `json:"text"`
	Difficulty interview.Difficulty `json:"difficulty"`
	TimeLimit  int                  `json:"timeLimit"`
}

// Parse decodes and validates a question document. Missing time limits
// default per difficulty; the result is sequenced easy to hard.
func Parse(data []byte, format Format) ([]interview.Question, error) {
	jsonData := data
	if format == FormatYAML {
		var doc any
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse question yaml: %w", err)
		}
		b, err := json.Marshal(doc)
		if err != nil {
			return nil, fmt.Errorf("convert question yaml: %w", err)
		}
		jsonData = b
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("parse question json: %w", err)
	}
	sch, err := questionSchema()
	if err != nil {
		return nil, err
	}
	if err := sch.Validate(inst); err != nil {
		return nil, fmt.Errorf("question file does not match schema: %w", err)
	}

	var doc fileDoc
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return nil, fmt.Errorf("decode questions: %w", err)
	}

	qs := make([]interview.Question, 0, len(doc.Questions))
	for _, fq := range doc.Questions {
		limit := fq.TimeLimit
		if limit == 0 {
			limit = DefaultTimeLimit(fq.Difficulty)
		}
		qs = append(qs, interview.Question{
			ID:               fq.ID,
			Text:             strings.TrimSpace(fq.Text),
			Difficulty:       fq.Difficulty,
			TimeLimitSeconds: limit,
		})
	}
	Sequence(qs)
	if err := interview.ValidateQuestions(qs); err != nil {
		return nil, err
	}
	return qs, nil
}

// File reads questions from a YAML or JSON file on every call, so edits
// take effect for the next interview without a restart.
type File struct {
	Path string
}

func (f File) Questions(ctx context.Context) ([]interview.Question, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read question file: %w", err)
	}
	qs, err := Parse(data, FormatFromPath(f.Path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	return qs, nil
}

// New returns a File source for path, or Builtin when path is empty.
func New(path string) Source {
	if path == "" {
		return Builtin{}
	}
	return File{Path: path}
}
