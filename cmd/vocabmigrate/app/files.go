package app

import (
	"bytes"
	"encoding/json"
	"io"
	"os"
	"path/filepath"

	"github.com/goccy/go-yaml"

	"github.com/agentstation/vocab/pkg/constants"
	"github.com/agentstation/vocab/pkg/errors"
	"github.com/agentstation/vocab/pkg/unify"
	"github.com/agentstation/vocab/pkg/vocabulary"
)

// readFile reads path. A missing file is reported as a NotFoundError.
func readFile(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, errors.NewNotFoundError("file", path)
	}
	if err != nil {
		return nil, errors.WrapIO("read", path, err)
	}
	return data, nil
}

// readRaws reads every input file and concatenates their records in
// argument order. A file holds a JSON array of records or an object with
// the records under one of the list keys.
func readRaws(paths []string) ([]unify.Raw, error) {
	var out []unify.Raw
	for _, path := range paths {
		data, err := readFile(path)
		if err != nil {
			return nil, err
		}
		raws, err := decodeRaws(data)
		if err != nil {
			return nil, errors.WrapParse("json", path, err)
		}
		out = append(out, raws...)
	}
	return out, nil
}

func decodeRaws(data []byte) ([]unify.Raw, error) {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '[' {
		var raws []unify.Raw
		if err := json.Unmarshal(data, &raws); err != nil {
			return nil, err
		}
		return raws, nil
	}

	var wrapper map[string]json.RawMessage
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, err
	}
	for _, key := range constants.RecordListKeys {
		if list, ok := wrapper[key]; ok {
			var raws []unify.Raw
			if err := json.Unmarshal(list, &raws); err != nil {
				return nil, err
			}
			return raws, nil
		}
	}
	return nil, errors.NewValidationError("items", nil, "no record list found")
}

func readCollection(path string) (*vocabulary.Collection, error) {
	data, err := readFile(path)
	if err != nil {
		return nil, err
	}
	var c vocabulary.Collection
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, errors.WrapParse("json", path, err)
	}
	return &c, nil
}

// writeJSON writes v as indented JSON to path, or to w when path is "-".
func writeJSON(w io.Writer, path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeOutput(w, path, append(data, '\n'))
}

// writeYAML writes v as YAML to path, or to w when path is "-".
func writeYAML(w io.Writer, path string, v any) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return writeOutput(w, path, data)
}

func writeOutput(w io.Writer, path string, data []byte) error {
	if path == constants.StdioPath {
		_, err := w.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), constants.DirPermissions); err != nil {
		return errors.WrapIO("mkdir", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, constants.FilePermissions); err != nil {
		return errors.WrapIO("write", path, err)
	}
	return nil
}
