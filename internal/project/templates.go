package project

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"text/template"

	"gopkg.in/yaml.v3"
)

//go:embed templates/singlefile-header.yml
var configHeaderTemplate string

// headerData contains data for rendering the config header comment.
type headerData struct {
	FileName   string
	Template   string
	OutputDir  string
	OutputFile string
}

// WriteConfig writes the project as singlefile.yml with a descriptive header.
// It refuses to overwrite an existing file.
func (p *Project) WriteConfig() error {
	path := filepath.Join(p.Path, ProjectFileName)
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	tmpl, err := template.New("header").Parse(configHeaderTemplate)
	if err != nil {
		return fmt.Errorf("parsing template: %w", err)
	}

	var buf bytes.Buffer
	err = tmpl.Execute(&buf, headerData{
		FileName:   ProjectFileName,
		Template:   p.Template,
		OutputDir:  p.OutputDir,
		OutputFile: p.OutputFile,
	})
	if err != nil {
		return fmt.Errorf("executing template: %w", err)
	}

	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(p); err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding project: %w", err)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing %s: %w", ProjectFileName, err)
	}
	return nil
}
