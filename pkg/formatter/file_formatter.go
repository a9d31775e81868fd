package formatter

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"filedock/pkg/storage"

	"gopkg.in/yaml.v3"
)

const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputYAML  = "yaml"
)

// SupportedOutputs lists the values accepted by --output
var SupportedOutputs = []string{OutputTable, OutputJSON, OutputYAML}

type FileFormatter struct{}

func NewFileFormatter() *FileFormatter {
	return &FileFormatter{}
}

// Format renders files as a table or as a JSON or YAML document
func (f *FileFormatter) Format(files []storage.File, output string) (string, error) {
	switch strings.ToLower(output) {
	case "", OutputTable:
		return f.FormatFileList(files), nil
	default:
		if files == nil {
			files = []storage.File{}
		}
		return encode(files, output)
	}
}

// FormatInfo renders a single file's metadata as a details view or as a JSON or YAML document
func (f *FileFormatter) FormatInfo(info storage.FileInfo, output string) (string, error) {
	switch strings.ToLower(output) {
	case "", OutputTable:
		return f.FormatFileDetails(info), nil
	default:
		return encode(info, output)
	}
}

func encode(v interface{}, output string) (string, error) {
	switch strings.ToLower(output) {
	case OutputJSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return "", fmt.Errorf("error encoding output as JSON: %w", err)
		}
		return string(data), nil
	case OutputYAML:
		data, err := yaml.Marshal(v)
		if err != nil {
			return "", fmt.Errorf("error encoding output as YAML: %w", err)
		}
		return strings.TrimRight(string(data), "\n"), nil
	default:
		return "", fmt.Errorf("unsupported output format: %s. Supported formats are: %v", output, SupportedOutputs)
	}
}

func (f *FileFormatter) FormatFileList(files []storage.File) string {
	table := NewTable([]string{"NAME", "KEY", "SIZE", "TYPE", "LAST MODIFIED", "URL"})

	for _, file := range files {
		table.AddRow([]string{
			file.Name,
			file.Key,
			storage.FormatBytes(file.Byte),
			file.Type,
			formatTime(file.LastModified),
			file.URL,
		})
	}

	return table.String()
}

func (f *FileFormatter) FormatFileDetails(info storage.FileInfo) string {
	var sb strings.Builder

	sb.WriteString(FormatHeaderSection("File: " + info.Name))
	sb.WriteString("\n\n")
	sb.WriteString(FormatSectionTitle("Overview"))
	sb.WriteString("\n")

	overview := NewTable([]string{"Parameter", "Value"})
	overview.AddRow([]string{"Bucket", info.Bucket})
	overview.AddRow([]string{"Key", info.Key})
	overview.AddRow([]string{"Size", fmt.Sprintf("%s (%d bytes)", storage.FormatBytes(info.Byte), info.Byte)})
	overview.AddRow([]string{"Content Type", info.Type})
	overview.AddRow([]string{"Last Modified", formatTime(info.LastModified)})
	overview.AddRow([]string{"Public URL", info.URL})
	sb.WriteString(overview.String())

	if info.StorageClass != "" || info.ETag != "" {
		sb.WriteString("\n\n")
		sb.WriteString(FormatSectionTitle("Storage"))
		sb.WriteString("\n")

		storageTable := NewTable([]string{"Parameter", "Value"})
		storageTable.AddRow([]string{"Storage Class", orNA(info.StorageClass)})
		storageTable.AddRow([]string{"ETag", orNA(info.ETag)})
		sb.WriteString(storageTable.String())
	}

	sb.WriteString("\n")
	return sb.String()
}

// FormatSettings renders flattened key/value pairs sorted by key
func (f *FileFormatter) FormatSettings(settings map[string]string) string {
	keys := make([]string, 0, len(settings))
	for k := range settings {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	table := NewTable([]string{"KEY", "VALUE"})
	for _, k := range keys {
		table.AddRow([]string{k, settings[k]})
	}
	return table.String()
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "N/A"
	}
	return t.UTC().Format(time.RFC3339)
}
