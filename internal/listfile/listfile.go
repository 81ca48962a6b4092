package listfile

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"stowaway/internal/catalog"
	"stowaway/internal/fileutil"
	"stowaway/internal/services"
)

// Format selects the on-disk encoding.
type Format string

const (
	FormatXML  Format = "xml"
	FormatYAML Format = "yaml"
)

// FormatFor picks the encoding from the file extension; anything other than
// .yaml or .yml is XML.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatXML
	}
}

type xmlDocument struct {
	XMLName xml.Name  `xml:"Files"`
	Files   []xmlFile `xml:"File"`
}

type xmlFile struct {
	No                       int    `xml:"No"`
	FileName                 string `xml:"FileName"`
	HasPayload               string `xml:"HasPayload"`
	PayloadFileName          string `xml:"PayloadFileName"`
	GeneratedPayloadFileName string `xml:"GeneratedPayloadFileName"`
	Uploaded                 string `xml:"Uploaded"`
	Description              string `xml:"Description"`
}

type yamlDocument struct {
	Files []yamlFile `yaml:"files"`
}

type yamlFile struct {
	No            int    `yaml:"no"`
	FileName      string `yaml:"file_name"`
	HasPayload    string `yaml:"has_payload"`
	PayloadFile   string `yaml:"payload_file,omitempty"`
	GeneratedFile string `yaml:"generated_file,omitempty"`
	Uploaded      string `yaml:"uploaded"`
	Description   string `yaml:"description,omitempty"`
}

// Load reads entries from path. A missing file yields an empty list.
func Load(path string) ([]catalog.Entry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, services.Wrap(services.ErrIO, "listfile", "load", fmt.Sprintf("read %s", path), err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	entries, err := Decode(data, FormatFor(path))
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, "listfile", "load", fmt.Sprintf("parse %s", path), err)
	}
	return entries, nil
}

// Save writes entries to path atomically, creating parent directories.
func Save(path string, entries []catalog.Entry) error {
	data, err := Encode(entries, FormatFor(path))
	if err != nil {
		return services.Wrap(services.ErrIO, "listfile", "save", "encode list", err)
	}
	if err := fileutil.WriteFileAtomic(path, data, 0o644); err != nil {
		return services.Wrap(services.ErrIO, "listfile", "save", fmt.Sprintf("write %s", path), err)
	}
	return nil
}

// Decode parses a list document.
func Decode(data []byte, format Format) ([]catalog.Entry, error) {
	var entries []catalog.Entry
	switch format {
	case FormatYAML:
		var doc yamlDocument
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		for _, f := range doc.Files {
			entries = append(entries, catalog.Entry{
				HostPath:      f.FileName,
				HasPayload:    parseBool(f.HasPayload),
				PayloadPath:   f.PayloadFile,
				GeneratedPath: f.GeneratedFile,
				Uploaded:      parseBool(f.Uploaded),
				Description:   f.Description,
			})
		}
	default:
		var doc xmlDocument
		if err := xml.Unmarshal(data, &doc); err != nil {
			return nil, err
		}
		for _, f := range doc.Files {
			entries = append(entries, catalog.Entry{
				HostPath:      f.FileName,
				HasPayload:    parseBool(f.HasPayload),
				PayloadPath:   f.PayloadFileName,
				GeneratedPath: f.GeneratedPayloadFileName,
				Uploaded:      parseBool(f.Uploaded),
				Description:   f.Description,
			})
		}
	}
	for i := range entries {
		entries[i].Sequence = i + 1
	}
	return entries, nil
}

// Encode renders entries, numbering them 1..N.
func Encode(entries []catalog.Entry, format Format) ([]byte, error) {
	switch format {
	case FormatYAML:
		doc := yamlDocument{Files: make([]yamlFile, 0, len(entries))}
		for i, e := range entries {
			doc.Files = append(doc.Files, yamlFile{
				No:            i + 1,
				FileName:      e.HostPath,
				HasPayload:    strconv.FormatBool(e.HasPayload),
				PayloadFile:   e.PayloadPath,
				GeneratedFile: e.GeneratedPath,
				Uploaded:      strconv.FormatBool(e.Uploaded),
				Description:   e.Description,
			})
		}
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(&doc); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		doc := xmlDocument{Files: make([]xmlFile, 0, len(entries))}
		for i, e := range entries {
			doc.Files = append(doc.Files, xmlFile{
				No:                       i + 1,
				FileName:                 e.HostPath,
				HasPayload:               strconv.FormatBool(e.HasPayload),
				PayloadFileName:          e.PayloadPath,
				GeneratedPayloadFileName: e.GeneratedPath,
				Uploaded:                 strconv.FormatBool(e.Uploaded),
				Description:              e.Description,
			})
		}
		body, err := xml.MarshalIndent(&doc, "", "  ")
		if err != nil {
			return nil, err
		}
		out := make([]byte, 0, len(xml.Header)+len(body)+1)
		out = append(out, xml.Header...)
		out = append(out, body...)
		return append(out, '\n'), nil
	}
}

// parseBool accepts true/false in any case; everything else is false.
func parseBool(raw string) bool {
	return strings.EqualFold(strings.TrimSpace(raw), "true")
}
