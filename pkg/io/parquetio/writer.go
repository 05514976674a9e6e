package parquetio

import (
	"encoding/json"
	"fmt"

	iox "github.com/wdm0006/loanprep/pkg/io/ioutils"
	"github.com/wdm0006/loanprep/pkg/io/jsonlio"
	"github.com/wdm0006/loanprep/pkg/frame"
	local "github.com/xitongsys/parquet-go-source/local"
	pw "github.com/xitongsys/parquet-go/writer"
)

func parquetSchemaJSON(s frame.Schema) string {
	// Build a minimal JSON schema for parquet-go JSONWriter
	type field struct {
		Tag string `json:"Tag"`
	}
	type schema struct {
		Tag    string  `json:"Tag"`
		Fields []field `json:"Fields"`
	}
	sc := schema{Tag: "name=schema, repetitiontype=REQUIRED"}
	for _, cs := range s.Columns {
		tag := "name=" + cs.Name + ", repetitiontype=OPTIONAL, type="
		switch cs.Type {
		case frame.KindFloat:
			tag += "DOUBLE"
		case frame.KindInt:
			tag += "INT64"
		case frame.KindBool:
			tag += "BOOLEAN"
		default:
			tag += "BYTE_ARRAY, convertedtype=UTF8"
		}
		sc.Fields = append(sc.Fields, field{Tag: tag})
	}
	b, _ := json.Marshal(sc)
	return string(b)
}

// WriteAll writes a Frame to a Parquet file using parquet-go JSONWriter.
func WriteAll(path string, f *frame.Frame) error {
	if err := iox.EnsureParentDir(path); err != nil {
		return err
	}
	fw, err := local.NewLocalFileWriter(path)
	if err != nil {
		return err
	}
	writer, err := pw.NewJSONWriter(parquetSchemaJSON(f.Schema()), fw, 1)
	if err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet writer init: %w", err)
	}
	for r := 0; r < f.Rows(); r++ {
		rec, err := json.Marshal(jsonlio.Record(f, r))
		if err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet encode row %d: %w", r, err)
		}
		if err := writer.Write(string(rec)); err != nil {
			_ = fw.Close()
			return fmt.Errorf("parquet write row %d: %w", r, err)
		}
	}
	if err := writer.WriteStop(); err != nil {
		_ = fw.Close()
		return fmt.Errorf("parquet finish: %w", err)
	}
	return fw.Close()
}
