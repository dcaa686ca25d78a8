package persist

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
)

// reportSuffix is appended to the meme name to form the stored basename.
const reportSuffix = "_lifecycle_report"

// ReportStore saves and loads lifecycle reports under one directory.
type ReportStore struct {
	dir   string
	codec Codec
}

// NewReportStore creates a store rooted at dir using codec.
func NewReportStore(dir string, codec Codec) *ReportStore {
	return &ReportStore{dir: dir, codec: codec}
}

// Basename returns the file basename of meme's report.
func Basename(meme string) string {
	return meme + reportSuffix
}

// Path returns where meme's report is stored.
func (s *ReportStore) Path(meme string) string {
	return filepath.Join(s.dir, Basename(meme)+s.codec.Extension())
}

// Save writes rep and returns its path.
func (s *ReportStore) Save(rep *lifecycle.Report) (string, error) {
	path, err := NewPersister[lifecycle.Report](Basename(rep.Meme), s.codec).Save(s.dir, rep)
	if err != nil {
		return "", fmt.Errorf("save report %s: %w", rep.Meme, err)
	}

	return path, nil
}

// Load reads meme's report.
func (s *ReportStore) Load(meme string) (*lifecycle.Report, error) {
	rep, err := NewPersister[lifecycle.Report](Basename(meme), s.codec).Load(s.dir)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", meme, err)
	}

	return rep, nil
}

// LoadReportFile reads a stored report, choosing the codec from the file name.
func LoadReportFile(path string) (*lifecycle.Report, error) {
	codec := CodecForPath(path)

	var rep lifecycle.Report

	err := LoadFile(path, codec, &rep)
	if err != nil {
		return nil, fmt.Errorf("load report %s: %w", path, err)
	}

	return &rep, nil
}

// CodecForPath infers the codec from a file extension, defaulting to JSON.
func CodecForPath(path string) Codec {
	name := strings.ToLower(path)

	var inner Codec = NewJSONCodec()
	if strings.HasSuffix(strings.TrimSuffix(name, lz4Extension), yamlExtension) ||
		strings.HasSuffix(strings.TrimSuffix(name, lz4Extension), ".yml") {
		inner = NewYAMLCodec()
	}

	if strings.HasSuffix(name, lz4Extension) {
		return NewLZ4Codec(inner)
	}

	return inner
}
