package report

import (
	"fmt"
	"io"

	"github.com/Sumatoshi-tech/memefang/pkg/lifecycle"
	"github.com/Sumatoshi-tech/memefang/pkg/persist"
	"github.com/Sumatoshi-tech/memefang/pkg/plotpage"
	"github.com/Sumatoshi-tech/memefang/pkg/terminal"
)

// WriteOptions carries the per-format settings used by [Write].
type WriteOptions struct {
	Text     TextOptions
	Terminal terminal.Config
	Plot     PlotOptions
}

// DefaultWriteOptions returns options for non-interactive output.
func DefaultWriteOptions() WriteOptions {
	return WriteOptions{
		Terminal: terminal.NewConfig(),
		Plot:     PlotOptions{Theme: plotpage.ThemeDark},
	}
}

// Write projects rep into format and writes it to w.
func Write(w io.Writer, format string, rep *lifecycle.Report, opts WriteOptions) error {
	canonical, err := ValidateFormat(format)
	if err != nil {
		return err
	}

	switch canonical {
	case FormatText:
		return RenderText(w, rep, opts.Text)
	case FormatTerminal:
		return RenderTerminal(w, rep, opts.Terminal)
	case FormatJSON:
		return encodeWith(w, persist.NewJSONCodec(), rep)
	case FormatYAML:
		return encodeWith(w, persist.NewYAMLCodec(), rep)
	case FormatBinary:
		return EncodeBinary(rep, w)
	case FormatArchive:
		return encodeWith(w, persist.NewLZ4Codec(&persist.JSONCodec{}), rep)
	case FormatPlot:
		return RenderPlot(w, rep, opts.Plot)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
}

// Read decodes a report previously written in one of the machine formats.
func Read(r io.Reader, format string) (*lifecycle.Report, error) {
	canonical, err := ValidateFormat(format)
	if err != nil {
		return nil, err
	}

	var codec persist.Codec

	switch canonical {
	case FormatJSON:
		codec = persist.NewJSONCodec()
	case FormatYAML:
		codec = persist.NewYAMLCodec()
	case FormatArchive:
		codec = persist.NewLZ4Codec(persist.NewJSONCodec())
	case FormatBinary:
		return DecodeBinary(r)
	default:
		return nil, fmt.Errorf("%w: %s is not machine readable", ErrUnsupportedFormat, format)
	}

	var rep lifecycle.Report

	err = codec.Decode(r, &rep)
	if err != nil {
		return nil, fmt.Errorf("read %s report: %w", canonical, err)
	}

	return &rep, nil
}

func encodeWith(w io.Writer, codec persist.Codec, rep *lifecycle.Report) error {
	err := codec.Encode(w, rep)
	if err != nil {
		return fmt.Errorf("write report: %w", err)
	}

	return nil
}
