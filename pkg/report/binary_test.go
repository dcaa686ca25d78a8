package report_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/memefang/pkg/report"
)

func TestBinary_RoundTrip(t *testing.T) {
	t.Parallel()

	original := shortReport(t)

	var buf bytes.Buffer

	require.NoError(t, report.EncodeBinary(original, &buf))
	assert.Equal(t, report.BinaryMagic, buf.String()[:4])

	decoded, err := report.DecodeBinary(&buf)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeBinary_BadMagic(t *testing.T) {
	t.Parallel()

	_, err := report.DecodeBinary(bytes.NewReader([]byte("XXXX\x02\x00\x00\x00{}")))
	require.ErrorIs(t, err, report.ErrInvalidBinaryEnvelope)
}

func TestDecodeBinary_Truncated(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, report.EncodeBinary(shortReport(t), &buf))

	_, err := report.DecodeBinary(bytes.NewReader(buf.Bytes()[:buf.Len()-3]))
	require.ErrorIs(t, err, report.ErrInvalidBinaryEnvelope)

	_, err = report.DecodeBinary(bytes.NewReader([]byte("ML")))
	require.ErrorIs(t, err, report.ErrInvalidBinaryEnvelope)
}
